package offset

import "github.com/FocuswithJustin/doctext/core/errors"

// Converter maps a coordinate of one kind onto another kind without
// reference to a particular string.
type Converter interface {
	Convert(from, to Kind, v Value) (Value, error)
}

// Identity converts only between a kind and itself.
var Identity Converter = identityConverter{}

type identityConverter struct{}

func (identityConverter) Convert(from, to Kind, v Value) (Value, error) {
	if from != to {
		return Value{}, errors.NewUnsupported("offset conversion", from.String()+" to "+to.String())
	}
	return v, nil
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(from, to Kind, v Value) (Value, error)

// Convert calls f.
func (f ConverterFunc) Convert(from, to Kind, v Value) (Value, error) {
	return f(from, to, v)
}
