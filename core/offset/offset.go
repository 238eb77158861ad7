// Package offset defines the coordinate systems a located string tracks for
// each of its characters: byte offset, character offset, content (EDT)
// offset and audio (ASR) time.
package offset

import (
	"math"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/doctext/core/errors"
)

// Kind identifies one coordinate system.
type Kind int

const (
	// Byte is the offset in the UTF-8 encoded source.
	Byte Kind = iota
	// Char is the offset in Unicode code points.
	Char
	// EDT is the content offset, which does not advance over stripped markup.
	EDT
	// ASR is an audio timestamp in seconds.
	ASR
)

// NumKinds is the number of coordinate kinds.
const NumKinds = 4

var kindNames = [NumKinds]string{"byte", "char", "edt", "asr"}

// Kinds returns every coordinate kind in declaration order.
func Kinds() []Kind {
	return []Kind{Byte, Char, EDT, ASR}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsTime reports whether values of this kind are fractional timestamps
// rather than integer offsets.
func (k Kind) IsTime() bool {
	return k == ASR
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, errors.NewValidation("kind", "unknown offset kind "+strconv.Quote(s))
}

// Value is a single coordinate. The zero Value is undefined.
type Value struct {
	v       float64
	defined bool
}

// Int returns a defined integer coordinate.
func Int(n int) Value {
	return Value{v: float64(n), defined: true}
}

// Time returns a defined audio timestamp.
func Time(t float64) Value {
	return Value{v: t, defined: true}
}

// Undefined returns the undefined coordinate.
func Undefined() Value {
	return Value{}
}

// Defined reports whether v carries a value.
func (v Value) Defined() bool {
	return v.defined
}

// Int returns the value truncated to an int. Undefined values return 0.
func (v Value) Int() int {
	return int(v.v)
}

// Float returns the raw value. Undefined values return 0.
func (v Value) Float() float64 {
	return v.v
}

// Add returns v advanced by n. An undefined value stays undefined.
func (v Value) Add(n int) Value {
	if !v.defined {
		return v
	}
	return Value{v: v.v + float64(n), defined: true}
}

// Diff returns v - o as an int. Either side undefined yields 0.
func (v Value) Diff(o Value) int {
	if !v.defined || !o.defined {
		return 0
	}
	return int(v.v - o.v)
}

// Equal reports whether both values are undefined, or both are defined and
// equal.
func (v Value) Equal(o Value) bool {
	if v.defined != o.defined {
		return false
	}
	return !v.defined || v.v == o.v
}

// Less orders values, with undefined sorting before every defined value.
func (v Value) Less(o Value) bool {
	if !v.defined {
		return o.defined
	}
	return o.defined && v.v < o.v
}

func (v Value) String() string {
	if !v.defined {
		return "undefined"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// ParseValue parses the textual form of a coordinate of the given kind.
// Integer kinds reject fractional input.
func ParseValue(k Kind, s string) (Value, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, &errors.ParseError{Format: k.String() + " offset", Message: strconv.Quote(s), Err: err}
	}
	if !k.IsTime() && f != math.Trunc(f) {
		return Value{}, errors.NewParse(k.String()+" offset", "", "non-integer value "+strconv.Quote(s))
	}
	return Value{v: f, defined: true}, nil
}

// Group holds one Value per coordinate kind. Groups are values; methods
// that change a coordinate return a new Group.
type Group struct {
	v [NumKinds]Value
}

// NewGroup returns a group with the given byte, char and EDT offsets and an
// undefined ASR time.
func NewGroup(byteOff, charOff, edtOff int) Group {
	var g Group
	g.v[Byte] = Int(byteOff)
	g.v[Char] = Int(charOff)
	g.v[EDT] = Int(edtOff)
	return g
}

// ZeroGroup returns a group with every coordinate, ASR included, defined as 0.
func ZeroGroup() Group {
	g := NewGroup(0, 0, 0)
	g.v[ASR] = Time(0)
	return g
}

// Get returns the coordinate of kind k.
func (g Group) Get(k Kind) Value {
	return g.v[k]
}

// With returns a copy of g with coordinate k replaced.
func (g Group) With(k Kind, v Value) Group {
	g.v[k] = v
	return g
}

// Defined reports whether coordinate k is defined.
func (g Group) Defined(k Kind) bool {
	return g.v[k].defined
}

// Equal reports whether every coordinate of g equals the one in o.
func (g Group) Equal(o Group) bool {
	for k := range g.v {
		if !g.v[k].Equal(o.v[k]) {
			return false
		}
	}
	return true
}

func (g Group) String() string {
	var b strings.Builder
	for k, v := range g.v {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kindNames[k])
		b.WriteByte('=')
		b.WriteString(v.String())
	}
	return b.String()
}

// Range is a pair of groups, inclusive at both ends.
type Range struct {
	Start Group
	End   Group
}

// ZeroRange returns the range whose ends are both ZeroGroup.
func ZeroRange() Range {
	return Range{Start: ZeroGroup(), End: ZeroGroup()}
}

// Defined reports whether both ends carry coordinate k.
func (r Range) Defined(k Kind) bool {
	return r.Start.Defined(k) && r.End.Defined(k)
}

// Equal reports whether both ends match.
func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

func (r Range) String() string {
	return "[" + r.Start.String() + " .. " + r.End.String() + "]"
}
