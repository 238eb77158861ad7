package xml

// Options controls what is written when saving.
type Options struct {
	IncludeByteOffsets bool
	IncludeCharOffsets bool
	IncludeEDTOffsets  bool
	IncludeASRTimes    bool

	// CondensedOffsets writes "start:end" pairs (char_offsets="3:7")
	// instead of separate start_char and end_char attributes.
	CondensedOffsets bool

	// SpansAsElements adds a Contents child holding the text even when a
	// string is saved as a range of the original text.
	SpansAsElements bool
	// SpansAsComments adds that text as a comment instead.
	SpansAsComments bool

	Indent string // Indentation string (e.g., "  " or "\t")
}

// DefaultOptions writes every offset kind in long form.
func DefaultOptions() Options {
	return Options{
		IncludeByteOffsets: true,
		IncludeCharOffsets: true,
		IncludeEDTOffsets:  true,
		IncludeASRTimes:    true,
		Indent:             "  ",
	}
}
