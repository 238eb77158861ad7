package xml

import (
	"strings"

	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/offset"
)

// attribute stems per kind: start_<stem>, end_<stem>
var longStem = [offset.NumKinds]string{"byte", "char", "edt", "time"}

// condensed attribute per kind
var condensedAttr = [offset.NumKinds]string{"byte_offsets", "char_offsets", "edt_offsets", "asr_times"}

func (o Options) includes(k offset.Kind) bool {
	switch k {
	case offset.Byte:
		return o.IncludeByteOffsets
	case offset.Char:
		return o.IncludeCharOffsets
	case offset.EDT:
		return o.IncludeEDTOffsets
	case offset.ASR:
		return o.IncludeASRTimes
	}
	return false
}

// SaveOffsets writes the defined coordinates of start and end as attributes,
// honouring the document options.
func (e *Element) SaveOffsets(start, end offset.Group) {
	opts := e.doc.opts
	for _, k := range offset.Kinds() {
		if !opts.includes(k) {
			continue
		}
		s, en := start.Get(k), end.Get(k)
		if opts.CondensedOffsets && s.Defined() && en.Defined() {
			e.SetAttr(condensedAttr[k], s.String()+":"+en.String())
			continue
		}
		if s.Defined() {
			e.SetAttr("start_"+longStem[k], s.String())
		}
		if en.Defined() {
			e.SetAttr("end_"+longStem[k], en.String())
		}
	}
}

// LoadOffsets reads coordinates written by SaveOffsets in either form.
// Kinds with no attribute are left undefined.
func (e *Element) LoadOffsets() (start, end offset.Group, err error) {
	for _, k := range offset.Kinds() {
		var s, en offset.Value
		if pair, ok := e.Attr(condensedAttr[k]); ok {
			ss, es, found := strings.Cut(pair, ":")
			if !found {
				return start, end, errors.NewParse("XML", e.Tag()+"@"+condensedAttr[k], "expected start:end, got "+pair)
			}
			if s, err = offset.ParseValue(k, ss); err != nil {
				return start, end, err
			}
			if en, err = offset.ParseValue(k, es); err != nil {
				return start, end, err
			}
		} else {
			if v, ok := e.Attr("start_" + longStem[k]); ok {
				if s, err = offset.ParseValue(k, v); err != nil {
					return start, end, err
				}
			}
			if v, ok := e.Attr("end_" + longStem[k]); ok {
				if en, err = offset.ParseValue(k, v); err != nil {
					return start, end, err
				}
			}
		}
		start = start.With(k, s)
		end = end.With(k, en)
	}
	return start, end, nil
}
