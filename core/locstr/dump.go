package locstr

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/FocuswithJustin/doctext/core/offset"
)

// DumpDetails writes the run table followed by one row per character with
// its start and end coordinates.
func (s *LocatedString) DumpDetails(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "LocatedString %q (%d chars, %d runs)\n", s.String(), len(s.text), len(s.runs))
	fmt.Fprintf(tw, "bounds:\t%v\n", s.bounds)
	for i, r := range s.runs {
		fmt.Fprintf(tw, "run %d:\t%v\n", i, r)
	}
	fmt.Fprintln(tw, "pos\tchar\tbyte\tchar\tedt\tasr\t")
	for pos, r := range s.text {
		fmt.Fprintf(tw, "%d\t%s\t", pos, strconv.QuoteRune(r))
		for _, k := range offset.Kinds() {
			fmt.Fprintf(tw, "%v-%v\t", s.start(k, pos), s.end(k, pos))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
