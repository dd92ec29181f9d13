// Text rendering of the finished report.  All the intelligence sits in the line table and the
// record; this file only aligns labels and numbers the hint blocks.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rug-cit-hpc/hb-jobinfo/aggregate"
	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

func Print(
	w io.Writer,
	lines []Line,
	rec aggregate.AggregatedRecord,
	hints []string,
	cfg *config.Config,
) {
	width := 0
	for _, l := range lines {
		if printable(l, cfg) && len(l.Label) > width {
			width = len(l.Label)
		}
	}
	for _, l := range lines {
		if !printable(l, cfg) {
			continue
		}
		values := make([]any, len(l.Fields))
		empty := true
		for i, f := range l.Fields {
			values[i] = rec[f]
			if rec[f] != "" && rec[f] != units.Sentinel {
				empty = false
			}
		}
		text := fmt.Sprintf(l.Format, values...)
		if empty {
			// A line whose every field came up empty collapses to the bare marker, or
			// disappears when there is nothing to mark
			if rec[l.Fields[0]] == "" {
				continue
			}
			text = units.Sentinel
		}
		fmt.Fprintf(w, "%-*s : %s\n", width, l.Label, text)
	}
	if len(hints) == 0 {
		return
	}
	fmt.Fprintf(w, "%-*s :\n", width, "Hints and tips")
	for i, hint := range hints {
		for j, line := range strings.Split(hint, "\n") {
			if j == 0 {
				fmt.Fprintf(w, " %d) %s\n", i+1, line)
			} else {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	if cfg.DocURL != "" {
		fmt.Fprintf(w, " *) For more information on these and other issues see:\n    %s\n", cfg.DocURL)
	}
}

func printable(l Line, cfg *config.Config) bool {
	return l.Visible && (!l.Long || cfg.LongOutput)
}
