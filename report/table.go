// Package report renders measurement results as the plain comma-separated
// tables the suite prints, one line per experimental position.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/cachelab/memprobe/stats"
	"github.com/cachelab/memprobe/timing"
)

// A Header labels one result table.
type Header struct {
	// Title is the experiment name, e.g. "Half Round Trip".
	Title string

	// Machine identifies the CPU under test.
	Machine string

	// Details are extra fields joined onto the machine line (operation,
	// line state, reference worker).
	Details []string

	// Comment is an optional remark printed as a '#' line.
	Comment string

	// Column is the label of the position column.
	Column string
}

// ScaleToSeconds converts raw tick statistics to seconds using the
// calibrated tick duration. Call exactly once per statistic, after
// accumulation.
func ScaleToSeconds(sts []stats.Statistic) {
	tick := timing.TickDuration()
	for i := range sts {
		sts[i].Scale(tick)
	}
}

// WriteTable writes one result table. Statistics are printed with their
// index plus idxOffset as the position label; positions for which skip
// returns true (the reference worker's own slot, typically) are omitted.
// skip may be nil.
func WriteTable(
	w io.Writer,
	hdr Header,
	sts []stats.Statistic,
	idxOffset int,
	skip func(position int) bool,
) {
	fmt.Fprintf(w, "%s\n", hdr.Title)

	fmt.Fprintf(w, "%s", hdr.Machine)
	for _, d := range hdr.Details {
		fmt.Fprintf(w, ", %s", d)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# %s\n", time.Now().Format(time.ANSIC))
	if hdr.Comment != "" {
		fmt.Fprintf(w, "# %s\n", hdr.Comment)
	}

	fmt.Fprintf(w, "%s,  Samples,       Min,      Mean,       Max,        SD\n",
		hdr.Column)

	for i := range sts {
		position := i + idxOffset
		if skip != nil && skip(position) {
			continue
		}
		fmt.Fprintf(w, "%6d, %s\n", position, sts[i].Format('s'))
	}
}

// WriteSeparator marks the boundary between repeated experiments in one
// output stream.
func WriteSeparator(w io.Writer) {
	fmt.Fprintln(w, "### NEW EXPERIMENT ###")
}
