package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rapltrace/rapltrace/pkg/trace"
	"github.com/rapltrace/rapltrace/pkg/types"
)

// WriteSummary renders the per-domain trace summary as an aligned table.
// Domains that never committed an interval are left out entirely.
func WriteSummary(w io.Writer, tr *trace.Trace) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tENERGY\tAVG POWER\tMAX POWER\tMIN POWER\tSAMPLES")
	fmt.Fprintln(tw, "------\t------\t---------\t---------\t---------\t-------")
	for _, dt := range tr.Domains() {
		s, ok := dt.Summary()
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			s.Domain.Label(),
			types.Joules(s.TotalEnergy),
			types.Watts(s.AvgPower),
			types.Watts(s.MaxPower),
			types.Watts(s.MinPower),
			s.Samples,
		)
	}
	tw.Flush()
}

// WriteIntervals lists every committed interval per domain, for verbose
// output.
func WriteIntervals(w io.Writer, tr *trace.Trace) {
	for _, dt := range tr.Domains() {
		if len(dt.Intervals) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", dt.Domain.Label())
		for _, iv := range dt.Intervals {
			fmt.Fprintf(w, "  t=%.1fs: %s on CPU %d\n",
				iv.Elapsed.Seconds(), types.Watts(iv.Power), iv.CPUID)
		}
	}
}
