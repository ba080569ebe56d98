package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
)

// Text writes the report as a sequence of aligned tables, one per view.
func Text(out io.Writer, r *aggregate.Report, th classify.Thresholds) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, c := range KPICards(r.KPIs, th) {
		_, _ = fmt.Fprintf(w, "%s:\t%s\t(%s)\n", c.Title, c.Value, c.Subtitle)
	}
	if r.KPIs.Unclassified > 0 {
		_, _ = fmt.Fprintf(w, "Unclassified:\t%s\t(departed, delay unknown)\n", printer.Sprintf("%d", r.KPIs.Unclassified))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "ORIGIN\tAIRPORT\tFLIGHTS\tDELAYED\tDELAY_RATE")
	_, _ = fmt.Fprintln(w, "------\t-------\t-------\t-------\t----------")
	for _, a := range r.Airports {
		name := a.Name
		if !a.Located {
			name += " (no coordinates)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", a.Origin, truncate(name, 40), a.Total, a.Delayed, a.DelayRate)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "MONTH\tORIGIN\tFLIGHTS\tDELAYED\tDELAY_RATE")
	_, _ = fmt.Fprintln(w, "-----\t------\t-------\t-------\t----------")
	for _, m := range r.Trend {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", m.Month.Format("2006-01"), m.Origin, m.Total, m.Delayed, m.DelayRate)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "RANK\tAIRLINE\tFLIGHTS")
	_, _ = fmt.Fprintln(w, "----\t-------\t-------")
	for i, a := range r.Ranking {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, truncate(a.Airline, 40), a.Flights)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "AIRLINE\tCATEGORY\tFLIGHTS\tPERCENT\tLABEL")
	_, _ = fmt.Fprintln(w, "-------\t--------\t-------\t-------\t-----")
	for _, c := range r.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\t%s\n", truncate(c.Airline, 40), c.CategoryLabel, c.Flights, c.Percent, c.Label)
	}

	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
