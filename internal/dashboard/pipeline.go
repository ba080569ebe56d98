// Package dashboard wires the filter, classifier and aggregation steps into a
// single recomputation pass and keeps per-session filter state.
package dashboard

import (
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/filter"
	"github.com/sells-group/flightdelay/internal/model"
)

// Compute filters ds by st, classifies the matching flights and aggregates
// them. It has no side effects beyond a debug log line.
func Compute(ds *model.Dataset, st filter.State, opts aggregate.Options) *aggregate.Report {
	if ds == nil {
		return aggregate.Compute(nil, nil, opts)
	}

	flights := classify.All(st.Apply(ds), opts.Thresholds)
	report := aggregate.Compute(flights, ds, opts)

	zap.L().Debug("dashboard: recomputed",
		zap.Strings("airports", st.Airports.Raw()),
		zap.Strings("airlines", st.Airlines.Raw()),
		zap.Int("flights", report.KPIs.TotalFlights),
		zap.Int("departed", report.KPIs.Departed),
		zap.Int("unclassified", report.KPIs.Unclassified),
	)
	return report
}
