// Package aggregate turns a filtered, classified flight set into the KPI set
// and the grouped tables behind each dashboard view.
package aggregate

import (
	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/model"
)

// DefaultLabelMinCount is the category count from which a bar segment gets a
// percentage label.
const DefaultLabelMinCount = 3200

// Options tunes the aggregation.
type Options struct {
	Thresholds    classify.Thresholds
	LabelMinCount int
}

// DefaultOptions returns the stock thresholds and label cutoff.
func DefaultOptions() Options {
	return Options{
		Thresholds:    classify.DefaultThresholds(),
		LabelMinCount: DefaultLabelMinCount,
	}
}

// Report bundles every aggregate computed from one filtered flight set.
type Report struct {
	KPIs       KPIs              `json:"kpis" yaml:"kpis"`
	Airports   []AirportDelay    `json:"airports" yaml:"airports"`
	Trend      []MonthlyDelay    `json:"trend" yaml:"trend"`
	Categories []AirlineCategory `json:"categories" yaml:"categories"`
	Ranking    []AirlineRank     `json:"ranking" yaml:"ranking"`

	// AirlineOrder is the category chart axis order, the ranking's airline names.
	AirlineOrder []string `json:"airline_order" yaml:"airline_order"`
}

// Compute runs every aggregation over flights. An empty input yields zero
// KPIs and empty tables.
func Compute(flights []classify.Classified, ds *model.Dataset, opts Options) *Report {
	ranking := RankAirlines(flights, ds)
	order := make([]string, len(ranking))
	for i, r := range ranking {
		order[i] = r.Airline
	}

	return &Report{
		KPIs:         ComputeKPIs(flights),
		Airports:     AirportDelays(flights, ds),
		Trend:        MonthlyTrend(flights),
		Categories:   AirlineCategories(flights, ranking, opts),
		Ranking:      ranking,
		AirlineOrder: order,
	}
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}
