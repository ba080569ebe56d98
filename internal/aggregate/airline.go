package aggregate

import (
	"fmt"
	"sort"

	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/model"
)

// AirlineRank is one row of the departed-flights-by-airline table.
type AirlineRank struct {
	AirlineID string `json:"airline_id" yaml:"airline_id"`
	Airline   string `json:"airline" yaml:"airline"`
	Flights   int    `json:"total_flights" yaml:"total_flights"`
}

// AirlineCategory is one stacked bar segment: an airline's flights in one
// delay category.
type AirlineCategory struct {
	AirlineID     string            `json:"airline_id" yaml:"airline_id"`
	Airline       string            `json:"airline" yaml:"airline"`
	Category      classify.Category `json:"category" yaml:"category"`
	CategoryLabel string            `json:"delay_category" yaml:"delay_category"`
	Flights       int               `json:"total_flights" yaml:"total_flights"`
	Percent       float64           `json:"percent" yaml:"percent"`
	// Label is empty for segments below the label cutoff.
	Label string `json:"label" yaml:"label"`
}

// RankAirlines counts departed flights per airline, largest first. Ties go to
// the lower airline id.
func RankAirlines(flights []classify.Classified, ds *model.Dataset) []AirlineRank {
	counts := make(map[string]int)
	for _, f := range flights {
		if f.Departed() {
			counts[f.AirlineID]++
		}
	}

	out := make([]AirlineRank, 0, len(counts))
	for id, n := range counts {
		out = append(out, AirlineRank{AirlineID: id, Airline: airlineName(ds, id), Flights: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Flights != out[j].Flights {
			return out[i].Flights > out[j].Flights
		}
		return out[i].AirlineID < out[j].AirlineID
	})
	return out
}

type categoryKey struct {
	airline  string
	category classify.Category
}

// AirlineCategories counts departed flights per (airline, category) and
// expresses each count as a share of the airline's departures. Rows follow
// ranking order, then category order; empty categories are left out.
func AirlineCategories(flights []classify.Classified, ranking []AirlineRank, opts Options) []AirlineCategory {
	counts := make(map[categoryKey]int)
	for _, f := range flights {
		if f.Departed() {
			counts[categoryKey{airline: f.AirlineID, category: f.Category}]++
		}
	}

	out := make([]AirlineCategory, 0, len(counts))
	for _, r := range ranking {
		for _, cat := range classify.Categories {
			n := counts[categoryKey{airline: r.AirlineID, category: cat}]
			if n == 0 {
				continue
			}
			row := AirlineCategory{
				AirlineID:     r.AirlineID,
				Airline:       r.Airline,
				Category:      cat,
				CategoryLabel: opts.Thresholds.Label(cat),
				Flights:       n,
				Percent:       rate(n, r.Flights),
			}
			if n >= opts.LabelMinCount {
				row.Label = fmt.Sprintf("%.1f%%", row.Percent)
			}
			out = append(out, row)
		}
	}
	return out
}

func airlineName(ds *model.Dataset, id string) string {
	if ds == nil {
		return id
	}
	return ds.AirlineName(id)
}
