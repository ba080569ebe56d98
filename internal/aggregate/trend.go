package aggregate

import (
	"sort"
	"time"

	"github.com/sells-group/flightdelay/internal/classify"
)

// MonthlyDelay is one point of the monthly trend line for one origin.
type MonthlyDelay struct {
	Month     time.Time `json:"month" yaml:"month"`
	Origin    string    `json:"origin" yaml:"origin"`
	Total     int       `json:"total_flights" yaml:"total_flights"`
	Delayed   int       `json:"delayed_flights" yaml:"delayed_flights"`
	DelayRate float64   `json:"delay_rate" yaml:"delay_rate"`
}

type monthKey struct {
	year   int
	month  time.Month
	origin string
}

// MonthStart truncates t to midnight on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthlyTrend groups departed flights by (scheduled month in UTC, origin),
// sorted by month then origin.
func MonthlyTrend(flights []classify.Classified) []MonthlyDelay {
	groups := make(map[monthKey]*counter)
	starts := make(map[monthKey]time.Time)
	for _, f := range flights {
		if !f.Departed() {
			continue
		}
		s := f.ScheduledDeparture.UTC()
		k := monthKey{year: s.Year(), month: s.Month(), origin: f.Origin}
		c, ok := groups[k]
		if !ok {
			c = &counter{}
			groups[k] = c
			starts[k] = MonthStart(s)
		}
		c.add(f)
	}

	out := make([]MonthlyDelay, 0, len(groups))
	for k, c := range groups {
		out = append(out, MonthlyDelay{
			Month:     starts[k],
			Origin:    k.origin,
			Total:     c.total,
			Delayed:   c.delayed,
			DelayRate: rate(c.delayed, c.total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month) {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].Origin < out[j].Origin
	})
	return out
}
