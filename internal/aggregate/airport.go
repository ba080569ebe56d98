package aggregate

import (
	"fmt"
	"sort"

	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/model"
)

// AirportDelay is one bubble of the airport map.
type AirportDelay struct {
	Origin    string  `json:"origin" yaml:"origin"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	// Located is false when the origin has no row in the airports table.
	Located   bool    `json:"located" yaml:"located"`
	Total     int     `json:"total_flights" yaml:"total_flights"`
	Delayed   int     `json:"delayed_flights" yaml:"delayed_flights"`
	DelayRate float64 `json:"delay_rate" yaml:"delay_rate"`
	Label     string  `json:"label" yaml:"label"`
}

type counter struct {
	total   int
	delayed int
}

func (c *counter) add(f classify.Classified) {
	c.total++
	if f.Delayed() {
		c.delayed++
	}
}

// AirportDelays groups departed flights by origin, sorted by code, and joins
// each group to its airport coordinates.
func AirportDelays(flights []classify.Classified, ds *model.Dataset) []AirportDelay {
	groups := make(map[string]*counter)
	for _, f := range flights {
		if !f.Departed() {
			continue
		}
		c, ok := groups[f.Origin]
		if !ok {
			c = &counter{}
			groups[f.Origin] = c
		}
		c.add(f)
	}

	out := make([]AirportDelay, 0, len(groups))
	for origin, c := range groups {
		row := AirportDelay{
			Origin:    origin,
			Name:      origin,
			Total:     c.total,
			Delayed:   c.delayed,
			DelayRate: rate(c.delayed, c.total),
		}
		if ds != nil {
			if a, ok := ds.Airport(origin); ok {
				row.Name = a.Name
				row.Latitude = a.Latitude
				row.Longitude = a.Longitude
				row.Located = true
			}
		}
		row.Label = fmt.Sprintf("%s\n%.0f%%", origin, row.DelayRate)
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Origin < out[j].Origin })
	return out
}
