package aggregate

import "github.com/sells-group/flightdelay/internal/classify"

// KPIs is the headline figure set.
type KPIs struct {
	TotalFlights int `json:"total_flights" yaml:"total_flights"`
	Cancelled    int `json:"cancelled" yaml:"cancelled"`
	Departed     int `json:"departed" yaml:"departed"`
	Delayed      int `json:"delayed" yaml:"delayed"`
	OnTime       int `json:"on_time" yaml:"on_time"`
	// Unclassified departures carry no usable delay and sit outside both rates.
	Unclassified int `json:"unclassified" yaml:"unclassified"`

	DelayRate  float64 `json:"delay_rate" yaml:"delay_rate"`
	OnTimeRate float64 `json:"on_time_rate" yaml:"on_time_rate"`
}

// ComputeKPIs counts flights by status. Both rates use Departed as the
// denominator and are 0 when nothing departed.
func ComputeKPIs(flights []classify.Classified) KPIs {
	var k KPIs
	k.TotalFlights = len(flights)
	for _, f := range flights {
		switch f.Status {
		case classify.StatusCancelled:
			k.Cancelled++
		case classify.StatusDelayed:
			k.Delayed++
		case classify.StatusOnTime:
			k.OnTime++
		default:
			k.Unclassified++
		}
	}
	k.Departed = k.Delayed + k.OnTime
	k.DelayRate = rate(k.Delayed, k.Departed)
	k.OnTimeRate = rate(k.OnTime, k.Departed)
	return k
}
