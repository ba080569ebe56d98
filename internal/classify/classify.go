// Package classify derives the delay status and category of a flight from its
// raw departure data.
package classify

import (
	"fmt"

	"github.com/sells-group/flightdelay/internal/model"
)

// Status is the single outcome label of a flight.
type Status string

const (
	StatusCancelled Status = "cancelled"
	StatusDelayed   Status = "delayed"
	StatusOnTime    Status = "on_time"
	// StatusUnclassified marks a departed flight whose delay could not be
	// interpreted. It is excluded from every rate.
	StatusUnclassified Status = "unclassified"
)

// Category buckets departed flights by delay magnitude.
type Category string

const (
	CategoryNone     Category = ""
	CategoryOnTime   Category = "on_time"
	CategoryModerate Category = "moderate"
	CategoryExtreme  Category = "extreme"
)

// Categories lists the categories in display order.
var Categories = []Category{CategoryOnTime, CategoryModerate, CategoryExtreme}

// Rank returns the display position of c, or len(Categories) for CategoryNone.
func (c Category) Rank() int {
	for i, cc := range Categories {
		if cc == c {
			return i
		}
	}
	return len(Categories)
}

// Thresholds holds the minute boundaries between categories.
type Thresholds struct {
	OnTimeMaxMinutes   int `yaml:"on_time_max_minutes" mapstructure:"on_time_max_minutes"`
	ModerateMaxMinutes int `yaml:"moderate_max_minutes" mapstructure:"moderate_max_minutes"`
}

// DefaultThresholds returns the 15 and 60 minute boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{OnTimeMaxMinutes: 15, ModerateMaxMinutes: 60}
}

// Label returns the legend text for c, e.g. "Moderate Delay (16-60 min)".
func (th Thresholds) Label(c Category) string {
	switch c {
	case CategoryOnTime:
		return fmt.Sprintf("On-time (within %d min)", th.OnTimeMaxMinutes)
	case CategoryModerate:
		return fmt.Sprintf("Moderate Delay (%d-%d min)", th.OnTimeMaxMinutes+1, th.ModerateMaxMinutes)
	case CategoryExtreme:
		return fmt.Sprintf("Extreme Delay (> %d min)", th.ModerateMaxMinutes)
	default:
		return ""
	}
}

// Classification is the derived view of one flight.
type Classification struct {
	Status   Status   `json:"status"`
	Category Category `json:"category,omitempty"`
}

// Departed reports whether the flight left and has a usable delay.
func (c Classification) Departed() bool {
	return c.Status == StatusDelayed || c.Status == StatusOnTime
}

// Delayed reports whether the departure delay exceeded the on-time boundary.
func (c Classification) Delayed() bool { return c.Status == StatusDelayed }

// OnTime reports whether the flight left within the on-time boundary.
func (c Classification) OnTime() bool { return c.Status == StatusOnTime }

// Classify labels one flight. It never fails: a missing departure is a
// cancellation and a departed flight without a delay is Unclassified.
func Classify(f model.Flight, th Thresholds) Classification {
	if f.Departure == nil {
		return Classification{Status: StatusCancelled}
	}
	if f.DepartureDelay == nil {
		return Classification{Status: StatusUnclassified}
	}

	delay := *f.DepartureDelay
	switch {
	case delay <= th.OnTimeMaxMinutes:
		return Classification{Status: StatusOnTime, Category: CategoryOnTime}
	case delay <= th.ModerateMaxMinutes:
		return Classification{Status: StatusDelayed, Category: CategoryModerate}
	default:
		return Classification{Status: StatusDelayed, Category: CategoryExtreme}
	}
}

// Classified pairs a flight with its labels.
type Classified struct {
	model.Flight
	Classification
}

// All classifies every flight in order.
func All(flights []model.Flight, th Thresholds) []Classified {
	out := make([]Classified, len(flights))
	for i, f := range flights {
		out[i] = Classified{Flight: f, Classification: Classify(f, th)}
	}
	return out
}
