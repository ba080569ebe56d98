package filter

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/flightdelay/internal/model"
)

// Dimension names one of the two filters.
type Dimension string

const (
	DimensionAirport Dimension = "airport"
	DimensionAirline Dimension = "airline"
)

// ParseDimension maps a user-supplied name to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "airport", "airports", "origin":
		return DimensionAirport, nil
	case "airline", "airlines":
		return DimensionAirline, nil
	default:
		return "", eris.Errorf("filter: unknown dimension %q", s)
	}
}

// Domain returns the valid keys of a dimension for ds.
func (d Dimension) Domain(ds *model.Dataset) []string {
	if d == DimensionAirline {
		return ds.AirlineDomain()
	}
	return ds.OriginDomain()
}

// State is the filter selection owned by one session.
type State struct {
	Airports Selection `json:"-"`
	Airlines Selection `json:"-"`
}

// NewState returns a state with both dimensions on All, the initial view.
func NewState() State {
	return State{Airports: AllSelection(), Airlines: AllSelection()}
}

// Selection returns the current selection for d.
func (s State) Selection(d Dimension) Selection {
	if d == DimensionAirline {
		return s.Airlines
	}
	return s.Airports
}

// Set runs Update for one dimension and stores the result. It reports
// whether the effective selection changed.
func (s *State) Set(d Dimension, domain []string, raw []string) bool {
	next, changed := Update(domain, s.Selection(d), raw)
	if d == DimensionAirline {
		s.Airlines = next
	} else {
		s.Airports = next
	}
	return changed
}

// Predicate returns a function matching flights whose origin and airline are
// both selected.
func (s State) Predicate(ds *model.Dataset) func(model.Flight) bool {
	airports := Resolve(s.Airports, ds.OriginDomain())
	airlines := Resolve(s.Airlines, ds.AirlineDomain())
	return func(f model.Flight) bool {
		return airports.Contains(f.Origin) && airlines.Contains(f.AirlineID)
	}
}

// Rebase recomputes the selection caps against the domains of ds. Picked keys
// are kept as they are.
func (s *State) Rebase(ds *model.Dataset) {
	s.Airports = s.Airports.withDomain(ds.OriginDomain())
	s.Airlines = s.Airlines.withDomain(ds.AirlineDomain())
}

// Apply returns the flights of ds matching the state.
func (s State) Apply(ds *model.Dataset) []model.Flight {
	match := s.Predicate(ds)
	out := make([]model.Flight, 0, len(ds.Flights))
	for _, f := range ds.Flights {
		if match(f) {
			out = append(out, f)
		}
	}
	return out
}
