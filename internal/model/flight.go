// Package model defines the typed records of the flight delay dataset.
package model

import "time"

// Flight is one scheduled departure from the flights table.
type Flight struct {
	Flight             string     `json:"flight"`
	Origin             string     `json:"origin"`
	AirlineID          string     `json:"airline_id"`
	ScheduledDeparture time.Time  `json:"scheduled_departure"`
	Departure          *time.Time `json:"departure,omitempty"`       // nil when cancelled
	DepartureDelay     *int       `json:"departure_delay,omitempty"` // minutes, negative for early departures
}

// Cancelled reports whether the flight never departed.
func (f Flight) Cancelled() bool {
	return f.Departure == nil
}

// Airport is a row of the airports table.
type Airport struct {
	Code      string  `json:"airport_code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Airline is a row of the airlines table.
type Airline struct {
	ID   string `json:"airline_id"`
	Name string `json:"airline"`
}

// Aircraft is a row of the aircrafts table. Only the presentation layer reads it.
type Aircraft struct {
	TailNumber   string `json:"tail_number"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Seats        int    `json:"seats,omitempty"`
}
