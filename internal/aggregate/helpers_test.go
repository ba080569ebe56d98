package aggregate

import (
	"time"

	"github.com/sells-group/flightdelay/internal/classify"
	"github.com/sells-group/flightdelay/internal/model"
)

// flight builds a departed flight; a nil delay builds a cancellation.
func flight(origin, airline string, month time.Month, delay *int) model.Flight {
	sched := time.Date(2024, month, 10, 7, 30, 0, 0, time.UTC)
	f := model.Flight{Flight: origin + airline, Origin: origin, AirlineID: airline, ScheduledDeparture: sched}
	if delay != nil {
		dep := sched.Add(time.Duration(*delay) * time.Minute)
		f.Departure = &dep
		f.DepartureDelay = delay
	}
	return f
}

func mins(n int) *int { return &n }

func testDS(flights ...model.Flight) *model.Dataset {
	return model.NewDataset(flights,
		[]model.Airport{
			{Code: "JFK", Name: "John F. Kennedy International Airport", Latitude: 40.6413, Longitude: -73.7781},
			{Code: "EWR", Name: "Newark Liberty International Airport", Latitude: 40.6895, Longitude: -74.1745},
		},
		[]model.Airline{
			{ID: "AA", Name: "American Airlines Inc."},
			{ID: "B6", Name: "JetBlue Airways"},
			{ID: "UA", Name: "United Air Lines Inc."},
		},
		nil,
	)
}

func classified(flights ...model.Flight) []classify.Classified {
	return classify.All(flights, classify.DefaultThresholds())
}
