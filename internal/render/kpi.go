// Package render formats a dashboard report for terminals, API clients and
// map widgets.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
)

// Card is one headline KPI box.
type Card struct {
	Title    string `json:"title" yaml:"title"`
	Value    string `json:"value" yaml:"value"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

var printer = message.NewPrinter(language.English)

// KPICards returns the four headline boxes in display order: total flights,
// delay rate, on-time rate and cancellations.
func KPICards(k aggregate.KPIs, th classify.Thresholds) []Card {
	return []Card{
		{Title: "Total Flights", Value: printer.Sprintf("%d", k.TotalFlights), Subtitle: "6-month period"},
		{Title: "Delay Rate", Value: printer.Sprintf("%.1f%%", k.DelayRate), Subtitle: printer.Sprintf("Delay > %d min", th.OnTimeMaxMinutes)},
		{Title: "On-Time Rate", Value: printer.Sprintf("%.1f%%", k.OnTimeRate), Subtitle: printer.Sprintf("Flights within %d min", th.OnTimeMaxMinutes)},
		{Title: "Cancelations", Value: printer.Sprintf("%d", k.Cancelled), Subtitle: "Total cancelled flights"},
	}
}
