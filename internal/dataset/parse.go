package dataset

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/fetcher"
	"github.com/sells-group/flightdelay/internal/model"
)

// maxDelayMinutes bounds a believable delay; larger magnitudes are treated
// as malformed.
const maxDelayMinutes = 60 * 24 * 30

var timeLayouts = []string{
	time.RFC3339Nano,
	fetcher.TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01-02",
}

// isNull reports whether a cell spells a missing value.
func isNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "nat", "null", "none", "na", "n/a":
		return true
	}
	return false
}

// normalizeID strips the ".0" spreadsheets append to integer identifiers so
// that flights and airlines join on the same key.
func normalizeID(s string) string {
	if !strings.HasSuffix(s, ".0") {
		return s
	}
	if _, err := strconv.Atoi(strings.TrimSuffix(s, ".0")); err == nil {
		return strings.TrimSuffix(s, ".0")
	}
	return s
}

// parseTime reads a timestamp cell as written by spreadsheet exports. Bare
// numbers are Excel serial dates. Zone-less values are taken as UTC and
// values with an offset are converted to UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		return fetcher.ExcelSerialTime(serial).UTC().Round(time.Second), nil
	}
	return time.Time{}, eris.Errorf("dataset: unrecognized timestamp %q", s)
}

// parseDelay reads a minutes cell. Fractional minutes round to the nearest
// whole minute.
func parseDelay(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "dataset: delay %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxDelayMinutes {
		return 0, eris.Errorf("dataset: delay %q out of range", s)
	}
	return int(math.Round(v)), nil
}

// parseFlights converts the flights table. Rows without a readable scheduled
// departure are skipped. A departed flight whose delay cell is unusable gets
// its delay from the two timestamps; if the departure itself is unreadable
// the flight keeps a nil delay and ends up unclassified.
func parseFlights(ctx context.Context, t *fetcher.Table, c columns) ([]model.Flight, error) {
	log := zap.L().With(zap.String("sheet", SheetFlights))
	out := make([]model.Flight, 0, len(t.Rows))
	var skipped, derived, unreadable int

	for i, row := range t.Rows {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "dataset: parse flights")
		}
		if blankRow(row) {
			continue
		}
		line := i + 2 // header is line 1

		sched, err := parseTime(c.get(row, "scheduled_departure"))
		if err != nil {
			skipped++
			log.Warn("dataset: skipping flight without scheduled departure", zap.Int("row", line), zap.Error(err))
			continue
		}

		f := model.Flight{
			Flight:             c.get(row, "flight"),
			Origin:             strings.ToUpper(c.get(row, "origin")),
			AirlineID:          normalizeID(c.get(row, "airline_id")),
			ScheduledDeparture: sched,
		}

		depCell, delayCell := c.get(row, "departure"), c.get(row, "departure_delay")
		if isNull(depCell) {
			if !isNull(delayCell) {
				log.Debug("dataset: ignoring delay of cancelled flight", zap.Int("row", line))
			}
			out = append(out, f)
			continue
		}

		var (
			delay    int
			delayErr error
		)
		if isNull(delayCell) {
			delayErr = eris.New("dataset: delay missing")
		} else {
			delay, delayErr = parseDelay(delayCell)
		}

		dep, depErr := parseTime(depCell)
		switch {
		case depErr == nil && delayErr == nil:
			f.Departure, f.DepartureDelay = &dep, &delay
		case depErr == nil:
			d := int(math.Round(dep.Sub(sched).Minutes()))
			f.Departure, f.DepartureDelay = &dep, &d
			derived++
			log.Debug("dataset: derived delay from timestamps", zap.Int("row", line), zap.Error(delayErr))
		case delayErr == nil:
			at := sched.Add(time.Duration(delay) * time.Minute)
			f.Departure, f.DepartureDelay = &at, &delay
			derived++
			log.Debug("dataset: derived departure from delay", zap.Int("row", line), zap.Error(depErr))
		default:
			at := sched
			f.Departure = &at
			unreadable++
			log.Warn("dataset: departure and delay unreadable", zap.Int("row", line),
				zap.String("departure", depCell), zap.String("departure_delay", delayCell))
		}
		out = append(out, f)
	}

	if skipped+derived+unreadable > 0 {
		log.Warn("dataset: repaired flight rows",
			zap.Int("skipped", skipped),
			zap.Int("derived", derived),
			zap.Int("unclassifiable", unreadable),
		)
	}
	return out, nil
}

func parseAirports(t *fetcher.Table, c columns) []model.Airport {
	out := make([]model.Airport, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		a := model.Airport{
			Code: strings.ToUpper(c.get(row, "airport_code")),
			Name: c.get(row, "name"),
		}
		lat, latErr := strconv.ParseFloat(c.get(row, "latitude"), 64)
		lon, lonErr := strconv.ParseFloat(c.get(row, "longitude"), 64)
		if a.Code == "" || latErr != nil || lonErr != nil {
			zap.L().Warn("dataset: skipping airport row", zap.Int("row", i+2), zap.String("airport_code", a.Code))
			continue
		}
		a.Latitude, a.Longitude = lat, lon
		out = append(out, a)
	}
	return out
}

func parseAirlines(t *fetcher.Table, c columns) []model.Airline {
	out := make([]model.Airline, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		a := model.Airline{ID: normalizeID(c.get(row, "airline_id")), Name: c.get(row, "airline")}
		if a.ID == "" {
			zap.L().Warn("dataset: skipping airline without id", zap.Int("row", i+2))
			continue
		}
		out = append(out, a)
	}
	return out
}

func parseAircrafts(t *fetcher.Table, c columns) []model.Aircraft {
	out := make([]model.Aircraft, 0, len(t.Rows))
	for _, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		a := model.Aircraft{
			TailNumber:   c.first(row, "tail_number", "tail_num", "aircraft_id", "registration"),
			Model:        c.first(row, "model", "aircraft_model", "type"),
			Manufacturer: c.first(row, "manufacturer", "make"),
		}
		if seats, err := strconv.Atoi(c.first(row, "seats", "capacity")); err == nil {
			a.Seats = seats
		}
		out = append(out, a)
	}
	return out
}
