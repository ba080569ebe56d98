// Package dataset loads the flights, airports, airlines and aircrafts tables
// into an immutable model.Dataset.
package dataset

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/flightdelay/internal/fetcher"
	"github.com/sells-group/flightdelay/internal/model"
)

// ErrMissingData marks a dataset whose file, sheet or required column is absent.
var ErrMissingData = eris.New("dataset: missing data")

// Sheet names of the workbook.
const (
	SheetFlights   = "flights"
	SheetAirports  = "airports"
	SheetAirlines  = "airlines"
	SheetAircrafts = "aircrafts"
)

// Sheets lists every table a dataset needs.
var Sheets = []string{SheetFlights, SheetAirports, SheetAirlines, SheetAircrafts}

var requiredColumns = map[string][]string{
	SheetFlights:   {"flight", "origin", "airline_id", "scheduled_departure", "departure", "departure_delay"},
	SheetAirports:  {"airport_code", "name", "latitude", "longitude"},
	SheetAirlines:  {"airline_id", "airline"},
	SheetAircrafts: nil,
}

// Tables is the raw string form of the sheets, keyed by sheet name.
type Tables map[string]*fetcher.Table

// Build parses all four tables concurrently. Any missing table or required
// column fails the whole build; malformed rows are logged and repaired or
// skipped.
func Build(ctx context.Context, tables Tables) (*model.Dataset, error) {
	cols := make(map[string]columns, len(Sheets))
	for _, name := range Sheets {
		t, ok := tables[name]
		if !ok || t == nil {
			return nil, eris.Wrapf(ErrMissingData, "sheet %q", name)
		}
		c, err := indexColumns(t, requiredColumns[name])
		if err != nil {
			return nil, err
		}
		cols[name] = c
	}

	var (
		flights   []model.Flight
		airports  []model.Airport
		airlines  []model.Airline
		aircrafts []model.Aircraft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flights, err = parseFlights(gctx, tables[SheetFlights], cols[SheetFlights])
		return err
	})
	g.Go(func() error {
		airports = parseAirports(tables[SheetAirports], cols[SheetAirports])
		return nil
	})
	g.Go(func() error {
		airlines = parseAirlines(tables[SheetAirlines], cols[SheetAirlines])
		return nil
	})
	g.Go(func() error {
		aircrafts = parseAircrafts(tables[SheetAircrafts], cols[SheetAircrafts])
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := model.NewDataset(flights, airports, airlines, aircrafts)
	zap.L().Info("dataset: built",
		zap.Int("flights", len(ds.Flights)),
		zap.Int("airports", len(ds.Airports)),
		zap.Int("airlines", len(ds.Airlines)),
		zap.Int("aircrafts", len(ds.Aircrafts)),
	)
	return ds, nil
}

// columns maps normalized header names to their index.
type columns map[string]int

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func indexColumns(t *fetcher.Table, required []string) (columns, error) {
	c := make(columns, len(t.Header))
	for i, h := range t.Header {
		key := normalizeHeader(h)
		if _, dup := c[key]; !dup && key != "" {
			c[key] = i
		}
	}
	for _, name := range required {
		if _, ok := c[name]; !ok {
			return nil, eris.Wrapf(ErrMissingData, "sheet %q: column %q", t.Name, name)
		}
	}
	return c, nil
}

// get returns the trimmed cell for column name, or "" when the row is short
// or the column absent.
func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// first returns the first non-empty cell among the given column aliases.
func (c columns) first(row []string, names ...string) string {
	for _, n := range names {
		if v := c.get(row, n); v != "" {
			return v
		}
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
