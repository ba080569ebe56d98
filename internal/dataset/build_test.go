package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/flightdelay/internal/model"
)

func TestBuild(t *testing.T) {
	ds, err := Build(context.Background(), toTables(fixture()))
	require.NoError(t, err)

	require.Len(t, ds.Flights, 4)
	assert.Len(t, ds.Airports, 2)
	assert.Len(t, ds.Airlines, 2)
	require.Len(t, ds.Aircrafts, 1)
	assert.Equal(t, 190, ds.Aircrafts[0].Seats)

	f := ds.Flights[0]
	assert.Equal(t, "AA100", f.Flight)
	assert.Equal(t, time.Date(2023, 1, 5, 8, 0, 0, 0, time.UTC), f.ScheduledDeparture)
	require.NotNil(t, f.DepartureDelay)
	assert.Equal(t, 10, *f.DepartureDelay)

	assert.True(t, ds.Flights[2].Cancelled())
	assert.Nil(t, ds.Flights[2].DepartureDelay)

	assert.Equal(t, []string{"EWR", "JFK"}, ds.OriginDomain())
	assert.Equal(t, []string{"AA", "UA"}, ds.AirlineDomain())
}

func TestBuild_MissingSheet(t *testing.T) {
	sheets := fixture()
	delete(sheets, SheetAirlines)

	_, err := Build(context.Background(), toTables(sheets))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingData))
	assert.Contains(t, err.Error(), `"airlines"`)
}

func TestBuild_MissingColumn(t *testing.T) {
	sheets := fixture()
	sheets[SheetAirports][0] = []string{"airport_code", "name", "latitude"}

	_, err := Build(context.Background(), toTables(sheets))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingData))
	assert.Contains(t, err.Error(), `"longitude"`)
}

func TestBuild_HeaderNormalized(t *testing.T) {
	sheets := fixture()
	sheets[SheetAirlines][0] = []string{" Airline_ID ", "AIRLINE"}

	ds, err := Build(context.Background(), toTables(sheets))
	require.NoError(t, err)
	assert.Equal(t, "American Airlines Inc.", ds.AirlineName("AA"))
}

func TestBuild_AircraftsOptionalColumns(t *testing.T) {
	sheets := fixture()
	sheets[SheetAircrafts] = [][]string{{"registration", "type"}, {"N202UA", "B737"}}

	ds, err := Build(context.Background(), toTables(sheets))
	require.NoError(t, err)
	require.Len(t, ds.Aircrafts, 1)
	assert.Equal(t, "N202UA", ds.Aircrafts[0].TailNumber)
	assert.Equal(t, "B737", ds.Aircrafts[0].Model)
	assert.Zero(t, ds.Aircrafts[0].Seats)
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, toTables(fixture()))
	require.Error(t, err)
}

func flightsOnly(rows ...[]string) Tables {
	sheets := fixture()
	sheets[SheetFlights] = append([][]string{sheets[SheetFlights][0]}, rows...)
	return toTables(sheets)
}

func TestBuild_FlightRepairs(t *testing.T) {
	ds, err := Build(context.Background(), flightsOnly(
		// delay missing: derived from timestamps
		[]string{"F1", "jfk", "AA", "2023-01-05 08:00:00", "2023-01-05 08:20:00", ""},
		// delay malformed: derived from timestamps
		[]string{"F2", "JFK", "AA", "2023-01-05 08:00:00", "2023-01-05 07:55:00", "soon"},
		// departure malformed: derived from delay
		[]string{"F3", "JFK", "AA", "2023-01-05 08:00:00", "??", "45"},
		// both unreadable: departed but unclassifiable
		[]string{"F4", "JFK", "AA", "2023-01-05 08:00:00", "??", "??"},
		// scheduled departure unreadable: dropped
		[]string{"F5", "JFK", "AA", "not a time", "2023-01-05 08:00:00", "0"},
		// cancelled with a stray delay
		[]string{"F6", "JFK", "AA", "2023-01-05 08:00:00", "NaT", "12"},
		// fractional minutes and float id
		[]string{"F7", "JFK", "19805.0", "2023-01-05 08:00:00", "2023-01-05 08:16:00", "15.6"},
		[]string{"", "", "", "", "", ""},
	))
	require.NoError(t, err)
	require.Len(t, ds.Flights, 6)

	byID := map[string]model.Flight{}
	for _, f := range ds.Flights {
		byID[f.Flight] = f
	}

	require.NotNil(t, byID["F1"].DepartureDelay)
	assert.Equal(t, 20, *byID["F1"].DepartureDelay)
	assert.Equal(t, "JFK", byID["F1"].Origin)

	require.NotNil(t, byID["F2"].DepartureDelay)
	assert.Equal(t, -5, *byID["F2"].DepartureDelay)

	require.NotNil(t, byID["F3"].Departure)
	assert.Equal(t, time.Date(2023, 1, 5, 8, 45, 0, 0, time.UTC), *byID["F3"].Departure)
	assert.Equal(t, 45, *byID["F3"].DepartureDelay)

	assert.False(t, byID["F4"].Cancelled())
	assert.Nil(t, byID["F4"].DepartureDelay)

	assert.NotContains(t, byID, "F5")

	assert.True(t, byID["F6"].Cancelled())
	assert.Nil(t, byID["F6"].DepartureDelay)

	require.NotNil(t, byID["F7"].DepartureDelay)
	assert.Equal(t, 16, *byID["F7"].DepartureDelay)
	assert.Equal(t, "19805", byID["F7"].AirlineID)
}

func TestBuild_SkipsBadAirports(t *testing.T) {
	sheets := fixture()
	sheets[SheetAirports] = append(sheets[SheetAirports], []string{"LGA", "LaGuardia", "north", "-73.87"})

	ds, err := Build(context.Background(), toTables(sheets))
	require.NoError(t, err)
	_, ok := ds.Airport("LGA")
	assert.False(t, ok)
	assert.Len(t, ds.Airports, 2)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2023, 3, 1, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
	}{
		{"workbook layout", "2023-03-01 14:30:00"},
		{"rfc3339", "2023-03-01T14:30:00Z"},
		{"iso without zone", "2023-03-01T14:30:00"},
		{"minutes only", "2023-03-01 14:30"},
		{"us style", "3/1/2023 14:30"},
		{"excel serial", "44986.604166666664"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}

func TestParseTime_OffsetConvertedToUTC(t *testing.T) {
	got, err := parseTime("2024-06-30T22:30:00-04:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2024, 7, 1, 2, 30, 0, 0, time.UTC), got)
}

func TestParseDelay(t *testing.T) {
	v, err := parseDelay("-7")
	require.NoError(t, err)
	assert.Equal(t, -7, v)

	v, err = parseDelay("60.4")
	require.NoError(t, err)
	assert.Equal(t, 60, v)

	for _, bad := range []string{"abc", "NaN", "Inf", "1e12"} {
		_, err := parseDelay(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "19805", normalizeID("19805.0"))
	assert.Equal(t, "AA", normalizeID("AA"))
	assert.Equal(t, "X.0", normalizeID("X.0"))
}

func TestIsNull(t *testing.T) {
	for _, s := range []string{"", " ", "NaN", "nat", "NULL", "None", "n/a"} {
		assert.True(t, isNull(s), s)
	}
	assert.False(t, isNull("0"))
}
