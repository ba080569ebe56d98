package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/flightdelay/internal/store"
)

func TestXLSXLoader(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), fixture())

	ds, err := XLSXLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Flights, 4)
	assert.Equal(t, "Newark Liberty Intl", ds.AirportName("EWR"))
	assert.Equal(t, "United Air Lines Inc.", ds.AirlineName("UA"))
}

func TestXLSXLoader_MissingFile(t *testing.T) {
	_, err := XLSXLoader{Path: filepath.Join(t.TempDir(), "nope.xlsx")}.Load(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingData))
}

func TestXLSXLoader_MissingSheet(t *testing.T) {
	sheets := fixture()
	delete(sheets, SheetAircrafts)
	path := writeWorkbook(t, t.TempDir(), sheets)

	_, err := XLSXLoader{Path: path}.Load(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingData))
	assert.Contains(t, err.Error(), "aircrafts")
}

func TestXLSXLoader_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight_data.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := XLSXLoader{Path: path}.Load(context.Background())
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrMissingData))
	assert.Contains(t, err.Error(), "dataset: read workbook")
}

func TestCSVLoader(t *testing.T) {
	dir := writeCSVDir(t, fixture())

	ds, err := CSVLoader{Dir: dir}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Flights, 4)
	assert.Equal(t, []string{"AA", "UA"}, ds.AirlineDomain())
}

func TestCSVLoader_MissingTable(t *testing.T) {
	sheets := fixture()
	delete(sheets, SheetAirports)
	dir := writeCSVDir(t, sheets)

	_, err := CSVLoader{Dir: dir}.Load(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingData))
	assert.Contains(t, err.Error(), "airports.csv")
}

func TestStoreLoader(t *testing.T) {
	ctx := context.Background()
	want, err := Build(ctx, toTables(fixture()))
	require.NoError(t, err)

	dsn := "sqlite://" + filepath.Join(t.TempDir(), "flights.db")
	s, err := store.Open(ctx, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.SaveDataset(ctx, want))
	require.NoError(t, s.Close())

	got, err := StoreLoader{DSN: dsn}.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Flights, len(want.Flights))
	assert.Equal(t, want.OriginDomain(), got.OriginDomain())
}
