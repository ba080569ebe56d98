package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/flightdelay/internal/fetcher"
)

// fixture is a small, consistent set of the four tables.
func fixture() map[string][][]string {
	return map[string][][]string{
		SheetFlights: {
			{"flight", "origin", "airline_id", "scheduled_departure", "departure", "departure_delay"},
			{"AA100", "JFK", "AA", "2023-01-05 08:00:00", "2023-01-05 08:10:00", "10"},
			{"AA101", "JFK", "AA", "2023-01-05 09:00:00", "2023-01-05 10:05:00", "65"},
			{"UA200", "EWR", "UA", "2023-02-01 07:00:00", "", ""},
			{"UA201", "EWR", "UA", "2023-02-01 12:00:00", "2023-02-01 12:30:00", "30"},
		},
		SheetAirports: {
			{"airport_code", "name", "latitude", "longitude"},
			{"JFK", "John F Kennedy Intl", "40.6398", "-73.7789"},
			{"EWR", "Newark Liberty Intl", "40.6925", "-74.1687"},
		},
		SheetAirlines: {
			{"airline_id", "airline"},
			{"AA", "American Airlines Inc."},
			{"UA", "United Air Lines Inc."},
		},
		SheetAircrafts: {
			{"tail_number", "model", "manufacturer", "seats"},
			{"N101AA", "A321", "AIRBUS", "190"},
		},
	}
}

func toTables(sheets map[string][][]string) Tables {
	out := make(Tables, len(sheets))
	for name, rows := range sheets {
		t := &fetcher.Table{Name: name}
		if len(rows) > 0 {
			t.Header, t.Rows = rows[0], rows[1:]
		}
		out[name] = t
	}
	return out
}

func writeWorkbook(t *testing.T, dir string, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(dir, "flight_data.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func writeCSVDir(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, rows := range sheets {
		var b strings.Builder
		for _, r := range rows {
			b.WriteString(strings.Join(r, ","))
			b.WriteString("\n")
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(b.String()), 0o644))
	}
	return dir
}
