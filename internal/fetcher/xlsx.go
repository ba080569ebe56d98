package fetcher

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ErrSheetNotFound is returned when a workbook lacks a requested sheet.
var ErrSheetNotFound = eris.New("xlsx: sheet not found")

// TimeLayout is the layout date cells are rendered with.
const TimeLayout = "2006-01-02 15:04:05"

// XLSXOptions selects a sheet of a workbook.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // leading rows to drop
}

// Table is a worksheet split into its header row and data rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadXLSX returns every row of one sheet as strings.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := sheetRows(sheet, f.Date1904)
	if opts.SkipRows >= len(rows) {
		return nil, nil
	}
	return rows[opts.SkipRows:], nil
}

// ReadWorkbook opens a workbook once and returns the named sheets as tables
// whose first row is the header. A missing sheet is an error; nothing is
// returned in that case.
func ReadWorkbook(path string, names ...string) (map[string]*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	out := make(map[string]*Table, len(names))
	for _, name := range names {
		sheet, err := getSheet(f, XLSXOptions{SheetName: name})
		if err != nil {
			return nil, err
		}
		out[name] = toTable(name, sheetRows(sheet, f.Date1904))
	}
	return out, nil
}

// SheetNames lists the sheets of a workbook in file order.
func SheetNames(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	names := make([]string, len(f.Sheets))
	for i, s := range f.Sheets {
		names[i] = s.Name
	}
	return names, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Wrapf(ErrSheetNotFound, "xlsx: sheet %q", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func sheetRows(sheet *xlsx.Sheet, date1904 bool) [][]string {
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cellString(cell, date1904)
		}
		rows = append(rows, cells)
	}
	return rows
}

// cellString renders date cells in TimeLayout instead of the workbook's
// display format, which pandas-style exports vary on.
func cellString(cell *xlsx.Cell, date1904 bool) string {
	if cell == nil {
		return ""
	}
	if isDateCell(cell) {
		if t, err := cell.GetTime(date1904); err == nil {
			return t.Format(TimeLayout)
		}
	}
	return strings.TrimSpace(cell.String())
}

func isDateCell(cell *xlsx.Cell) bool {
	if cell.IsTime() || cell.Type() == xlsx.CellTypeDate {
		return true
	}
	if cell.Type() != xlsx.CellTypeNumeric {
		return false
	}
	format := strings.ToLower(cell.GetNumberFormat())
	for _, token := range []string{"yy", "dd", "h:mm", "m/d"} {
		if strings.Contains(format, token) {
			return true
		}
	}
	return false
}

// ExcelSerialTime converts an Excel serial date number to a time.
func ExcelSerialTime(serial float64) time.Time {
	return xlsx.TimeFromExcelTime(serial, false)
}

func toTable(name string, rows [][]string) *Table {
	t := &Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	t.Header = rows[0]
	t.Rows = rows[1:]
	return t
}
