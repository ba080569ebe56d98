package model

import "sort"

// Dataset holds the four tables of a loaded workbook. It is built once and
// never mutated, so it can be shared freely between sessions.
type Dataset struct {
	Flights   []Flight
	Airports  []Airport
	Airlines  []Airline
	Aircrafts []Aircraft

	airportIdx map[string]int
	airlineIdx map[string]int
	origins    []string
	carriers   []string
}

// NewDataset indexes the given tables. The slices are owned by the dataset
// afterwards and must not be modified by the caller.
func NewDataset(flights []Flight, airports []Airport, airlines []Airline, aircrafts []Aircraft) *Dataset {
	ds := &Dataset{
		Flights:    flights,
		Airports:   airports,
		Airlines:   airlines,
		Aircrafts:  aircrafts,
		airportIdx: make(map[string]int, len(airports)),
		airlineIdx: make(map[string]int, len(airlines)),
	}
	for i, a := range airports {
		if _, dup := ds.airportIdx[a.Code]; !dup {
			ds.airportIdx[a.Code] = i
		}
	}
	for i, a := range airlines {
		if _, dup := ds.airlineIdx[a.ID]; !dup {
			ds.airlineIdx[a.ID] = i
		}
	}

	origins := make(map[string]struct{})
	carriers := make(map[string]struct{})
	for _, f := range flights {
		origins[f.Origin] = struct{}{}
		carriers[f.AirlineID] = struct{}{}
	}
	ds.origins = sortedKeys(origins)
	ds.carriers = sortedKeys(carriers)
	return ds
}

// Airport looks up an airport by code.
func (d *Dataset) Airport(code string) (Airport, bool) {
	i, ok := d.airportIdx[code]
	if !ok {
		return Airport{}, false
	}
	return d.Airports[i], true
}

// Airline looks up an airline by identifier.
func (d *Dataset) Airline(id string) (Airline, bool) {
	i, ok := d.airlineIdx[id]
	if !ok {
		return Airline{}, false
	}
	return d.Airlines[i], true
}

// AirportName returns the display name for code, falling back to the code.
func (d *Dataset) AirportName(code string) string {
	if a, ok := d.Airport(code); ok && a.Name != "" {
		return a.Name
	}
	return code
}

// AirlineName returns the display name for id, falling back to the id.
func (d *Dataset) AirlineName(id string) string {
	if a, ok := d.Airline(id); ok && a.Name != "" {
		return a.Name
	}
	return id
}

// OriginDomain returns the sorted origin codes that appear in the flights table.
func (d *Dataset) OriginDomain() []string {
	return append([]string(nil), d.origins...)
}

// AirlineDomain returns the sorted airline identifiers that appear in the flights table.
func (d *Dataset) AirlineDomain() []string {
	return append([]string(nil), d.carriers...)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
