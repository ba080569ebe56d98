package render

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/flightdelay/internal/aggregate"
)

// BubbleMap converts the per-airport aggregates into a GeoJSON feature
// collection, one point per located airport. Airports without coordinates are
// left out.
func BubbleMap(airports []aggregate.AirportDelay) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(airports))}
	for _, a := range airports {
		if !a.Located {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       a.Origin,
			Geometry: geom.NewPointFlat(geom.XY, []float64{a.Longitude, a.Latitude}).SetSRID(4326),
			Properties: map[string]any{
				"origin":          a.Origin,
				"name":            a.Name,
				"total_flights":   a.Total,
				"delayed_flights": a.Delayed,
				"delay_rate":      a.DelayRate,
				"label":           a.Label,
			},
		})
	}
	return fc
}

// BubbleMapJSON is BubbleMap encoded.
func BubbleMapJSON(airports []aggregate.AirportDelay) ([]byte, error) {
	b, err := BubbleMap(airports).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "render: encode geojson")
	}
	return b, nil
}
