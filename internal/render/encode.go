package render

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/flightdelay/internal/aggregate"
	"github.com/sells-group/flightdelay/internal/classify"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the machine-readable report: the raw aggregates plus the
// formatted KPI cards.
type Document struct {
	Cards  []Card            `json:"cards" yaml:"cards"`
	Report *aggregate.Report `json:"report" yaml:"report"`
}

// NewDocument pairs r with its KPI cards.
func NewDocument(r *aggregate.Report, th classify.Thresholds) Document {
	return Document{Cards: KPICards(r.KPIs, th), Report: r}
}

// JSON writes the report document as indented JSON.
func JSON(out io.Writer, r *aggregate.Report, th classify.Thresholds) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(NewDocument(r, th)), "render: encode json")
}

// YAML writes the report document as YAML.
func YAML(out io.Writer, r *aggregate.Report, th classify.Thresholds) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(r, th)); err != nil {
		return eris.Wrap(err, "render: encode yaml")
	}
	return eris.Wrap(enc.Close(), "render: close yaml")
}

// Write renders r in the named format.
func Write(out io.Writer, format string, r *aggregate.Report, th classify.Thresholds) error {
	switch format {
	case "", FormatText:
		return Text(out, r, th)
	case FormatJSON:
		return JSON(out, r, th)
	case FormatYAML:
		return YAML(out, r, th)
	default:
		return eris.Errorf("render: unknown format %q", format)
	}
}
