package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/ocr"
)

// Timing breaks the processing duration down by stage, in nanoseconds.
type Timing struct {
	EnhanceNs    int64 `json:"enhance_ns" yaml:"enhance_ns"`
	ExtractionNs int64 `json:"extraction_ns" yaml:"extraction_ns"`
	LayoutNs     int64 `json:"layout_ns" yaml:"layout_ns"`
	TotalNs      int64 `json:"total_ns" yaml:"total_ns"`
}

// Result is the outcome of processing one image. Success is false when the
// image yielded no text; Error then carries the reason. Engine or decode
// failures are returned as Go errors instead, not encoded here.
type Result struct {
	Engine     string         `json:"engine" yaml:"engine"`
	Fragments  []ocr.Fragment `json:"fragments" yaml:"fragments"`
	Text       string         `json:"text" yaml:"text"`
	Tables     []layout.Table `json:"tables,omitempty" yaml:"tables,omitempty"`
	Confidence layout.Stats   `json:"confidence" yaml:"confidence"`
	Processing Timing         `json:"processing" yaml:"processing"`
	Success    bool           `json:"success" yaml:"success"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// ToJSON renders the result as indented JSON.
func (r *Result) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// ToYAML renders the result as YAML.
func (r *Result) ToYAML() (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// ToPlainText returns the reconstructed document text.
func (r *Result) ToPlainText() string {
	return r.Text
}

// ToCSV renders the fragments as CSV with one row per fragment.
func (r *Result) ToCSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"x_center", "y_center", "confidence", "text"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range r.Fragments {
		row := []string{
			strconv.FormatFloat(f.XCenter, 'f', 1, 64),
			strconv.FormatFloat(f.YCenter, 'f', 1, 64),
			strconv.FormatFloat(f.Confidence, 'f', 3, 64),
			f.Text,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}
