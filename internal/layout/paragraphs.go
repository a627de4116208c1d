// Package layout reconstructs paragraph and table structure from positioned
// OCR fragments. No layout metadata from the OCR engine is used; everything
// is inferred from fragment coordinates.
package layout

import (
	"math"
	"strings"

	"github.com/scandocs/scandoc/internal/ocr"
)

// Config holds the clustering thresholds in pixels. The defaults come from
// the heuristic this implementation preserves; they are deliberately not
// adaptive to image resolution or font size.
type Config struct {
	// ParagraphGap is the vertical distance beyond which consecutive
	// fragments belong to different paragraphs.
	ParagraphGap float64

	// RowTolerance is the vertical distance within which fragments are
	// considered part of the same table row. Rows are tighter-packed than
	// paragraph breaks, hence the asymmetric thresholds.
	RowTolerance float64
}

// DefaultConfig returns the standard clustering thresholds.
func DefaultConfig() Config {
	return Config{
		ParagraphGap: 30,
		RowTolerance: 20,
	}
}

// Paragraphs groups fragments into paragraphs by vertical gaps and returns
// the formatted text: fragments within a paragraph joined by single spaces,
// paragraphs separated by a blank line. Fragments are consumed in the order
// given; ordering them (typically top-to-bottom) is the caller's job.
// Pure function of its input.
func (c Config) Paragraphs(frags []ocr.Fragment) string {
	if len(frags) == 0 {
		return ""
	}

	var out strings.Builder
	var current []string
	lastY := math.NaN()

	for _, f := range frags {
		text := CleanText(f.Text)
		if !math.IsNaN(lastY) && math.Abs(f.YCenter-lastY) > c.ParagraphGap {
			if len(current) > 0 {
				out.WriteString(strings.Join(current, " "))
				out.WriteString("\n\n")
				current = current[:0]
			}
		}
		current = append(current, text)
		lastY = f.YCenter
	}
	if len(current) > 0 {
		out.WriteString(strings.Join(current, " "))
	}

	return strings.TrimSpace(out.String())
}
