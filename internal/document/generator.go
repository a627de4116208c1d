package document

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/scandocs/scandoc/internal/pipeline"
)

// RenderOptions controls what the generated document contains.
type RenderOptions struct {
	Title             string
	IncludeImage      bool
	IncludeConfidence bool
}

// DefaultRenderOptions returns the options used when the caller passes none.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Title:             "Extracted Document",
		IncludeImage:      true,
		IncludeConfidence: true,
	}
}

// Generator renders processing results into Word documents.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a generator using the wall clock for timestamps.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// ArtifactName derives the output document name from the source image path.
func ArtifactName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return "extracted_document_" + stem + ".docx"
}

// Generate renders the result into a complete .docx package. img may be nil;
// the original-image section is then skipped regardless of options.
func (g *Generator) Generate(res *pipeline.Result, img image.Image, opts RenderOptions) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("generate document: result is nil")
	}
	if opts.Title == "" {
		opts.Title = DefaultRenderOptions().Title
	}

	d := NewDocx()
	g.addHeader(d, opts.Title)

	if opts.IncludeImage && img != nil {
		if err := g.addOriginalImage(d, img); err != nil {
			return nil, err
		}
	}

	g.addExtractedText(d, res.Text)
	g.addTables(d, res)
	g.addProcessingSummary(d, res)
	if opts.IncludeConfidence {
		g.addConfidenceReport(d, res)
	}

	return d.Bytes()
}

func (g *Generator) addHeader(d *Docx, title string) {
	d.AddHeading(title, 0)
	d.AddFormattedParagraph(
		"Generated on "+g.now().Format("January 2, 2006 at 3:04 PM"),
		TextFormat{Italic: true, Color: "666666"},
	)
	d.AddFormattedParagraph(strings.Repeat("_", 50), TextFormat{Color: "999999"})
}

func (g *Generator) addOriginalImage(d *Docx, img image.Image) error {
	d.AddHeading("Original Image", 1)
	if err := d.AddImage(img); err != nil {
		return fmt.Errorf("embed original image: %w", err)
	}
	return nil
}

// headingKeywords mark paragraphs that open a document section.
var headingKeywords = []string{"chapter", "section", "part", "introduction", "conclusion"}

// isLikelyHeading guesses whether a reconstructed paragraph is a heading:
// short all-caps lines, short lines ending in a colon, and lines starting
// with a section keyword.
func isLikelyHeading(paragraph string) bool {
	if len(paragraph) > 100 {
		return false
	}
	trimmed := strings.TrimSpace(paragraph)
	if trimmed == "" {
		return false
	}
	if len(trimmed) < 50 && trimmed == strings.ToUpper(trimmed) && strings.ContainsFunc(trimmed, isLetter) {
		return true
	}
	if len(trimmed) < 50 && strings.HasSuffix(trimmed, ":") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range headingKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (g *Generator) addExtractedText(d *Docx, text string) {
	d.AddHeading("Extracted Text", 1)
	if strings.TrimSpace(text) == "" {
		d.AddFormattedParagraph("No text content was extracted.", TextFormat{Italic: true, Color: "999999"})
		return
	}
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if isLikelyHeading(paragraph) {
			d.AddHeading(paragraph, 2)
			continue
		}
		d.AddParagraph(paragraph)
	}
}

func (g *Generator) addTables(d *Docx, res *pipeline.Result) {
	for i, table := range res.Tables {
		d.AddHeading(fmt.Sprintf("Table %d", i+1), 2)
		d.AddTable(table, true)
	}
}

func (g *Generator) addProcessingSummary(d *Docx, res *pipeline.Result) {
	d.AddHeading("Processing Summary", 1)

	status := "completed"
	if !res.Success {
		status = "completed with no text detected"
	}
	rows := [][]string{
		{"Field", "Value"},
		{"Status", status},
		{"Engine", res.Engine},
		{"Fragments", fmt.Sprintf("%d", res.Confidence.Count)},
		{"Tables", fmt.Sprintf("%d", len(res.Tables))},
		{"Processing time", formatDuration(res.Processing.TotalNs)},
	}
	d.AddTable(rows, true)
}

func (g *Generator) addConfidenceReport(d *Docx, res *pipeline.Result) {
	d.AddHeading("Confidence Report", 1)
	s := res.Confidence
	rows := [][]string{
		{"Bucket", "Fragments"},
		{"High (above 0.8)", fmt.Sprintf("%d", s.High)},
		{"Medium (0.5 to 0.8)", fmt.Sprintf("%d", s.Medium)},
		{"Low (below 0.5)", fmt.Sprintf("%d", s.Low)},
	}
	d.AddTable(rows, true)
	d.AddParagraph(fmt.Sprintf("Mean confidence: %.1f%%", s.Mean*100))
}

func formatDuration(ns int64) string {
	return time.Duration(ns).Round(time.Millisecond).String()
}
