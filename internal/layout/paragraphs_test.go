package layout

import (
	"testing"

	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/stretchr/testify/assert"
)

func fragAt(text string, x, y float64) ocr.Fragment {
	return ocr.NewFragmentFromRect(text, x, y, 40, 12, 0.9)
}

func fragAtY(text string, y float64) ocr.Fragment {
	return fragAt(text, 0, y)
}

func TestParagraphs_Empty(t *testing.T) {
	assert.Empty(t, DefaultConfig().Paragraphs(nil))
	assert.Empty(t, DefaultConfig().Paragraphs([]ocr.Fragment{}))
}

func TestParagraphs_SingleFragment(t *testing.T) {
	got := DefaultConfig().Paragraphs([]ocr.Fragment{fragAtY("  hello   world ", 10)})
	assert.Equal(t, "hello world", got)
}

func TestParagraphs_SplitsOnVerticalGap(t *testing.T) {
	// Centers at 16, 21, 56, 61: the 35px jump between the second and third
	// fragments exceeds the 30px gap, the others do not.
	frags := []ocr.Fragment{
		fragAtY("first", 10),
		fragAtY("line", 15),
		fragAtY("second", 50),
		fragAtY("paragraph", 55),
	}
	got := DefaultConfig().Paragraphs(frags)
	assert.Equal(t, "first line\n\nsecond paragraph", got)
}

func TestParagraphs_GapExactlyAtThresholdDoesNotSplit(t *testing.T) {
	frags := []ocr.Fragment{
		fragAtY("a", 0),
		fragAtY("b", 30), // abs diff == threshold, not greater
	}
	got := DefaultConfig().Paragraphs(frags)
	assert.Equal(t, "a b", got)
}

func TestParagraphs_CustomThreshold(t *testing.T) {
	cfg := Config{ParagraphGap: 5, RowTolerance: 20}
	frags := []ocr.Fragment{
		fragAtY("a", 0),
		fragAtY("b", 10),
		fragAtY("c", 20),
	}
	got := cfg.Paragraphs(frags)
	assert.Equal(t, "a\n\nb\n\nc", got)
}

func TestParagraphs_OutputStableUnderRecleaning(t *testing.T) {
	frags := []ocr.Fragment{
		fragAtY("  spaced   out  ", 10),
		fragAtY("text\t\tfragment", 12),
	}
	got := DefaultConfig().Paragraphs(frags)
	assert.Equal(t, got, CleanText(got))
}

func TestParagraphs_NoTrailingSeparator(t *testing.T) {
	frags := []ocr.Fragment{
		fragAtY("only", 10),
		fragAtY("paragraph", 100),
	}
	got := DefaultConfig().Paragraphs(frags)
	assert.Equal(t, "only\n\nparagraph", got)
}
