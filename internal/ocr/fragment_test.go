package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFragmentFromRect(t *testing.T) {
	f := NewFragmentFromRect("word", 10, 20, 40, 10, 0.85)
	assert.Equal(t, "word", f.Text)
	assert.InDelta(t, 30, f.XCenter, 1e-9)
	assert.InDelta(t, 25, f.YCenter, 1e-9)
	assert.InDelta(t, 0.85, f.Confidence, 1e-9)
	assert.Equal(t, Point{X: 10, Y: 20}, f.Box[0])
	assert.Equal(t, Point{X: 50, Y: 30}, f.Box[2])
}

func TestSortReadingOrder(t *testing.T) {
	frags := []Fragment{
		NewFragmentFromRect("c", 0, 100, 10, 10, 0.9),
		NewFragmentFromRect("b", 50, 0, 10, 10, 0.9),
		NewFragmentFromRect("a", 0, 0, 10, 10, 0.9),
	}
	SortReadingOrder(frags)
	var texts []string
	for _, f := range frags {
		texts = append(texts, f.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestMergeByText(t *testing.T) {
	frags := []Fragment{
		NewFragmentFromRect("hello", 0, 0, 10, 10, 0.4),
		NewFragmentFromRect("world", 20, 0, 10, 10, 0.7),
		NewFragmentFromRect("hello", 0, 2, 10, 10, 0.9),
		NewFragmentFromRect("world", 20, 2, 10, 10, 0.3),
	}
	merged := MergeByText(frags)
	require.Len(t, merged, 2)

	// First-seen order is preserved; each entry carries its best reading.
	assert.Equal(t, "hello", merged[0].Text)
	assert.InDelta(t, 0.9, merged[0].Confidence, 1e-9)
	assert.Equal(t, "world", merged[1].Text)
	assert.InDelta(t, 0.7, merged[1].Confidence, 1e-9)
}

func TestMergeByText_Empty(t *testing.T) {
	assert.Nil(t, MergeByText(nil))
	assert.Nil(t, MergeByText([]Fragment{}))
}

func TestMergeByText_ExactMatchOnly(t *testing.T) {
	frags := []Fragment{
		NewFragmentFromRect("word", 0, 0, 10, 10, 0.5),
		NewFragmentFromRect("Word", 0, 0, 10, 10, 0.6),
	}
	assert.Len(t, MergeByText(frags), 2)
}
