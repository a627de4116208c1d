package layout

import (
	"testing"

	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTables_Empty(t *testing.T) {
	assert.Nil(t, DefaultConfig().Tables(nil))
}

func TestTables_SingleRowIsNotATable(t *testing.T) {
	// Three fragments on one line form one candidate row; a lone qualifying
	// row is not enough for a table.
	frags := []ocr.Fragment{
		fragAt("a", 5, 10),
		fragAt("b", 50, 12),
		fragAt("c", 100, 14),
	}
	assert.Nil(t, DefaultConfig().Tables(frags))
}

func TestTables_TwoByTwo(t *testing.T) {
	frags := []ocr.Fragment{
		fragAt("a1", 5, 10),
		fragAt("a2", 50, 10),
		fragAt("b1", 5, 40),
		fragAt("b2", 50, 40),
	}
	table := DefaultConfig().Tables(frags)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"a1", "a2"}, table[0])
	assert.Equal(t, []string{"b1", "b2"}, table[1])
}

func TestTables_CellsOrderedByXCenter(t *testing.T) {
	// Fragments arrive right-to-left within each row.
	frags := []ocr.Fragment{
		fragAt("a2", 90, 10),
		fragAt("a1", 5, 10),
		fragAt("b2", 90, 40),
		fragAt("b1", 5, 40),
	}
	table := DefaultConfig().Tables(frags)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"a1", "a2"}, table[0])
	assert.Equal(t, []string{"b1", "b2"}, table[1])
}

func TestTables_RowAnchoredToFirstFragment(t *testing.T) {
	// Centers at 16, 31, 46: the second fragment is within tolerance of the
	// row anchor, but the third is compared against the anchor (16), not the
	// previous fragment (31), so it opens a new row.
	frags := []ocr.Fragment{
		fragAt("a1", 5, 10),
		fragAt("a2", 50, 25),
		fragAt("b1", 5, 40),
		fragAt("b2", 50, 42),
	}
	table := DefaultConfig().Tables(frags)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"a1", "a2"}, table[0])
	assert.Equal(t, []string{"b1", "b2"}, table[1])
}

func TestTables_SingleCellRowsDropped(t *testing.T) {
	frags := []ocr.Fragment{
		fragAt("prose", 5, 10),
		fragAt("a1", 5, 60),
		fragAt("a2", 50, 60),
		fragAt("b1", 5, 110),
		fragAt("b2", 50, 110),
	}
	table := DefaultConfig().Tables(frags)
	require.Len(t, table, 2)
	for _, row := range table {
		assert.Len(t, row, 2)
	}
}

func TestTables_CellsAreCleaned(t *testing.T) {
	frags := []ocr.Fragment{
		fragAt("  a1  ", 5, 10),
		fragAt("a2\t\tx", 50, 10),
		fragAt("b1", 5, 60),
		fragAt("b2", 50, 60),
	}
	table := DefaultConfig().Tables(frags)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"a1", "a2 x"}, table[0])
}
