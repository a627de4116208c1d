package ocr

import "sort"

// Point is a pixel coordinate in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fragment is one recognized span of text with its position and confidence.
// Box holds the four corner points clockwise from the top-left. Text is
// never empty; engines filter empty spans before returning.
type Fragment struct {
	Text       string   `json:"text"`
	Box        [4]Point `json:"box"`
	XCenter    float64  `json:"x_center"`
	YCenter    float64  `json:"y_center"`
	Confidence float64  `json:"confidence"`
}

// NewFragment builds a fragment from its corner points. The center is the
// midpoint of the top-left and bottom-right corners.
func NewFragment(text string, box [4]Point, confidence float64) Fragment {
	return Fragment{
		Text:       text,
		Box:        box,
		XCenter:    (box[0].X + box[2].X) / 2,
		YCenter:    (box[0].Y + box[2].Y) / 2,
		Confidence: confidence,
	}
}

// NewFragmentFromRect builds a fragment from an axis-aligned rectangle,
// expanding it into the four-corner form.
func NewFragmentFromRect(text string, x, y, w, h, confidence float64) Fragment {
	box := [4]Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
	return NewFragment(text, box, confidence)
}

// SortReadingOrder sorts fragments top-to-bottom, then left-to-right, which
// is the order the layout reconstruction expects.
func SortReadingOrder(frags []Fragment) {
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].YCenter == frags[j].YCenter {
			return frags[i].XCenter < frags[j].XCenter
		}
		return frags[i].YCenter < frags[j].YCenter
	})
}

// MergeByText deduplicates fragments sharing the exact same text, keeping
// the highest-confidence occurrence. First-seen order is preserved so the
// merge is deterministic regardless of how attempts were interleaved.
// Near-duplicate misreads of the same word do not merge; only exact matches.
func MergeByText(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return nil
	}
	index := make(map[string]int, len(frags))
	merged := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if i, ok := index[f.Text]; ok {
			if f.Confidence > merged[i].Confidence {
				merged[i] = f
			}
			continue
		}
		index[f.Text] = len(merged)
		merged = append(merged, f)
	}
	return merged
}
