package layout

import "github.com/scandocs/scandoc/internal/ocr"

// Stats summarizes fragment confidence for reporting. Bucket boundaries:
// high > 0.8, medium in [0.5, 0.8], low < 0.5.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	High   int     `json:"high"`
	Medium int     `json:"medium"`
	Low    int     `json:"low"`
}

// Aggregate computes confidence statistics over the fragment list. An empty
// input yields a zero-valued Stats; there is no division by zero and no NaN.
func Aggregate(frags []ocr.Fragment) Stats {
	var s Stats
	if len(frags) == 0 {
		return s
	}
	var sum float64
	for _, f := range frags {
		sum += f.Confidence
		switch {
		case f.Confidence > 0.8:
			s.High++
		case f.Confidence >= 0.5:
			s.Medium++
		default:
			s.Low++
		}
	}
	s.Count = len(frags)
	s.Mean = sum / float64(len(frags))
	return s
}
