package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/scandocs/scandoc/internal/utils"
)

// EngineHandwriting is the registry name of the handwriting engine.
const EngineHandwriting = "handwriting"

// handwritingConfidenceFloor is deliberately permissive: handwriting scores
// far below printed text, and dropping candidates early loses whole words.
const handwritingConfidenceFloor = 0.05

func init() {
	Register(EngineHandwriting, func() (Engine, error) {
		return newHandwritingEngine(DefaultLanguage)
	})
}

// handwritingEngine recognizes handwritten text by running the sparse
// Tesseract engine over several preprocessed variants of the image and
// merging the results, keeping the highest-confidence reading of each word.
type handwritingEngine struct {
	inner *tesseractEngine
}

func newHandwritingEngine(language string) (*handwritingEngine, error) {
	inner, err := newTesseractEngine(EngineHandwriting, gosseract.PSM_SPARSE_TEXT, language)
	if err != nil {
		return nil, err
	}
	inner.confloor = handwritingConfidenceFloor
	return &handwritingEngine{inner: inner}, nil
}

func (e *handwritingEngine) Name() string { return EngineHandwriting }

// handwritingVariants lists the preprocessing attempts in the order they are
// tried.
var handwritingVariants = []func(image.Image) (image.Image, error){
	utils.PrepareHandwriting,
	utils.HighContrast,
	utils.Invert,
}

func (e *handwritingEngine) ExtractFragments(ctx context.Context, img image.Image) ([]Fragment, error) {
	var merged []Fragment
	var lastErr error
	for _, prep := range handwritingVariants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		variant, err := prep(img)
		if err != nil {
			return nil, err
		}
		frags, err := e.inner.ExtractFragments(ctx, variant)
		if err != nil {
			lastErr = err
			continue
		}
		merged = append(merged, frags...)
	}
	if merged == nil && lastErr != nil {
		return nil, fmt.Errorf("all handwriting attempts failed: %w", lastErr)
	}
	merged = MergeByText(merged)
	SortReadingOrder(merged)
	return merged, nil
}

func (e *handwritingEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	frags, err := e.ExtractFragments(ctx, img)
	if err != nil {
		return "", err
	}
	words := make([]string, 0, len(frags))
	for _, f := range frags {
		words = append(words, f.Text)
	}
	return strings.Join(words, " "), nil
}

func (e *handwritingEngine) Close() error {
	return e.inner.Close()
}
