package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Registry names of the Tesseract-backed engines.
const (
	EngineTesseract       = "tesseract"
	EngineTesseractSparse = "tesseract-sparse"
)

// printedConfidenceFloor drops word candidates below this confidence for the
// printed-text engines. Tesseract reports junk detections well under it.
const printedConfidenceFloor = 0.3

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

func init() {
	Register(EngineTesseract, func() (Engine, error) {
		return newTesseractEngine(EngineTesseract, gosseract.PSM_AUTO, DefaultLanguage)
	})
	Register(EngineTesseractSparse, func() (Engine, error) {
		return newTesseractEngine(EngineTesseractSparse, gosseract.PSM_SPARSE_TEXT, DefaultLanguage)
	})
}

// tesseractEngine wraps a gosseract client configured with a fixed page
// segmentation mode. Not safe for concurrent use; the pipeline serializes
// calls per engine instance.
type tesseractEngine struct {
	name     string
	psm      gosseract.PageSegMode
	client   *gosseract.Client
	confloor float64
}

func newTesseractEngine(name string, psm gosseract.PageSegMode, language string) (*tesseractEngine, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract binary not found: %w", err)
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language %q: %w", language, err)
	}
	if err := client.SetPageSegMode(psm); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &tesseractEngine{
		name:     name,
		psm:      psm,
		client:   client,
		confloor: printedConfidenceFloor,
	}, nil
}

func (e *tesseractEngine) Name() string { return e.name }

func (e *tesseractEngine) ExtractFragments(ctx context.Context, img image.Image) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for recognition: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	frags := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		conf := b.Confidence / 100
		if text == "" || conf < e.confloor {
			continue
		}
		frags = append(frags, NewFragmentFromRect(
			text,
			float64(b.Box.Min.X),
			float64(b.Box.Min.Y),
			float64(b.Box.Dx()),
			float64(b.Box.Dy()),
			conf,
		))
	}
	SortReadingOrder(frags)
	return frags, nil
}

func (e *tesseractEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil {
		return "", errors.New("input image is nil")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image for recognition: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *tesseractEngine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
