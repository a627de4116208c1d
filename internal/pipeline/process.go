package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/utils"
)

// noTextReason is recorded on a Result when recognition finds nothing in
// the image.
const noTextReason = "no text detected in image"

// Process runs the full pipeline on a single image.
func (p *Pipeline) Process(img image.Image) (*Result, error) {
	return p.ProcessContext(context.Background(), img)
}

// ProcessContext is like Process but allows cancellation via context.
// A readable image that contains no text yields a Result with Success=false;
// only engine or input failures return a non-nil error.
func (p *Pipeline) ProcessContext(ctx context.Context, img image.Image) (*Result, error) {
	if p == nil || p.engine == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	bounds := img.Bounds()
	slog.Debug("Starting image processing",
		"engine", p.engine.Name(), "width", bounds.Dx(), "height", bounds.Dy())

	totalStart := time.Now()
	res := &Result{Engine: p.engine.Name()}

	enhanceStart := time.Now()
	working, err := p.prepare(ctx, img)
	if err != nil {
		return nil, err
	}
	res.Processing.EnhanceNs = time.Since(enhanceStart).Nanoseconds()

	extractStart := time.Now()
	frags, err := p.engine.ExtractFragments(ctx, working)
	if err != nil {
		return nil, err
	}
	res.Processing.ExtractionNs = time.Since(extractStart).Nanoseconds()

	if len(frags) == 0 {
		res.Processing.TotalNs = time.Since(totalStart).Nanoseconds()
		res.Error = noTextReason
		slog.Debug("No text detected", "engine", p.engine.Name())
		return res, nil
	}

	layoutStart := time.Now()
	res.Fragments = frags
	res.Text = p.cfg.Layout.Paragraphs(frags)
	if p.cfg.DetectTables {
		if table := p.cfg.Layout.Tables(frags); table != nil {
			res.Tables = append(res.Tables, table)
		}
	}
	res.Confidence = layout.Aggregate(frags)
	res.Processing.LayoutNs = time.Since(layoutStart).Nanoseconds()

	res.Processing.TotalNs = time.Since(totalStart).Nanoseconds()
	res.Success = true

	slog.Debug("Image processed",
		"fragments", len(frags),
		"tables", len(res.Tables),
		"mean_confidence", res.Confidence.Mean,
		"total_ns", res.Processing.TotalNs)

	return res, nil
}

// prepare applies the optional quality boost, bounding the enhanced image's
// size before recognition. With enhancement disabled the image reaches the
// engine untouched, so fragment coordinates stay in the source pixel space
// the clustering thresholds were tuned for.
func (p *Pipeline) prepare(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.cfg.Enhance {
		return img, nil
	}
	enhanced, err := utils.EnhanceQuality(img)
	if err != nil {
		return nil, err
	}
	return utils.ResizeIfNeeded(enhanced, p.cfg.MaxDimension)
}
