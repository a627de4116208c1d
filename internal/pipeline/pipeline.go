// Package pipeline orchestrates the image-to-document flow: optional
// enhancement with size normalization, text extraction, and layout
// reconstruction.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/scandocs/scandoc/internal/utils"
)

// Config holds configuration for the processing pipeline.
type Config struct {
	// Engine names the OCR backend. Empty means best available.
	Engine string

	// Preference overrides the fallback order used when Engine is empty.
	Preference []string

	Layout layout.Config

	// MaxDimension bounds the longer side of the enhanced image before
	// recognition. It has no effect when Enhance is off.
	MaxDimension int

	// Enhance applies the contrast/sharpness boost before recognition.
	Enhance bool

	// DetectTables runs table reconstruction over the fragments.
	DetectTables bool
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Engine:       "",
		Preference:   ocr.DefaultPreference,
		Layout:       layout.DefaultConfig(),
		MaxDimension: utils.DefaultMaxDimension,
		Enhance:      true,
		DetectTables: true,
	}
}

// Validate checks the config for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.MaxDimension < 0 {
		return fmt.Errorf("max dimension must not be negative, got %d", c.MaxDimension)
	}
	if c.Layout.ParagraphGap <= 0 {
		return fmt.Errorf("paragraph gap must be positive, got %v", c.Layout.ParagraphGap)
	}
	if c.Layout.RowTolerance <= 0 {
		return fmt.Errorf("row tolerance must be positive, got %v", c.Layout.RowTolerance)
	}
	return nil
}

// Pipeline bundles an OCR engine with layout reconstruction settings.
// Build one with Builder; Close releases the engine.
type Pipeline struct {
	cfg    Config
	engine ocr.Engine
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg      Config
	instance ocr.Engine
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole config at once.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	if b.cfg.Preference == nil {
		b.cfg.Preference = ocr.DefaultPreference
	}
	return b
}

// WithEngine names the OCR backend to use.
func (b *Builder) WithEngine(name string) *Builder {
	b.cfg.Engine = name
	return b
}

// WithEngineInstance injects an already-constructed engine, bypassing the
// registry. The pipeline takes ownership and closes it.
func (b *Builder) WithEngineInstance(eng ocr.Engine) *Builder {
	b.instance = eng
	return b
}

// WithLayout sets the layout reconstruction thresholds.
func (b *Builder) WithLayout(cfg layout.Config) *Builder {
	b.cfg.Layout = cfg
	return b
}

// WithMaxDimension bounds the longer image side before recognition (if >0).
func (b *Builder) WithMaxDimension(px int) *Builder {
	if px > 0 {
		b.cfg.MaxDimension = px
	}
	return b
}

// WithEnhancement toggles the pre-recognition quality boost.
func (b *Builder) WithEnhancement(enabled bool) *Builder {
	b.cfg.Enhance = enabled
	return b
}

// WithTableDetection toggles table reconstruction.
func (b *Builder) WithTableDetection(enabled bool) *Builder {
	b.cfg.DetectTables = enabled
	return b
}

// Build validates the config and resolves the OCR engine. A missing or
// unusable backend is a fatal error here, not a per-image failure.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	eng := b.instance
	var err error
	switch {
	case eng != nil:
	case b.cfg.Engine != "":
		eng, err = ocr.New(b.cfg.Engine)
	case len(b.cfg.Preference) > 0:
		eng, err = ocr.BestAvailableFrom(b.cfg.Preference)
	default:
		eng, err = ocr.BestAvailable()
	}
	if err != nil {
		return nil, fmt.Errorf("resolve OCR engine: %w", err)
	}

	slog.Debug("Pipeline built",
		"engine", eng.Name(),
		"enhance", b.cfg.Enhance,
		"detect_tables", b.cfg.DetectTables,
		"max_dimension", b.cfg.MaxDimension)

	return &Pipeline{cfg: b.cfg, engine: eng}, nil
}

// Engine returns the name of the resolved OCR backend.
func (p *Pipeline) Engine() string {
	if p == nil || p.engine == nil {
		return ""
	}
	return p.engine.Name()
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Close releases the OCR engine.
func (p *Pipeline) Close() error {
	if p == nil || p.engine == nil {
		return nil
	}
	err := p.engine.Close()
	p.engine = nil
	return err
}
