// Package config defines the application configuration and its loading from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/scandocs/scandoc/internal/pipeline"
	"github.com/scandocs/scandoc/internal/utils"
)

// Config represents the complete configuration for the scandoc application.
// It covers all commands (convert, engines, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Engine     EngineConfig     `mapstructure:"engine" yaml:"engine" json:"engine"`
	Layout     LayoutConfig     `mapstructure:"layout" yaml:"layout" json:"layout"`
	Processing ProcessingConfig `mapstructure:"processing" yaml:"processing" json:"processing"`
	Document   DocumentConfig   `mapstructure:"document" yaml:"document" json:"document"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
}

// EngineConfig selects and parameterizes the OCR backend.
type EngineConfig struct {
	// Name of the backend; empty selects the best available.
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`
}

// LayoutConfig holds the layout reconstruction thresholds in pixels.
type LayoutConfig struct {
	ParagraphGap float64 `mapstructure:"paragraph_gap" yaml:"paragraph_gap" json:"paragraph_gap"`
	RowTolerance float64 `mapstructure:"row_tolerance" yaml:"row_tolerance" json:"row_tolerance"`
}

// ProcessingConfig holds the per-image pipeline toggles.
type ProcessingConfig struct {
	Enhance      bool `mapstructure:"enhance" yaml:"enhance" json:"enhance"`
	DetectTables bool `mapstructure:"detect_tables" yaml:"detect_tables" json:"detect_tables"`
	MaxDimension int  `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
}

// DocumentConfig controls the generated Word document.
type DocumentConfig struct {
	Title             string `mapstructure:"title" yaml:"title" json:"title"`
	IncludeImage      bool   `mapstructure:"include_image" yaml:"include_image" json:"include_image"`
	IncludeConfidence bool   `mapstructure:"include_confidence" yaml:"include_confidence" json:"include_confidence"`
}

// OutputConfig contains output formatting settings for the CLI.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
	Dir    string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// OutputFormats lists the formats the convert command can produce.
var OutputFormats = []string{"docx", "json", "yaml", "csv", "text"}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	lc := layout.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Engine: EngineConfig{
			Name:     "",
			Language: ocr.DefaultLanguage,
		},
		Layout: LayoutConfig{
			ParagraphGap: lc.ParagraphGap,
			RowTolerance: lc.RowTolerance,
		},
		Processing: ProcessingConfig{
			Enhance:      true,
			DetectTables: true,
			MaxDimension: utils.DefaultMaxDimension,
		},
		Document: DocumentConfig{
			Title:             "Extracted Document",
			IncludeImage:      true,
			IncludeConfidence: true,
		},
		Output: OutputConfig{
			Format: "docx",
			File:   "",
			Dir:    ".",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     10,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks the configuration for values no command can run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}

	if c.Engine.Name != "" {
		known := false
		for _, name := range ocr.Registered() {
			if name == c.Engine.Name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown engine %q (registered: %s)",
				c.Engine.Name, strings.Join(ocr.Registered(), ", "))
		}
	}

	if c.Layout.ParagraphGap <= 0 {
		return fmt.Errorf("layout.paragraph_gap must be positive, got %v", c.Layout.ParagraphGap)
	}
	if c.Layout.RowTolerance <= 0 {
		return fmt.Errorf("layout.row_tolerance must be positive, got %v", c.Layout.RowTolerance)
	}
	if c.Processing.MaxDimension < 0 {
		return fmt.Errorf("processing.max_dimension must not be negative, got %d", c.Processing.MaxDimension)
	}

	formatOK := false
	for _, f := range OutputFormats {
		if c.Output.Format == f {
			formatOK = true
			break
		}
	}
	if !formatOK {
		return fmt.Errorf("invalid output.format %q (want one of %s)",
			c.Output.Format, strings.Join(OutputFormats, ", "))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("server.timeout_sec must be at least 1, got %d", c.Server.TimeoutSec)
	}

	return nil
}

// ToPipelineConfig translates the file-level settings into the pipeline's
// own configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Engine = c.Engine.Name
	cfg.Layout = layout.Config{
		ParagraphGap: c.Layout.ParagraphGap,
		RowTolerance: c.Layout.RowTolerance,
	}
	cfg.MaxDimension = c.Processing.MaxDimension
	cfg.Enhance = c.Processing.Enhance
	cfg.DetectTables = c.Processing.DetectTables
	return cfg
}
