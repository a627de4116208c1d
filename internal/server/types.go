// Package server exposes the processing pipeline over HTTP: JSON extraction,
// Word document conversion, engine discovery, metrics, and a WebSocket
// channel with per-stage progress events.
package server

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scandocs/scandoc/internal/document"
	"github.com/scandocs/scandoc/internal/pipeline"
)

// pipelineInterface defines the methods the server needs from a pipeline.
type pipelineInterface interface {
	ProcessContext(ctx context.Context, img image.Image) (*pipeline.Result, error)
	Engine() string
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    pipelineInterface
	generator   *document.Generator
	docOpts     document.RenderOptions
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config
	Document       document.RenderOptions
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// EnginesResponse lists the OCR backends known to this build.
type EnginesResponse struct {
	Registered []string `json:"registered"`
	Available  []string `json:"available"`
	Active     string   `json:"active"`
}

// ExtractResponse wraps a processing result for the extract endpoint.
type ExtractResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewServer creates a server, building the pipeline from the provided
// config. An unusable OCR backend fails here, before any request is served.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}
	return newServerWith(pl, config), nil
}

// newServerWith wires an existing pipeline, letting tests inject stubs.
func newServerWith(pl pipelineInterface, config Config) *Server {
	docOpts := config.Document
	if docOpts.Title == "" {
		docOpts = document.DefaultRenderOptions()
	}
	maxUploadMB := config.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	timeoutSec := config.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 120
	}
	return &Server{
		pipeline:    pl,
		generator:   document.NewGenerator(),
		docOpts:     docOpts,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: maxUploadMB,
		timeoutSec:  timeoutSec,
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// requestTimeout bounds the processing time of one request.
func (s *Server) requestTimeout() time.Duration {
	return time.Duration(s.timeoutSec) * time.Second
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/engines", s.corsMiddleware(s.enginesHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/convert", s.corsMiddleware(s.convertHandler))
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
