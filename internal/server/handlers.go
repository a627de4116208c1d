package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/scandocs/scandoc/internal/document"
	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/scandocs/scandoc/internal/pipeline"
	"github.com/scandocs/scandoc/internal/utils"
	"github.com/scandocs/scandoc/internal/version"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Engine:  s.pipeline.Engine(),
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// enginesHandler lists registered and currently usable OCR backends.
func (s *Server) enginesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := EnginesResponse{
		Registered: ocr.Registered(),
		Available:  ocr.Available(),
		Active:     s.pipeline.Engine(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode engines response", "error", err)
	}
}

// readUpload parses the multipart form and decodes the uploaded image.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (image.Image, *multipart.FileHeader, bool) {
	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, nil, false
	}
	defer func() { _ = file.Close() }()

	if err := utils.ValidateUpload(header.Filename, header.Size); err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.DecodeImage(file)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, nil, false
	}
	return img, header, true
}

// process runs the pipeline with the request timeout and records metrics.
func (s *Server) process(ctx context.Context, endpoint string, img image.Image) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.ProcessContext(ctx, img)
	processingDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := pipelineOutcome{err: err}
	if res != nil {
		outcome.success = res.Success
		fragmentsExtracted.Observe(float64(len(res.Fragments)))
	}
	recordOutcome(endpoint, &outcome)
	return res, err
}

// extractHandler returns the raw processing result. An image with no
// recognizable text is still a 200; the payload carries success=false.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := s.process(r.Context(), "extract", img)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Processing failed: %v", err), http.StatusInternalServerError)
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	switch format {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(res.ToPlainText()))
	case "csv":
		out, err := res.ToCSV()
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("Formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))
	case "yaml":
		out, err := res.ToYAML()
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("Formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(out))
	default:
		w.Header().Set("Content-Type", "application/json")
		response := ExtractResponse{Success: res.Success, Result: res, Error: res.Error}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("Failed to encode extract response", "error", err)
		}
	}
}

// convertHandler renders the processing result as a Word document. When the
// image yields no text there is nothing to convert; the request fails with
// 422 instead of producing an empty document.
func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, header, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	res, err := s.process(r.Context(), "convert", img)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Processing failed: %v", err), http.StatusInternalServerError)
		return
	}
	if !res.Success {
		s.writeErrorResponse(w, res.Error, http.StatusUnprocessableEntity)
		return
	}

	data, err := s.generator.Generate(res, img, s.docOpts)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Document generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	name := document.ArtifactName(header.Filename)
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write document response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ExtractResponse{
		Success: false,
		Error:   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
