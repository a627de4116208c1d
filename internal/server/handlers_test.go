package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/ocr"
	"github.com/scandocs/scandoc/internal/pipeline"
)

// stubPipeline fakes the processing pipeline for handler tests.
type stubPipeline struct {
	res *pipeline.Result
	err error
}

func (p *stubPipeline) ProcessContext(_ context.Context, _ image.Image) (*pipeline.Result, error) {
	return p.res, p.err
}

func (p *stubPipeline) Engine() string { return "stub" }

func (p *stubPipeline) Close() error { return nil }

func successfulResult() *pipeline.Result {
	frags := []ocr.Fragment{
		ocr.NewFragmentFromRect("hello", 0, 10, 40, 12, 0.9),
		ocr.NewFragmentFromRect("world", 50, 10, 40, 12, 0.8),
	}
	return &pipeline.Result{
		Engine:     "stub",
		Fragments:  frags,
		Text:       "hello world",
		Confidence: layout.Aggregate(frags),
		Success:    true,
	}
}

func noTextResult() *pipeline.Result {
	return &pipeline.Result{
		Engine:  "stub",
		Success: false,
		Error:   "no text detected in image",
	}
}

func testServer(t *testing.T, pl pipelineInterface) *Server {
	t.Helper()
	return newServerWith(pl, Config{CORSOrigin: "*", MaxUploadMB: 10, TimeoutSec: 30})
}

// uploadRequest builds a multipart POST with a small PNG under field "image".
func uploadRequest(t *testing.T, target, filename string) *http.Request {
	t.Helper()
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, image.NewNRGBA(image.Rect(0, 0, 20, 20))))
	return uploadRequestRaw(t, target, filename, imgBuf.Bytes())
}

func uploadRequestRaw(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthHandler(t *testing.T) {
	s := testServer(t, &stubPipeline{})
	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "stub", resp.Engine)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	s := testServer(t, &stubPipeline{})
	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEnginesHandler(t *testing.T) {
	s := testServer(t, &stubPipeline{})
	rec := httptest.NewRecorder()
	s.enginesHandler(rec, httptest.NewRequest(http.MethodGet, "/engines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EnginesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stub", resp.Active)
	assert.Contains(t, resp.Registered, ocr.EngineTesseract)
	assert.Contains(t, resp.Registered, ocr.EngineHandwriting)
}

func TestExtractHandler_Success(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "hello world", resp.Result.Text)
}

func TestExtractHandler_NoTextIsStillOK(t *testing.T) {
	s := testServer(t, &stubPipeline{res: noTextResult()})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code, "soft failure keeps HTTP 200")
	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "no text detected in image", resp.Error)
}

func TestExtractHandler_TextFormat(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract?format=text", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestExtractHandler_CSVFormat(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract?format=csv", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "x_center,y_center,confidence,text")
}

func TestExtractHandler_YAMLFormat(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract?format=yaml", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "text: hello world")
	assert.Contains(t, rec.Body.String(), "engine: stub")
}

func TestExtractHandler_Errors(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})

	// Wrong method.
	rec := httptest.NewRecorder()
	s.extractHandler(rec, httptest.NewRequest(http.MethodGet, "/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// No multipart body.
	rec = httptest.NewRecorder()
	s.extractHandler(rec, httptest.NewRequest(http.MethodPost, "/extract", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unsupported file extension.
	rec = httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract", "scan.gif"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported format")

	// Bytes that do not decode as an image.
	rec = httptest.NewRecorder()
	s.extractHandler(rec, uploadRequestRaw(t, "/extract", "scan.png", []byte("not an image")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid image format")
}

func TestExtractHandler_PipelineFailure(t *testing.T) {
	s := testServer(t, &stubPipeline{err: errors.New("engine crashed")})
	rec := httptest.NewRecorder()
	s.extractHandler(rec, uploadRequest(t, "/extract", "scan.png"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "engine crashed")
}

func TestConvertHandler_ReturnsDocument(t *testing.T) {
	s := testServer(t, &stubPipeline{res: successfulResult()})
	rec := httptest.NewRecorder()
	s.convertHandler(rec, uploadRequest(t, "/convert", "receipt.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, docxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "extracted_document_receipt.docx")

	// The payload is a readable zip package.
	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "word/document.xml")
}

func TestConvertHandler_NoTextIsUnprocessable(t *testing.T) {
	s := testServer(t, &stubPipeline{res: noTextResult()})
	rec := httptest.NewRecorder()
	s.convertHandler(rec, uploadRequest(t, "/convert", "blank.png"))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "no text detected in image", resp.Error)
}
