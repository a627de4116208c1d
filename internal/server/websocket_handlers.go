package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/scandocs/scandoc/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers enforce the CORS policy on the HTTP endpoints; the
		// WebSocket channel accepts any origin.
		return true
	},
}

// ConvertRequest is the message a client sends over the WebSocket channel.
// Image carries the raw file bytes (JSON encodes them as base64).
type ConvertRequest struct {
	Image    []byte `json:"image"`
	Filename string `json:"filename,omitempty"`
	Format   string `json:"format,omitempty"` // "json" (default) or "docx"
}

// ProgressEvent reports the state of one conversion over the channel.
type ProgressEvent struct {
	Type      string  `json:"type"` // "progress", "completed", "error"
	Stage     string  `json:"stage,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Result    any     `json:"result,omitempty"`
	Document  []byte  `json:"document,omitempty"`
	Error     string  `json:"error,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// websocketHandler upgrades the connection and serves conversion requests
// with per-stage progress events until the client disconnects.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.serveWebSocket(conn)
}

func (s *Server) serveWebSocket(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Keepalive pings until the connection goes away.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.handleWebSocketRequest(conn, data)
		}
	}
}

func (s *Server) handleWebSocketRequest(conn *websocket.Conn, data []byte) {
	requestID := uuid.NewString()

	var req ConvertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendEvent(conn, ProgressEvent{
			Type: "error", Error: fmt.Sprintf("invalid request: %v", err), RequestID: requestID,
		})
		return
	}
	if len(req.Image) == 0 {
		s.sendEvent(conn, ProgressEvent{Type: "error", Error: "no image data provided", RequestID: requestID})
		return
	}
	if int64(len(req.Image)) > s.maxUploadMB*1024*1024 {
		s.sendEvent(conn, ProgressEvent{Type: "error", Error: "image too large", RequestID: requestID})
		return
	}

	s.sendEvent(conn, ProgressEvent{Type: "progress", Stage: "decoding", Progress: 0.1, RequestID: requestID})

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Image))
	if err != nil {
		s.sendEvent(conn, ProgressEvent{Type: "error", Error: "invalid image format", RequestID: requestID})
		return
	}

	s.sendEvent(conn, ProgressEvent{Type: "progress", Stage: "extracting", Progress: 0.3, RequestID: requestID})

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout())
	defer cancel()
	res, err := s.pipeline.ProcessContext(ctx, img)
	if err != nil {
		s.sendEvent(conn, ProgressEvent{
			Type: "error", Error: fmt.Sprintf("processing failed: %v", err), RequestID: requestID,
		})
		return
	}

	event := ProgressEvent{Type: "completed", Progress: 1.0, Result: res, RequestID: requestID}
	if req.Format == "docx" {
		s.sendEvent(conn, ProgressEvent{Type: "progress", Stage: "rendering", Progress: 0.8, RequestID: requestID})
		doc, err := s.generator.Generate(res, img, s.docOpts)
		if err != nil {
			s.sendEvent(conn, ProgressEvent{
				Type: "error", Error: fmt.Sprintf("document generation failed: %v", err), RequestID: requestID,
			})
			return
		}
		event.Document = doc
	}
	s.sendEvent(conn, event)
}

func (s *Server) sendEvent(conn *websocket.Conn, event ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal WebSocket event", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket event", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
