package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sipeed/sketchcanvas/pkg/bus"
	"github.com/sipeed/sketchcanvas/pkg/converter"
	"github.com/sipeed/sketchcanvas/pkg/logger"
	"github.com/sipeed/sketchcanvas/pkg/prompt"
)

const maxBodyBytes = 32 << 20

// Converter runs one conversion job and reports progress through emit.
type Converter interface {
	Convert(ctx context.Context, job converter.Job, emit converter.EmitFunc) (*converter.Result, error)
}

// CanvasRequest is the body of POST /canvas and the first websocket message.
type CanvasRequest struct {
	ImageData string `json:"imageData"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
}

func (r CanvasRequest) job() converter.Job {
	return converter.Job{
		Name:      r.Name,
		Mode:      prompt.ParseMode(r.Mode),
		ImageData: r.ImageData,
	}
}

type Server struct {
	conv     Converter
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func New(conv Converter) *Server {
	s := &Server{
		conv: conv,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /canvas", s.handleCanvas)
	s.mux.HandleFunc("GET /canvas/ws", s.handleCanvasWS)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("server", "Listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleCanvas streams status updates as NDJSON while the job runs. Errors
// after the headers are sent only show up in the stream.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	var req CanvasRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	out := bus.NewNDJSONWriter(w)
	s.conv.Convert(r.Context(), req.job(), out.Emit)
	if err := out.Err(); err != nil {
		logger.WarnCF("server", "Client stream broken", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) handleCanvasWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("server", "Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	var req CanvasRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(bus.Failure(err))
		return
	}

	stream := &wsStream{conn: conn}
	s.conv.Convert(r.Context(), req.job(), stream.emit)
	stream.close()
}

// wsStream forwards status updates to a websocket client. The connection is
// closed after the final update; after a write error nothing more is sent.
type wsStream struct {
	conn   *websocket.Conn
	err    error
	closed bool
}

func (ws *wsStream) emit(u bus.StatusUpdate) {
	if ws.err != nil || ws.closed {
		return
	}
	if err := ws.conn.WriteJSON(u); err != nil {
		ws.err = err
		logger.WarnCF("server", "Websocket write failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if u.Final() {
		ws.close()
	}
}

func (ws *wsStream) close() {
	if ws.err != nil || ws.closed {
		return
	}
	ws.closed = true
	ws.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
