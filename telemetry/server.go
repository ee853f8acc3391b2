// Package telemetry serves the debug status feed: JSON snapshots over HTTP and a
// msgpack snapshot stream over a websocket.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/engine"
)

const (
	RouteStatus     = "/status"
	RouteHighScores = "/highscores"
	RouteStream     = "/stream"
	RouteMetrics    = "/metrics/:group"

	writeWait       = time.Second
	shutdownTimeout = 2 * time.Second
)

// Source supplies game snapshots and metric groups
type Source interface {
	Snapshot() engine.Snapshot
	Metrics(group string) map[string]any
}

// Server routes the status endpoints
type Server struct {
	router   *way.Router
	src      Source
	interval time.Duration
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewServer builds the routes. interval paces the snapshot stream
func NewServer(src Source, interval time.Duration, log *logrus.Entry) *Server {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		src:      src,
		interval: interval,
		log:      log.WithField("component", "telemetry"),
		upgrader: websocket.Upgrader{
			// Debug feed is bound to a local address
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", RouteStatus, s.handleStatus)
	s.router.HandleFunc("GET", RouteHighScores, s.handleHighScores)
	s.router.HandleFunc("GET", RouteStream, s.handleStream)
	s.router.HandleFunc("GET", RouteMetrics, s.handleMetrics)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	core.Go(func() { errCh <- srv.Serve(ln) })
	s.log.WithField("addr", ln.Addr().String()).Info("status feed listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.src.Snapshot())
}

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.src.Snapshot().HighScores)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	group := way.Param(r.Context(), "group")
	m := s.src.Metrics(group)
	if len(m) == 0 {
		http.Error(w, "unknown metric group", http.StatusNotFound)
		return
	}
	s.writeJSON(w, m)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("status encode failed")
	}
}

// handleStream pushes a msgpack snapshot every interval until the client leaves
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("stream upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reads only detect the close; clients send nothing
	core.Go(func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.push(conn); err != nil {
			s.log.WithError(err).Debug("stream closed")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) push(conn *websocket.Conn) error {
	snap := s.src.Snapshot()
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
