// Package server exposes the capture history over HTTP plus a websocket
// feed of new captures.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/clipboard"
	"github.com/clipsift/clipsift/internal/extract"
	"github.com/clipsift/clipsift/internal/history"
	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/internal/types"
)

const requestTimeout = 30 * time.Second

// Options configures New. History is required. Writer, Extractor, Records
// and Blobs are optional; routes that need a missing one answer 503.
type Options struct {
	Addr      string
	History   *history.Buffer
	Writer    *clipboard.Writer
	Extractor *extract.Extractor
	Records   storage.RecordStore
	Blobs     *blob.Store
	Logger    *zap.Logger
}

// Server is the HTTP presentation surface.
type Server struct {
	addr      string
	history   *history.Buffer
	writer    *clipboard.Writer
	extractor *extract.Extractor
	records   storage.RecordStore
	blobs     *blob.Store
	hub       *Hub
	logger    *zap.Logger
	router    chi.Router
	httpSrv   *http.Server
	started   time.Time
}

// New assembles the router and a stopped hub.
func New(opts Options) *Server {
	if opts.History == nil {
		panic("server: Options.History is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:      opts.Addr,
		history:   opts.History,
		writer:    opts.Writer,
		extractor: opts.Extractor,
		records:   opts.Records,
		blobs:     opts.Blobs,
		hub:       newHub(logger),
		logger:    logger,
		started:   time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/status", s.handleStatus)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/entries", s.handleListEntries)
		r.Delete("/entries", s.handleClearEntries)
		r.Get("/entries/{id}", s.handleGetEntry)
		r.Delete("/entries/{id}", s.handleRemoveEntry)
		r.Patch("/entries/{id}/payloads/{index}", s.handleEditPayload)
		r.Post("/entries/{id}/copy", s.handleCopyEntry)
		r.Post("/entries/{id}/save", s.handleSaveEntry)
		r.Post("/ingest", s.handleIngest)
		r.Get("/records", s.handleListRecords)
		r.Delete("/records/{id}", s.handleDeleteRecord)
		r.Get("/blobs/{handle}", s.handleGetBlob)
	})
	// The websocket route stays outside the timeout group; connections are
	// long-lived.
	r.Get("/ws", s.serveWs)

	s.router = r
	return s
}

// Handler returns the assembled router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the hub and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	go s.hub.run()
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.router}
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the hub and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()
	if s.httpSrv == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// HandleEntry pushes a recorded capture to websocket subscribers. Register
// it on the monitor.
func (s *Server) HandleEntry(e *types.Entry) {
	s.hub.broadcastEntry(entryToView(e))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}
