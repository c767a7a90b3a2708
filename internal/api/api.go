// Package api provides HTTP handlers and the API server for MindMate.
//
// It exposes RESTful endpoints for chatting, mood logging, technique
// lookup, and practice tracking, plus the inbound SMS webhook.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/TsarRusi/mindmate/internal/mood"
	"github.com/TsarRusi/mindmate/internal/router"
	"github.com/TsarRusi/mindmate/internal/store"
	"github.com/TsarRusi/mindmate/internal/techniques"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown on context cancellation.
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr           string
	WebhookHandler http.HandlerFunc
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithWebhookHandler mounts an inbound message webhook at /webhook/sms.
func WithWebhookHandler(h http.HandlerFunc) Option {
	return func(o *Opts) { o.WebhookHandler = h }
}

// Server holds the dependencies shared by the HTTP handlers.
type Server struct {
	st      store.Store
	router  *router.Router
	moodLog *mood.Log
	tracker *techniques.Tracker
	opts    Opts
}

// NewServer creates an API server over the given store and router.
func NewServer(st store.Store, rt *router.Router, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		st:      st,
		router:  rt,
		moodLog: mood.NewLog(st),
		tracker: techniques.NewTracker(st),
		opts:    cfg,
	}
}

// Handler returns the routing mux for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/message", s.messageHandler)
	mux.HandleFunc("/mood", s.moodHandler)
	mux.HandleFunc("/mood/summary", s.moodSummaryHandler)
	mux.HandleFunc("/techniques", s.techniquesHandler)
	mux.HandleFunc("/techniques/random", s.randomTechniqueHandler)
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/favorites", s.favoritesHandler)
	mux.HandleFunc("/ratings", s.ratingsHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	if s.opts.WebhookHandler != nil {
		mux.HandleFunc("/webhook/sms", s.opts.WebhookHandler)
	}
	return mux
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: MindMate API listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Server.Run: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
