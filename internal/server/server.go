// Package server provides the HTTP API for Pedalcast.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/pedalcast/internal/chat"
	"github.com/hyperjump/pedalcast/internal/config"
	"github.com/hyperjump/pedalcast/internal/extract"
	"github.com/hyperjump/pedalcast/internal/keyword"
	"github.com/hyperjump/pedalcast/internal/predict"
	"github.com/hyperjump/pedalcast/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Pedalcast API.
type Server struct {
	registry  *predict.Registry
	storage   storage.Storage
	reports   *keyword.ReportIndex
	extractor *extract.Extractor
	responder *chat.Responder
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. reports may
// be nil when the report index is unavailable; upload search is then
// disabled but uploads still work.
func NewServer(
	registry *predict.Registry,
	store storage.Storage,
	reports *keyword.ReportIndex,
	extractor *extract.Extractor,
	responder *chat.Responder,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		registry:  registry,
		storage:   store,
		reports:   reports,
		extractor: extractor,
		responder: responder,
		config:    cfg,
		logger:    logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/api/v1/predict/day", s.handlePredictDay)
	r.Post("/api/v1/predict/hour", s.handlePredictHour)
	r.Post("/api/v1/uploads", s.handleUpload)
	r.Get("/api/v1/uploads/search", s.handleUploadSearch)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/bookings", s.handleBookingsList)
	r.Post("/api/v1/bookings", s.handleBookingCreate)
	r.Delete("/api/v1/bookings/{id}", s.handleBookingDelete)
	r.Get("/api/v1/predictions", s.handlePredictionsList)
	r.Get("/api/v1/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
