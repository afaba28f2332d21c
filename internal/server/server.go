package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/logger"
	"github.com/spigell/hire-picker/internal/store"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second

	maxUploadSize = 32 << 20
)

// DefaultAllowedOrigins is the dashboard's development origin.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// Server exposes the store over HTTP.
type Server struct {
	store          *store.Store
	allowedOrigins map[string]struct{}
	logger         *zap.Logger
}

func New(st *store.Store, allowedOrigins []string, log *zap.Logger) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Server{
		store:          st,
		allowedOrigins: origins,
		logger:         logger.OrNop(log),
	}
}

// Router returns the HTTP handler with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/candidates", s.handleCandidates)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/select/{id}", s.handleSelect)
	mux.HandleFunc("DELETE /api/select/{id}", s.handleDeselect)
	mux.HandleFunc("POST /api/auto_select", s.handleAutoSelect)
	mux.HandleFunc("GET /api/selected", s.handleSelected)
	mux.HandleFunc("GET /api/selected/export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.requestID(s.logging(s.cors(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}
