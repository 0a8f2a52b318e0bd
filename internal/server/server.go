// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"faqbot/internal/config"
	"faqbot/internal/domain"
)

const (
	statusMessage   = "FAQ chatbot is running!"
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// ChatRequest is the JSON body for POST /chat/.
type ChatRequest struct {
	Question string `json:"question"`
	Language string `json:"language,omitempty"`
}

// ChatResponse is the JSON response for POST /chat/.
type ChatResponse struct {
	Response string `json:"response"`
}

type statusResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wires the chat service into an http.Server.
type Server struct {
	svc    domain.ChatService
	cfg    config.ServerConfig
	logger *slog.Logger
	srv    *http.Server
}

func New(svc domain.ChatService, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, cfg: cfg, logger: logger}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	var limiter *rate.Limiter
	if s.cfg.RequestsPerSecond > 0 {
		burst := s.cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), burst)
	}
	chat := RateLimit(limiter)(http.HandlerFunc(s.handleChat))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.Handle("POST /chat/{$}", chat)
	mux.Handle("POST /chat", chat)

	origin := s.cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return Chain(mux,
		Recover(s.logger),
		Logger(s.logger),
		CORS(origin),
		OTel("faqbot"),
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutCtx)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Message: statusMessage})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}
	res := s.svc.Ask(r.Context(), req.Question, req.Language)
	writeJSON(w, http.StatusOK, ChatResponse{Response: res.Text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
