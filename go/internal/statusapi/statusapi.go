// Package statusapi exposes a small local HTTP surface over the running
// client: the current view for debugging UIs and processing counters for
// monitoring.
package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/client"
)

// Config holds the status server configuration.
type Config struct {
	Addr string
}

// DefaultConfig returns default status server configuration.
func DefaultConfig() Config {
	return Config{Addr: ":8091"}
}

// Server serves /health, /view and /stats for one client.
type Server struct {
	cfg    Config
	client *client.Client
	srv    *http.Server
}

// New creates a status server over the client.
func New(cfg Config, c *client.Client) *Server {
	s := &Server{cfg: cfg, client: c}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/view", s.handleView)
	mux.HandleFunc("/stats", s.handleStats)

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.AllowAll().Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown. Blocks.
func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("status server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.client.CurrentView())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.client.StatsSnapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("status response encode failed")
	}
}
