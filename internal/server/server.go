// Package server provides the HTTP API of the matcher agent. The CLI and
// the served page both talk to it: the CLI through the /message dispatch
// and the REST dictionary routes, the page through /register and the
// static assets.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/receipt-matcher/internal/dictionary"
	"github.com/jonathan/receipt-matcher/internal/reconcile"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	session    *reconcile.Session
	dict       *dictionary.Store
	apiKey     string
	validate   *validator.Validate
	rescan     func()
}

// Config holds server configuration
type Config struct {
	Addr    string
	APIKey  string
	Session *reconcile.Session
	Dict    *dictionary.Store
	// Rescan is invoked after a state change that affects annotations,
	// such as toggling hide-matched. May be nil.
	Rescan func()
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("server requires a session")
	}
	if cfg.Dict == nil {
		return nil, fmt.Errorf("server requires a dictionary")
	}

	s := &Server{
		session:  cfg.Session,
		dict:     cfg.Dict,
		apiKey:   cfg.APIKey,
		validate: validator.New(),
		rescan:   cfg.Rescan,
	}
	if s.rescan == nil {
		s.rescan = func() {}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /message", s.handleMessage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /page", s.handlePage)
	mux.HandleFunc("GET /assets/matcher.css", s.handleStylesheet)
	mux.HandleFunc("GET /assets/matcher.js", s.handleScript)

	// Dictionary CRUD. The key wildcard spans segments: pair keys keep
	// slashes through normalization, and clients send them path-escaped.
	mux.HandleFunc("GET /dictionary", s.handleListDictionary)
	mux.HandleFunc("DELETE /dictionary/{key...}", s.handleRemoveDictionary)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withLogging(s.withAPIKey(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Agent listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down agent...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Agent stopped")
	return nil
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withAPIKey rejects requests without the shared key when one is configured.
// Health stays open so process supervisors can probe it.
func (s *Server) withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.URL.Path != "/health" {
			if r.Header.Get("X-API-Key") != s.apiKey {
				s.errorResponse(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
