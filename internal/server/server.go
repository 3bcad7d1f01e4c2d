// Package server exposes the retrieval pipeline over HTTP for the browser
// front end: document upload, ad-hoc chunk storage, vector search and chat.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ragserver/internal/chat"
	"ragserver/internal/service"
)

// maxUploadBytes bounds multipart document uploads.
const maxUploadBytes = 32 << 20

// Server wires the retrieval service and chat providers into an HTTP API.
type Server struct {
	svc            *service.Service
	providers      map[string]chat.Provider
	corpusPath     string
	allowedOrigins []string
	log            *slog.Logger
}

// Config carries the server's collaborators and settings.
type Config struct {
	Service        *service.Service
	Providers      map[string]chat.Provider
	CorpusPath     string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	providers := cfg.Providers
	if providers == nil {
		providers = map[string]chat.Provider{}
	}
	return &Server{
		svc:            cfg.Service,
		providers:      providers,
		corpusPath:     cfg.CorpusPath,
		allowedOrigins: cfg.AllowedOrigins,
		log:            log,
	}
}

// Handler returns the routed HTTP handler with CORS and request logging
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/documents", s.handleUploadDocument)
	mux.HandleFunc("POST /api/chunks", s.handleStoreChunk)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/corpus/ingest", s.handleCorpusIngest)
	return s.withRequestLog(s.withCORS(mux))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{
		"status": "failed",
		"error":  msg,
	})
}
