// Package api exposes the HTTP interface for the crawl service.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageparse/crawler/internal/crawl"
)

// SessionFactory builds a crawl session preconfigured for one page type.
type SessionFactory func(opts ...crawl.Option) *crawl.Session

// Server wires HTTP handlers to the registered page types. Sessions of one
// site share a single backend handle, which supports sequential use only, so
// the server runs at most one crawl per site at a time.
type Server struct {
	router chi.Router
	logger *zap.Logger
	sites  map[string]SessionFactory
	locks  map[string]*sync.Mutex
}

// NewServer constructs a Server with middleware and routes. sites maps a
// page-type name (e.g. "amazon_book") to its session factory.
func NewServer(logger *zap.Logger, sites map[string]SessionFactory) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	locks := make(map[string]*sync.Mutex, len(sites))
	for name := range sites {
		locks[name] = &sync.Mutex{}
	}
	s := &Server{
		logger: logger,
		sites:  sites,
		locks:  locks,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/crawl", s.crawl)
		r.Get("/sites", s.listSites)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.sites))
	for name := range s.sites {
		names = append(names, name)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sites": names})
}

type crawlRequest struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

type crawlResponse struct {
	SessionID string         `json:"session_id"`
	OK        bool           `json:"ok"`
	Page      crawl.PageInfo `json:"page"`
	Data      crawl.Record   `json:"data"`
}

func (s *Server) crawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	factory, ok := s.sites[req.Site]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	// Construction may dial the shared handle, so it sits inside the lock
	// together with the cycle itself.
	mu := s.locks[req.Site]
	mu.Lock()
	session := factory(crawl.WithLogger(s.logger))
	ok = session.Run(r.Context(), req.URL)
	mu.Unlock()

	writeJSON(w, http.StatusOK, crawlResponse{
		SessionID: session.ID(),
		OK:        ok,
		Page:      session.Page(),
		Data:      session.Data(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
