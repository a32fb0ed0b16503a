// Package web serves the dashboard API. It is a thin HTTP adapter over
// the report service; all aggregation happens in the core packages.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/blackwell-systems/droidusage/internal/session"
)

const (
	portScanStart = 3000
	portScanEnd   = 3999
)

// Server exposes the usage reports as a JSON API.
type Server struct {
	svc    *report.Service
	loader *session.Loader
	mux    *http.ServeMux
}

func NewServer(svc *report.Service, loader *session.Loader) *Server {
	s := &Server{svc: svc, loader: loader, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/daily", s.handleDaily)
	s.mux.HandleFunc("GET /api/sessions", s.handleSessions)
	s.mux.HandleFunc("GET /api/blocks", s.handleBlocks)
	s.mux.HandleFunc("GET /api/top", s.handleTop)
	s.mux.HandleFunc("GET /api/trends", s.handleTrends)
	s.mux.HandleFunc("GET /api/analyze/", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/models", s.handleModels)
	s.mux.HandleFunc("GET /api/providers", s.handleProviders)
}

func (s *Server) Handler() http.Handler { return s.mux }

// Listen binds to the requested port, or scans 3000-3999 for a free one
// when port is 0. It returns the bound listener so the caller can report
// the URL before serving.
func (s *Server) Listen(port int) (net.Listener, error) {
	if port != 0 {
		return net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	}
	for p := portScanStart; p <= portScanEnd; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", p))
		if err == nil {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("no free port in %d-%d", portScanStart, portScanEnd)
}

// Serve runs the HTTP server on the listener until the context is
// canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	err := srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func parseRange(r *http.Request) aggregate.Range {
	var rng aggregate.Range
	if since := r.URL.Query().Get("since"); since != "" {
		rng.Since = session.ParseTimestamp(since + "T00:00:00")
	}
	if until := r.URL.Query().Get("until"); until != "" {
		rng.Until = session.ParseTimestamp(until + "T00:00:00")
	}
	return rng
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Daily(r.Context(), parseRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Sessions(r.Context(), parseRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Blocks(r.Context(), parseRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	rep, err := s.svc.Top(r.Context(), parseRange(r), by, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Trends(r.Context(), parseRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var sel analyzer.Selection
	switch strings.TrimPrefix(r.URL.Path, "/api/analyze") {
	case "/cost":
		sel.Cost = true
	case "/patterns":
		sel.Patterns = true
	case "/efficiency":
		sel.Efficiency = true
	default:
		sel.All = true
	}

	res, err := s.svc.Analyze(r.Context(), parseRange(r), sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, _, err := s.catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	_, providers, err := s.catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": providers})
}

// catalog lists the distinct models and providers seen across all
// sessions.
func (s *Server) catalog(ctx context.Context) (models, providers []string, err error) {
	sessions, err := s.loader.LoadAll(ctx, false)
	if err != nil {
		return nil, nil, err
	}

	modelSet := make(map[string]struct{})
	providerSet := make(map[string]struct{})
	for _, sess := range sessions {
		if sess.Model != "" {
			modelSet[sess.Model] = struct{}{}
		}
		if sess.Provider != "" {
			providerSet[sess.Provider] = struct{}{}
		}
	}

	models = sortedKeys(modelSet)
	providers = sortedKeys(providerSet)
	return models, providers, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
