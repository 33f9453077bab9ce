// Package api is the HTTP and WebSocket front door over an Engine:
// search, health, metrics passthrough, and autocomplete, matching the
// original FastAPI surface's route set.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/wizenheimer/lexdex/internal/cache"
	"github.com/wizenheimer/lexdex/internal/index"
	"github.com/wizenheimer/lexdex/internal/query"
	"github.com/wizenheimer/lexdex/internal/rank"
)

// Searcher is the subset of Engine the API needs.
type Searcher interface {
	Search(ctx context.Context, raw string, topK int) ([]rank.Result, error)
	Suggestions(prefix string, limit int) []string
	Metadata(docID int) (index.Metadata, bool)
}

// CacheObserver is the subset of engine.Observer this package needs. It's
// declared here rather than reusing engine.Observer directly so this
// package doesn't have to import internal/engine just to wire metrics.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// Server wires a Searcher, a result-window Cache, and a Prometheus
// metrics handler behind a *http.ServeMux.
type Server struct {
	engine  Searcher
	cache   *cache.Cache
	obs     CacheObserver
	metrics http.Handler
	mux     *http.ServeMux
}

// NewServer builds a Server. metrics is normally a promhttp handler
// (cmd/lexsearch passes promhttp.HandlerFor over its own registry), but
// any http.Handler works, which keeps this package free of a direct
// Prometheus import. obs records the cache hit/miss counters that
// handleSearch's cache check drives (§3.9).
func NewServer(engine Searcher, c *cache.Cache, obs CacheObserver, metrics http.Handler) *Server {
	s := &Server{engine: engine, cache: c, obs: obs, metrics: metrics, mux: http.NewServeMux()}
	s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("GET /suggest", s.handleSuggest)
	s.mux.HandleFunc("GET /ws/suggestions", s.handleSuggestWS)
	s.mux.Handle("GET /metrics", s.metrics)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"limit"`
}

type searchResult struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
	Court string  `json:"court,omitempty"`
	Date  string  `json:"date,omitempty"`
}

type searchResponse struct {
	Results       []searchResult `json:"results"`
	TotalInWindow int            `json:"total_in_window"`
}

// handleSearch mirrors the original's POST /search: decode a {query,
// limit} body, consult the result-window cache, fall back to the
// Engine, and enrich each hit with its court/date metadata where the
// Engine exposes one. An empty query maps to 400; every other search
// error, including a non-empty parse fault like an unbalanced quote,
// maps to 500 (§7 Policy).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	if cached, ok := s.cache.Get(req.Query, req.TopK); ok {
		s.obs.CacheHit()
		writeJSON(w, http.StatusOK, s.enrichIDs(cached))
		return
	}
	s.obs.CacheMiss()

	results, err := s.engine.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("api: search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	s.cache.Set(req.Query, req.TopK, ids)

	resp := searchResponse{TotalInWindow: len(results)}
	for _, r := range results {
		resp.Results = append(resp.Results, s.enrichOne(r.DocID, r.Score))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) enrichIDs(ids []int) searchResponse {
	resp := searchResponse{TotalInWindow: len(ids)}
	for _, id := range ids {
		resp.Results = append(resp.Results, s.enrichOne(id, 0))
	}
	return resp
}

func (s *Server) enrichOne(docID int, score float64) searchResult {
	res := searchResult{DocID: docID, Score: score}
	if meta, ok := s.engine.Metadata(docID); ok {
		res.Court = meta.Court
		res.Date = meta.Date
	}
	return res
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": s.engine.Suggestions(prefix, limit)})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type suggestionRequest struct {
	Prefix string `json:"prefix"`
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// handleSuggestWS mirrors the original's websocket_suggestions handler:
// accept the connection, then for every inbound {"prefix": "..."}
// message, reply with the matching suggestions.
func (s *Server) handleSuggestWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("api: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req suggestionRequest
		var resp suggestionResponse
		if err := json.Unmarshal(data, &req); err != nil {
			resp.Error = "malformed suggestion request"
		} else {
			resp.Suggestions = s.engine.Suggestions(req.Prefix, 5)
		}

		encoded, err := json.Marshal(resp)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
