package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreiashu/geolookup"
)

// maxLimit caps the limit a client may request.
const maxLimit = 100

// lookupService is the part of geolookup.Service the handler needs.
type lookupService interface {
	Ready() bool
	LookupN(query string, limit int) []geolookup.Result
}

// handler serves lookups over HTTP.
type handler struct {
	svc     lookupService
	cache   *cache.Cache // nil disables response caching
	metrics *metrics
	logger  *slog.Logger
}

func newHandler(svc lookupService, cacheTTL time.Duration, m *metrics, logger *slog.Logger) *handler {
	h := &handler{svc: svc, metrics: m, logger: logger}
	if cacheTTL > 0 {
		h.cache = cache.New(cacheTTL, cacheTTL*2)
	}
	return h
}

// routes mounts the endpoints. gatherer backs /metrics.
func (h *handler) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(h.logger))

	r.Get("/lookup", h.handleLookup)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleLookup handles GET /lookup?key=<query>&limit=<n>.
func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: geolookup.ErrNotReady.Error()})
		return
	}

	q := r.URL.Query()
	limit := geolookup.DefaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}

	query := q.Get("key")
	results := h.lookup(query, limit)
	if h.metrics != nil {
		h.metrics.Lookups.Inc()
	}
	writeJSON(w, http.StatusOK, results)
}

// lookup answers from the response cache when possible. Queries that
// tokenize identically share a cache entry.
func (h *handler) lookup(query string, limit int) []geolookup.Result {
	if h.cache == nil {
		return h.search(query, limit)
	}

	key := strings.Join(geolookup.Tokenize(query), " ") + "|" + strconv.Itoa(limit)
	if v, ok := h.cache.Get(key); ok {
		if h.metrics != nil {
			h.metrics.CacheHits.Inc()
		}
		return v.([]geolookup.Result)
	}
	if h.metrics != nil {
		h.metrics.CacheMisses.Inc()
	}
	results := h.search(query, limit)
	h.cache.SetDefault(key, results)
	return results
}

func (h *handler) search(query string, limit int) []geolookup.Result {
	start := time.Now()
	results := h.svc.LookupN(query, limit)
	h.metrics.observeLookup(time.Since(start), len(results))
	return results
}

// handleHealth reports 200 once the index is built, 503 before.
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "initializing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
