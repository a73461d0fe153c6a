package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devraulu/urlnorm/pkg/normalize"
	"github.com/devraulu/urlnorm/pkg/storage"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlnorm_http_requests_total",
				Help: "HTTP requests by handler and status code",
			},
			[]string{"handler", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "urlnorm_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"handler"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlnorm_normalize_total",
				Help: "Normalize calls by outcome (ok, invalid, config)",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.outcomes)
	return m
}

type server struct {
	opts    *normalize.Options
	store   storage.Storage
	metrics *metrics
	mux     *http.ServeMux
}

type normalizeResponse struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized,omitempty"`
	Error      string `json:"error,omitempty"`
}

type lookupResponse struct {
	Normalized string        `json:"normalized"`
	Link       *storage.Link `json:"link,omitempty"`
}

// newServer wires the handlers. store may be nil, in which case the
// database endpoints answer 503.
func newServer(opts *normalize.Options, store storage.Storage) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &server{
		opts:    opts,
		store:   store,
		metrics: newMetrics(reg),
		mux:     http.NewServeMux(),
	}

	s.handle("GET /normalize", "normalize", s.handleNormalize)
	s.handle("GET /lookup", "lookup", s.handleLookup)
	s.handle("GET /hosts", "hosts", s.handleHosts)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return s.mux
}

func (s *server) handle(pattern, name string, h func(http.ResponseWriter, *http.Request) int) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := h(w, r)
		s.metrics.requests.WithLabelValues(name, strconv.Itoa(code)).Inc()
		s.metrics.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "code", code)
	})
}

func (s *server) normalize(raw string) (string, error) {
	normalized, err := normalize.Normalize(raw, s.opts)
	var cfgErr *normalize.ConfigurationError
	switch {
	case err == nil:
		s.metrics.outcomes.WithLabelValues("ok").Inc()
	case errors.As(err, &cfgErr):
		s.metrics.outcomes.WithLabelValues("config").Inc()
	default:
		s.metrics.outcomes.WithLabelValues("invalid").Inc()
	}
	return normalized, err
}

func (s *server) handleNormalize(w http.ResponseWriter, r *http.Request) int {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return writeJSON(w, http.StatusBadRequest, normalizeResponse{Error: "missing url parameter"})
	}

	normalized, err := s.normalize(raw)
	if err != nil {
		return writeJSON(w, http.StatusUnprocessableEntity, normalizeResponse{Input: raw, Error: err.Error()})
	}
	return writeJSON(w, http.StatusOK, normalizeResponse{Input: raw, Normalized: normalized})
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) int {
	if s.store == nil {
		return writeJSON(w, http.StatusServiceUnavailable, normalizeResponse{Error: "no database configured"})
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		return writeJSON(w, http.StatusBadRequest, normalizeResponse{Error: "missing url parameter"})
	}

	normalized, err := s.normalize(raw)
	if err != nil {
		return writeJSON(w, http.StatusUnprocessableEntity, normalizeResponse{Input: raw, Error: err.Error()})
	}

	link, err := s.store.Lookup(r.Context(), normalized)
	if errors.Is(err, storage.ErrNotFound) {
		return writeJSON(w, http.StatusNotFound, lookupResponse{Normalized: normalized})
	}
	if err != nil {
		slog.Error("lookup failed", slog.String("url", normalized), slog.Any("err", err))
		return writeJSON(w, http.StatusInternalServerError, normalizeResponse{Input: raw, Error: "lookup failed"})
	}
	return writeJSON(w, http.StatusOK, lookupResponse{Normalized: normalized, Link: &link})
}

func (s *server) handleHosts(w http.ResponseWriter, r *http.Request) int {
	if s.store == nil {
		return writeJSON(w, http.StatusServiceUnavailable, normalizeResponse{Error: "no database configured"})
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return writeJSON(w, http.StatusBadRequest, normalizeResponse{Error: "limit must be between 1 and 1000"})
		}
		limit = n
	}

	counts, err := s.store.HostCounts(r.Context(), limit)
	if err != nil {
		return writeJSON(w, http.StatusInternalServerError, normalizeResponse{Error: "host count failed"})
	}
	if counts == nil {
		counts = []storage.HostCount{}
	}
	return writeJSON(w, http.StatusOK, counts)
}

func writeJSON(w http.ResponseWriter, code int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("err", err))
	}
	return code
}
