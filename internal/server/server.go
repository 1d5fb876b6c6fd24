package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"traceview/internal/metrics"
	"traceview/internal/palette"
	"traceview/internal/scheduler"
	"traceview/internal/session"
	"traceview/internal/storage"
	"traceview/internal/trace"
)

// Server wraps HTTP serving of the trace API.
type Server struct {
	httpServer *http.Server
	session    *session.Session
	metrics    *viewMetrics
}

// New creates a configured HTTP server for the session.
func New(addr string, sess *session.Session) *Server {
	reg := prometheus.NewRegistry()
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		session:    sess,
		metrics:    newViewMetrics(reg, sess.Registry()),
	}
	sess.SetObserver(s.metrics.observe)
	s.registerRoutes(mux, reg)
	return s
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux, reg *prometheus.Registry) {
	mux.HandleFunc("GET /api/datasets", s.handleDatasets)
	mux.HandleFunc("POST /api/datasets/{name}/reload", s.handleReload)
	mux.HandleFunc("GET /api/datasets/{name}/application", s.handleApplication)
	mux.HandleFunc("GET /api/datasets/{name}/runtime", s.handleRuntime)
	mux.HandleFunc("GET /api/datasets/{name}/scheduler", s.handleScheduler)
	mux.HandleFunc("GET /api/datasets/{name}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/datasets/{name}/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Registry().Status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.session.Registry().Reload(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      ds.Name,
		"loaded_at": ds.LoadedAt,
	})
}

func (s *Server) handleApplication(w http.ResponseWriter, r *http.Request) {
	toggles, err := parseToggles(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	tl, err := s.session.Application(r.Context(), r.PathValue("name"), toggles, r.URL.Query().Get("highlight"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	minLifespan, err := parseFloat(r, "min_lifespan", s.session.DefaultMinLifespan())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	tl, err := s.session.Runtime(r.Context(), r.PathValue("name"), minLifespan)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleScheduler(w http.ResponseWriter, r *http.Request) {
	stride, err := parseInt(r, "stride", s.session.DefaultStride())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	view, err := s.session.Scheduler(r.Context(), r.PathValue("name"), stride)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.session.Summary(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	toggles, err := parseToggles(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	in := session.Interaction{
		Dataset: r.PathValue("name"),
		Toggles: toggles,
		Click:   r.URL.Query().Get("highlight"),
	}
	if raw := r.URL.Query().Get("min_lifespan"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(errors.New("min_lifespan must be a number")))
			return
		}
		in.MinLifespan = &v
	}
	if raw := r.URL.Query().Get("stride"); raw != "" {
		stride, err := parseInt(r, "stride", 0)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err))
			return
		}
		if stride < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody(scheduler.ErrInvalidStride))
			return
		}
		in.Stride = &stride
	}
	writeJSON(w, http.StatusOK, s.session.Render(r.Context(), in))
}

func parseToggles(r *http.Request) (session.Toggles, error) {
	toggles := session.DefaultToggles()
	for key, dst := range map[string]*bool{
		"abe":      &toggles.ABE,
		"outliers": &toggles.Outliers,
		"idle":     &toggles.Idle,
	} {
		value, err := parseBool(r, key, *dst)
		if err != nil {
			return toggles, err
		}
		*dst = value
	}
	return toggles, nil
}

func parseBool(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(key + " must be a boolean")
	}
	return value, nil
}

func parseFloat(r *http.Request, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return value, nil
}

func parseInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return value, nil
}

// statusFor maps engine and loader failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrInvalidStride):
		return http.StatusBadRequest
	case errors.Is(err, trace.ErrMalformedTrace),
		errors.Is(err, trace.ErrEmptyTrace),
		errors.Is(err, metrics.ErrDegenerateSpan),
		errors.Is(err, metrics.ErrNoResources),
		errors.Is(err, metrics.ErrOverlappingIntervals),
		errors.Is(err, palette.ErrUnknownCategory),
		errors.Is(err, scheduler.ErrUnknownQueueType):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, errorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
