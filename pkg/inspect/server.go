package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reago-dev/reago/pkg/reactive"
)

// Default tracer name for the inspector.
const defaultTracerName = "reago-inspect"

// ServerConfig configures the inspector server.
type ServerConfig struct {
	// Address is the listen address (default ":7077").
	Address string

	// TracerName is the OpenTelemetry tracer name (default: "reago-inspect").
	TracerName string

	// MetricsOptions configure the Prometheus collector exposed at /metrics.
	MetricsOptions []MetricsOption

	// ReadTimeout and WriteTimeout bound HTTP request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Logger receives request and stream logs. Default: slog.Default.
	Logger *slog.Logger
}

// DefaultServerConfig returns the default inspector configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:      ":7077",
		TracerName:   defaultTracerName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server serves the inspection API over a registry of live units:
// snapshot reads, a live change stream, health and Prometheus scrapes.
type Server struct {
	registry   *Registry
	config     *ServerConfig
	logger     *slog.Logger
	tracer     trace.Tracer
	httpServer *http.Server
}

// NewServer creates an inspector over a registry.
func NewServer(registry *Registry, config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		defaults := DefaultServerConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.TracerName == "" {
			config.TracerName = defaults.TracerName
		}
		if config.ReadTimeout == 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.WriteTimeout == 0 {
			config.WriteTimeout = defaults.WriteTimeout
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		registry: registry,
		config:   config,
		logger:   logger,
		tracer:   otel.Tracer(config.TracerName),
	}
}

// Handler returns the inspector's HTTP handler, mountable under any
// router.
func (s *Server) Handler() http.Handler {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(NewCollector(s.registry, s.config.MetricsOptions...))

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/units", s.traced("units.list", s.handleListUnits))
	r.Get("/units/{name}", s.traced("units.get", s.handleGetUnit))
	r.Get("/units/{name}/live", s.handleLive)
	r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	return r
}

// ListenAndServe runs the inspector until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// traced wraps a handler with an OpenTelemetry span and request logging.
func (s *Server) traced(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), name,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			))
		defer span.End()

		start := time.Now()
		h(w, r.WithContext(ctx))
		span.SetStatus(codes.Ok, "")

		s.logger.Debug("inspect request",
			"route", name,
			"path", r.URL.Path,
			"duration", time.Since(start))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"units":  s.registry.Len(),
	})
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"units": s.registry.Names(),
		"stats": graphStats(),
	})
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	u, ok := s.registry.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "unknown unit " + name,
		})
		return
	}
	writeJSON(w, http.StatusOK, Snapshot(name, u))
}

// graphStats exposes the dependency-graph counters in list responses so
// a plain HTTP poll sees the same numbers a Prometheus scrape does.
func graphStats() map[string]int64 {
	stats := reactive.Stats()
	return map[string]int64{
		"watcher_runs":    stats.WatcherRuns,
		"evaluations":     stats.Evaluations,
		"notifications":   stats.Notifications,
		"teardowns":       stats.Teardowns,
		"active_watchers": stats.ActiveWatchers,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
