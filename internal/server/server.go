// Package server exposes the dashboard over HTTP.
//
// Routes are registered on a gorilla/mux router wrapped with request
// metrics, session resolution and OpenTelemetry tracing. Handlers only
// translate between HTTP and the repository, session and export packages.
package server

import (
	"net/http"
	"time"

	"aduan/internal/export"
	"aduan/internal/health"
	"aduan/internal/imageref"
	"aduan/internal/observability"
	"aduan/internal/reconcile"
	"aduan/internal/repository"
	"aduan/internal/session"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Deps holds everything the handlers need.
type Deps struct {
	Repo           *repository.Repository
	Reconciler     *reconcile.Reconciler // optional
	Sessions       *session.Store
	Exporter       *export.Exporter
	Resolver       *imageref.Resolver
	Monitor        *health.Monitor
	MaxUploadBytes int64
	Logger         *zap.Logger
	Metrics        observability.Metrics
}

// Server serves the dashboard API, printable listing and export.
type Server struct {
	Deps
	now func() time.Time
}

// New creates a server.
func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = observability.NopMetrics{}
	}
	if d.Resolver == nil {
		d.Resolver = imageref.NewResolver("")
	}
	return &Server{Deps: d, now: time.Now}
}

// Router builds the HTTP handler with all routes.
//
// Routes:
//   - /health, /metrics: operational endpoints
//   - /api/session...: view and admin gate
//   - /api/teachers, /api/reports...: directory and report operations
//   - /api/dashboard, /api/analytics, /api/charts: derived views
//   - /reports/print, /reports/export: printable listing and PDF
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware, s.sessionMiddleware)

	r.Handle("/health", s.Monitor.Handler()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", s.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/view", s.SetView).Methods(http.MethodPut)
	api.HandleFunc("/session/admin", s.AdminLogin).Methods(http.MethodPost)
	api.HandleFunc("/session/admin", s.AdminLogout).Methods(http.MethodDelete)

	api.HandleFunc("/teachers", s.ListTeachers).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.ListReports).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.SubmitReport).Methods(http.MethodPost)
	api.HandleFunc("/reports/{id}/status", s.UpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/reports/{id}", s.DeleteReport).Methods(http.MethodDelete)
	api.HandleFunc("/refresh", s.Refresh).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", s.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.Analytics).Methods(http.MethodGet)
	api.HandleFunc("/charts/{name}.png", s.Chart).Methods(http.MethodGet)

	r.HandleFunc("/reports/print", s.Print).Methods(http.MethodGet)
	r.HandleFunc("/reports/export", s.Export).Methods(http.MethodGet)

	return otelhttp.NewHandler(r, "aduan")
}
