package server

import (
	"errors"
	"net/http"
	"time"

	"aduan/internal/analytics"
	"aduan/internal/charts"
	"aduan/internal/reconcile"
	"aduan/internal/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// dashboardBody is the dashboard view model.
type dashboardBody struct {
	Summary       analytics.Summary `json:"summary"`
	Recent        []reportView      `json:"recent"`
	Discrepancies []reconcile.Entry `json:"discrepancies"`
	LastRefresh   string            `json:"lastRefresh,omitempty"`
	Loaded        bool              `json:"loaded"`
}

// Dashboard returns summary counts, the most recent reports and any
// mutations the feed never confirmed.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	reports := s.Repo.Reports()
	sum := analytics.Summarize(reports)

	body := dashboardBody{
		Summary:       sum,
		Recent:        s.views(sum.Recent),
		Discrepancies: []reconcile.Entry{},
		Loaded:        s.Repo.Loaded(),
	}
	if t := s.Repo.LastRefresh(); !t.IsZero() {
		body.LastRefresh = t.Format("2006-01-02 15:04:05")
	}
	if s.Reconciler != nil {
		entries, err := s.Reconciler.Discrepancies(r.Context())
		if err != nil {
			s.Logger.Warn("⚠️  Could not list discrepancies", zap.Error(err))
		} else if entries != nil {
			body.Discrepancies = entries
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// Analytics returns the status breakdown, top locations and monthly trend.
func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.Compute(s.Repo.Reports()))
}

// Chart renders one analytics series as a PNG.
func (s *Server) Chart(w http.ResponseWriter, r *http.Request) {
	a := analytics.Compute(s.Repo.Reports())

	var (
		png []byte
		err error
	)
	switch mux.Vars(r)["name"] {
	case "status":
		png, err = charts.RenderStatusPie(a.StatusBreakdown)
	case "locations":
		png, err = charts.RenderTopLocations(a.TopLocations)
	case "trend":
		png, err = charts.RenderMonthlyTrend(a.MonthlyTrend)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown chart"})
		return
	}

	if errors.Is(err, charts.ErrNoData) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Tiada data"})
		return
	}
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// Print serves the printable listing.
func (s *Server) Print(w http.ResponseWriter, r *http.Request) {
	html, err := s.Exporter.Listing(s.Repo.Reports()).HTML()
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// Export downloads the listing as PDF. When conversion fails the printable
// page is served inline so the browser's print dialog can take over.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	done := s.Sessions.Begin(sessionID(r), session.OpExport, "")
	defer done()

	start := time.Now()
	res, err := s.Exporter.Export(r.Context(), s.Repo.Reports())
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	disposition := "attachment"
	if res.Fallback {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", disposition+`; filename="`+res.Filename+`"`)
	_, _ = w.Write(res.Body)

	s.Logger.Info("Export served",
		zap.String("file", res.Filename),
		zap.Bool("fallback", res.Fallback),
		zap.Duration("took", time.Since(start)))
}
