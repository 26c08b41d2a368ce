// Package health reports whether the dashboard is serving fresh data.
//
// This package implements:
//   - The /health JSON endpoint
//   - Uptime and last refresh tracking
//   - Pending and discrepancy counts from the latest reconciliation pass
package health

import (
	"encoding/json"
	"net/http"
	"time"

	"aduan/internal/reconcile"
)

// Overall states.
const (
	StatusStarting = "starting" // no refresh has succeeded yet
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded" // serving the previous snapshot after a failed refresh
)

// RefreshState is the part of the repository the monitor reads.
type RefreshState interface {
	Loaded() bool
	LastRefresh() time.Time
	LastError() error
}

// ReconcileState is the part of the reconciler the monitor reads.
type ReconcileState interface {
	LastResult() (reconcile.Result, time.Time)
}

// Status represents the application health status.
//
// Example response:
//
//	{
//	  "status": "healthy",
//	  "uptime": "1h2m3s",
//	  "last_refresh_time": "2026-01-15 10:30:00",
//	  "last_refresh_status": "success",
//	  "pending": 2,
//	  "discrepancies": 0
//	}
type Status struct {
	Status            string `json:"status"`
	Uptime            string `json:"uptime"`
	LastRefreshTime   string `json:"last_refresh_time"`
	LastRefreshStatus string `json:"last_refresh_status"`
	LastReconcileTime string `json:"last_reconcile_time,omitempty"`
	Pending           int    `json:"pending"`
	Discrepancies     int    `json:"discrepancies"`
}

// Monitor assembles the health status from live components.
type Monitor struct {
	startTime time.Time
	refresh   RefreshState
	reconcile ReconcileState
	now       func() time.Time
}

// NewMonitor creates a new health monitor. reconcile may be nil.
func NewMonitor(refresh RefreshState, reconcile ReconcileState) *Monitor {
	return &Monitor{
		startTime: time.Now(),
		refresh:   refresh,
		reconcile: reconcile,
		now:       time.Now,
	}
}

// GetStatus returns the current health status.
func (m *Monitor) GetStatus() Status {
	st := Status{
		Status:            StatusHealthy,
		Uptime:            m.now().Sub(m.startTime).Round(time.Second).String(),
		LastRefreshStatus: "success",
	}

	if t := m.refresh.LastRefresh(); !t.IsZero() {
		st.LastRefreshTime = t.Format("2006-01-02 15:04:05")
	}

	err := m.refresh.LastError()
	switch {
	case !m.refresh.Loaded():
		st.Status = StatusStarting
		st.LastRefreshStatus = "not started"
		if err != nil {
			st.LastRefreshStatus = "error: " + err.Error()
		}
	case err != nil:
		st.Status = StatusDegraded
		st.LastRefreshStatus = "error: " + err.Error()
	}

	if m.reconcile != nil {
		res, at := m.reconcile.LastResult()
		if !at.IsZero() {
			st.LastReconcileTime = at.Format("2006-01-02 15:04:05")
		}
		st.Pending = res.Pending
		st.Discrepancies = res.Discrepancies
	}

	return st
}

// Handler serves the status as JSON. A monitor that has never loaded data
// answers 503 so load balancers hold traffic until the first refresh.
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := m.GetStatus()

		code := http.StatusOK
		if status.Status == StatusStarting {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
