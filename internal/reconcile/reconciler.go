// Package reconcile confirms optimistic mutations against the report feed.
//
// Every intent the repository dispatches is written to a Ledger. On a fixed
// schedule the Reconciler refreshes the repository and checks each entry:
//
//   - create: a feed row with the submitted teacher, location and description
//     appears (beyond those already present at submit time)
//   - update: the report carries the requested status
//   - delete: the report id is gone
//
// Confirmed entries leave the ledger. Entries still unconfirmed after the
// grace period are flagged as discrepancies and alerted once.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aduan/internal/gateway"
	"aduan/internal/observability"
	"aduan/internal/report"
	"aduan/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// retention bounds how long a discrepancy stays visible.
const retention = 24 * time.Hour

// Source is the part of the repository the reconciler needs.
type Source interface {
	Refresh(ctx context.Context) error
	Reports() []report.Report
}

// Alerter is told about each new discrepancy.
type Alerter interface {
	AlertDiscrepancy(ctx context.Context, e Entry)
}

// Result summarises one reconciliation pass.
type Result struct {
	Confirmed     int `json:"confirmed"`
	Pending       int `json:"pending"`
	Discrepancies int `json:"discrepancies"`
	Expired       int `json:"expired"`
}

// Reconciler implements repository.Tracker.
type Reconciler struct {
	source  Source
	ledger  Ledger
	grace   time.Duration
	alerter Alerter
	logger  *zap.Logger
	metrics observability.Metrics
	now     func() time.Time

	runMu    sync.Mutex // one pass at a time
	ledgerMu sync.Mutex // serializes read-modify-write on the ledger
	mu       sync.RWMutex
	last    Result
	lastRun time.Time
}

// New creates a reconciler. alerter may be nil.
func New(source Source, ledger Ledger, grace time.Duration, alerter Alerter, logger *zap.Logger, metrics observability.Metrics) *Reconciler {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Reconciler{
		source:  source,
		ledger:  ledger,
		grace:   grace,
		alerter: alerter,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Track records a dispatched mutation.
//
// A newer status change or a delete for the same report supersedes earlier
// status changes, since those can no longer be observed in the feed.
func (r *Reconciler) Track(ctx context.Context, m repository.Mutation) {
	e := Entry{
		Token:       m.Token,
		Action:      m.Action,
		ReportID:    m.ReportID,
		Status:      string(m.Status),
		Fingerprint: m.Fingerprint,
		TeacherName: m.Report.TeacherName,
		Location:    m.Report.Location,
		Description: m.Report.IssueDescription,
		CreatedAt:   m.At,
	}

	if m.Action == gateway.ActionAddReport {
		for _, rec := range r.source.Reports() {
			if !rec.IsPending() && rec.Fingerprint() == m.Fingerprint {
				e.Baseline++
			}
		}
	}

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	if m.Action == gateway.ActionUpdateStatus || m.Action == gateway.ActionDeleteReport {
		r.supersede(ctx, m.ReportID)
	}

	if err := r.ledger.Put(ctx, e); err != nil {
		r.logger.Error("failed to record pending intent",
			zap.String("action", e.Action),
			zap.String("token", e.Token),
			zap.Error(err))
		return
	}
	r.logger.Debug("tracking intent", zap.String("action", e.Action), zap.String("token", e.Token))
}

// supersede drops pending status changes for id. Caller must hold ledgerMu.
func (r *Reconciler) supersede(ctx context.Context, id string) {
	entries, err := r.ledger.List(ctx)
	if err != nil {
		r.logger.Warn("ledger list failed", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.Action == gateway.ActionUpdateStatus && e.ReportID == id {
			if err := r.ledger.Delete(ctx, e.Token); err != nil {
				r.logger.Warn("ledger delete failed", zap.String("token", e.Token), zap.Error(err))
			}
		}
	}
}

// Run refreshes the source and checks every ledger entry against it.
// Nothing is judged when the refresh fails.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if err := r.source.Refresh(ctx); err != nil {
		return Result{}, fmt.Errorf("reconcile refresh: %w", err)
	}

	entries, err := r.ledger.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile list: %w", err)
	}

	reports := r.source.Reports()
	byID := make(map[string]report.Report, len(reports))
	fingerprints := make(map[string]int)
	for _, rec := range reports {
		if rec.IsPending() {
			continue
		}
		byID[rec.ID] = rec
		fingerprints[rec.Fingerprint()]++
	}

	now := r.now()
	var res Result
	for _, e := range entries {
		if confirmed(e, byID, fingerprints) {
			r.drop(ctx, e)
			res.Confirmed++
			r.metrics.IncrementReconcile(e.Action, "confirmed")
			r.logger.Info("✓ intent confirmed by feed",
				zap.String("action", e.Action),
				zap.String("report_id", e.ReportID),
				zap.Duration("after", now.Sub(e.CreatedAt)))
			continue
		}

		age := now.Sub(e.CreatedAt)
		switch {
		case age > retention:
			r.drop(ctx, e)
			res.Expired++
			r.metrics.IncrementReconcile(e.Action, "expired")
		case age > r.grace:
			flagged, alert, ok := r.flag(ctx, e.Token)
			if !ok {
				continue
			}
			res.Discrepancies++
			if !e.Discrepancy {
				r.metrics.IncrementReconcile(e.Action, "discrepancy")
				r.logger.Warn("⚠️  intent never appeared in feed",
					zap.String("action", e.Action),
					zap.String("report_id", e.ReportID),
					zap.String("token", e.Token),
					zap.Duration("age", age))
			}
			if alert {
				r.alerter.AlertDiscrepancy(ctx, flagged)
			}
		default:
			res.Pending++
		}
	}

	r.metrics.SetPending(res.Pending)
	r.metrics.SetDiscrepancies(res.Discrepancies)

	r.mu.Lock()
	r.last = res
	r.lastRun = now
	r.mu.Unlock()

	return res, nil
}

// flag marks the current ledger copy of token as a discrepancy. ok is false
// when the entry was superseded or dropped since the pass listed it, in which
// case nothing is written back. alert is true when the caller must send the
// one alert for it; the alert goes out after the lock is released.
func (r *Reconciler) flag(ctx context.Context, token string) (e Entry, alert, ok bool) {
	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	e, ok, err := r.ledger.Get(ctx, token)
	if err != nil {
		r.logger.Warn("ledger read failed", zap.String("token", token), zap.Error(err))
		return Entry{}, false, false
	}
	if !ok {
		return Entry{}, false, false
	}

	alert = !e.Alerted && r.alerter != nil
	if e.Discrepancy && !alert {
		return e, false, true
	}
	e.Discrepancy = true
	if alert {
		e.Alerted = true
	}
	if err := r.ledger.Put(ctx, e); err != nil {
		r.logger.Warn("ledger update failed", zap.String("token", token), zap.Error(err))
	}
	return e, alert, true
}

func confirmed(e Entry, byID map[string]report.Report, fingerprints map[string]int) bool {
	switch e.Action {
	case gateway.ActionAddReport:
		return fingerprints[e.Fingerprint] > e.Baseline
	case gateway.ActionUpdateStatus:
		rec, ok := byID[e.ReportID]
		return ok && string(rec.Status) == e.Status
	case gateway.ActionDeleteReport:
		_, ok := byID[e.ReportID]
		return !ok
	}
	return false
}

func (r *Reconciler) drop(ctx context.Context, e Entry) {
	if err := r.ledger.Delete(ctx, e.Token); err != nil {
		r.logger.Warn("ledger delete failed", zap.String("token", e.Token), zap.Error(err))
	}
}

// Entries returns the current ledger, oldest first.
func (r *Reconciler) Entries(ctx context.Context) ([]Entry, error) {
	return r.ledger.List(ctx)
}

// Discrepancies returns entries flagged as never confirmed.
func (r *Reconciler) Discrepancies(ctx context.Context) ([]Entry, error) {
	entries, err := r.ledger.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0)
	for _, e := range entries {
		if e.Discrepancy {
			out = append(out, e)
		}
	}
	return out, nil
}

// LastResult returns the outcome and time of the latest completed pass.
func (r *Reconciler) LastResult() (Result, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.lastRun
}

// Schedule runs a pass every interval until the returned cron is stopped.
// Each pass is bounded by timeout.
func (r *Reconciler) Schedule(interval, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := r.Run(ctx)
		if err != nil {
			r.logger.Error("❌ reconciliation pass failed", zap.Error(err))
			return
		}
		r.logger.Info("🔄 reconciliation pass",
			zap.Int("confirmed", res.Confirmed),
			zap.Int("pending", res.Pending),
			zap.Int("discrepancies", res.Discrepancies))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconciliation: %w", err)
	}

	c.Start()
	r.logger.Info("Reconciliation scheduler started", zap.Duration("interval", interval))
	return c, nil
}
