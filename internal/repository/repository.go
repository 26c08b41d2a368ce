// Package repository holds the in-memory Report collection and Teacher
// Directory for the dashboard.
//
// The remote spreadsheet is the durable store. This package mirrors it:
// Refresh replaces the collection wholesale from the published feeds, and the
// mutation entry points apply optimistic local changes right after a mutation
// intent has been dispatched. Local changes are never rolled back; the next
// Refresh is the only thing that brings the mirror back in line.
package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "aduan/internal/errors"
	"aduan/internal/feed"
	"aduan/internal/gateway"
	"aduan/internal/observability"
	"aduan/internal/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Privilege is the caller's access level for mutations.
type Privilege int

const (
	// Staff may submit reports.
	Staff Privilege = iota
	// Admin may also change status and delete.
	Admin
)

// FeedSource downloads a feed body. *feed.Fetcher implements it.
type FeedSource interface {
	Fetch(ctx context.Context, name, url string) (string, error)
}

// Mutation describes one dispatched intent and the local change it caused.
type Mutation struct {
	Token       string // correlation token
	Action      string // gateway action name
	ReportID    string
	Status      report.Status // requested status for updates
	Fingerprint string        // content key for creates
	Report      report.Report // local record after (or, for deletes, before) the change
	At          time.Time
}

// Tracker observes dispatched mutations.
type Tracker interface {
	Track(ctx context.Context, m Mutation)
}

// Options configures a Repository.
type Options struct {
	TeacherFeedURL string
	ReportFeedURL  string
	Dates          *feed.DateNormalizer
	Location       *time.Location // zone used to stamp optimistic records
}

// Repository is safe for concurrent use. Readers always get copies.
type Repository struct {
	mu          sync.RWMutex
	reports     []report.Report
	teachers    []string
	loaded      bool
	lastRefresh time.Time
	lastErr     error
	applied     uint64 // generation of the data currently held

	generation atomic.Uint64
	group      singleflight.Group

	opts     Options
	source   FeedSource
	gateway  gateway.Dispatcher
	trackers []Tracker
	logger   *zap.Logger
	metrics  observability.Metrics
	now      func() time.Time
}

// New creates an empty repository. Call Refresh to load it.
func New(opts Options, source FeedSource, gw gateway.Dispatcher, logger *zap.Logger, metrics observability.Metrics) *Repository {
	if opts.Dates == nil {
		opts.Dates = feed.NewDateNormalizer(feed.OrderAuto)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Repository{
		reports:  []report.Report{},
		teachers: []string{},
		opts:     opts,
		source:   source,
		gateway:  gw,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// AddTracker registers an observer for dispatched mutations. Not safe to call
// concurrently with mutations; register trackers during startup.
func (r *Repository) AddTracker(t Tracker) {
	r.trackers = append(r.trackers, t)
}

// Refresh reloads both feeds and replaces the collection.
//
// Overlapping calls share one in-flight load. A load that finishes after a
// newer one has already been applied is discarded. On failure the current
// collection is kept as is.
//
// Flow:
//  1. Fetch teacher and report feeds concurrently
//  2. Parse the directory (sorted) and reports (last row first)
//  3. Swap both in under the write lock
func (r *Repository) Refresh(ctx context.Context) error {
	ch := r.group.DoChan("refresh", func() (any, error) {
		// Shared by every waiter, so one caller giving up must not cancel it
		return nil, r.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Repository) load(ctx context.Context) error {
	gen := r.generation.Add(1)
	start := r.now()
	defer func() { r.metrics.RecordRefreshLatency(time.Since(start)) }()

	var teacherBody, reportBody string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := r.source.Fetch(gctx, feed.FeedTeachers, r.opts.TeacherFeedURL)
		teacherBody = body
		return err
	})
	g.Go(func() error {
		body, err := r.source.Fetch(gctx, feed.FeedReports, r.opts.ReportFeedURL)
		reportBody = body
		return err
	})

	if err := g.Wait(); err != nil {
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		r.logger.Error("❌ refresh failed, keeping current data", zap.Error(err))
		return err
	}

	teachers := feed.ParseTeachers(teacherBody)
	reports := feed.ParseReports(reportBody, r.opts.Dates)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen < r.applied {
		r.logger.Debug("discarding stale refresh", zap.Uint64("generation", gen), zap.Uint64("applied", r.applied))
		return nil
	}

	r.teachers = teachers
	r.reports = reports
	r.applied = gen
	r.loaded = true
	r.lastRefresh = r.now()
	r.lastErr = nil

	r.logger.Info("✓ data refreshed",
		zap.Int("teachers", len(teachers)),
		zap.Int("reports", len(reports)))
	return nil
}

// SubmitReport dispatches a create intent for draft and prepends an optimistic
// record. It returns the optimistic record once the request has been sent;
// the remote outcome is unknown at that point.
func (r *Repository) SubmitReport(ctx context.Context, draft report.Draft) (report.Report, error) {
	if err := draft.Validate(); err != nil {
		return report.Report{}, err
	}

	if err := r.gateway.Dispatch(ctx, gateway.CreateIntent{Draft: draft}); err != nil {
		return report.Report{}, err
	}

	now := r.now().In(r.opts.Location)
	image := report.ImageNone
	if draft.HasImage() {
		image = report.ImageUploading
	}
	rec := report.Report{
		ID:               report.PendingID,
		ReportedAt:       now.Format("02/01/2006"),
		ReportedAtRaw:    now.Format("02/01/2006, 15:04:05"),
		TeacherName:      draft.TeacherName,
		Location:         draft.Location,
		IssueDescription: draft.IssueDescription,
		ImageURL:         image,
		Status:           report.StatusNew,
		Pending:          true,
		CorrelationToken: uuid.NewString(),
	}

	r.mu.Lock()
	r.reports = append([]report.Report{rec}, r.reports...)
	r.mu.Unlock()

	r.track(ctx, Mutation{
		Token:       rec.CorrelationToken,
		Action:      gateway.ActionAddReport,
		Fingerprint: rec.Fingerprint(),
		Report:      rec,
		At:          now,
	})
	return rec, nil
}

// UpdateStatus dispatches a status change and applies it locally. Admin only.
// No remote confirmation is awaited.
func (r *Repository) UpdateStatus(ctx context.Context, priv Privilege, id string, status report.Status) error {
	if priv != Admin {
		return apperrors.NewUnauthorizedError("status changes require admin access")
	}
	if err := checkID(id); err != nil {
		return err
	}
	if !status.Valid() {
		return apperrors.NewValidationError("status", "unknown status "+string(status))
	}

	if err := r.gateway.Dispatch(ctx, gateway.UpdateStatusIntent{ID: id, Status: status}); err != nil {
		return err
	}

	var updated report.Report
	r.mu.Lock()
	for i := range r.reports {
		if r.reports[i].ID == id {
			r.reports[i].Status = status
			updated = r.reports[i]
		}
	}
	r.mu.Unlock()
	if updated.ID == "" {
		updated = report.Report{ID: id, Status: status}
	}

	r.track(ctx, Mutation{
		Token:    uuid.NewString(),
		Action:   gateway.ActionUpdateStatus,
		ReportID: id,
		Status:   status,
		Report:   updated,
		At:       r.now(),
	})
	return nil
}

// DeleteReport dispatches a delete and removes the record locally. Admin only,
// and confirmed must be true.
func (r *Repository) DeleteReport(ctx context.Context, priv Privilege, id string, confirmed bool) error {
	if priv != Admin {
		return apperrors.NewUnauthorizedError("deleting reports requires admin access")
	}
	if err := checkID(id); err != nil {
		return err
	}
	if !confirmed {
		return apperrors.NewConfirmationRequiredError(id)
	}

	if err := r.gateway.Dispatch(ctx, gateway.DeleteIntent{ID: id}); err != nil {
		return err
	}

	removed := report.Report{ID: id}
	r.mu.Lock()
	kept := r.reports[:0]
	for _, rec := range r.reports {
		if rec.ID == id {
			removed = rec
			continue
		}
		kept = append(kept, rec)
	}
	r.reports = kept
	r.mu.Unlock()

	r.track(ctx, Mutation{
		Token:    uuid.NewString(),
		Action:   gateway.ActionDeleteReport,
		ReportID: id,
		Report:   removed,
		At:       r.now(),
	})
	return nil
}

func checkID(id string) error {
	if id == "" {
		return apperrors.NewValidationError("id", "required")
	}
	if id == report.PendingID {
		return apperrors.NewValidationError("id", "report has not been assigned an id yet")
	}
	return nil
}

func (r *Repository) track(ctx context.Context, m Mutation) {
	for _, t := range r.trackers {
		t.Track(ctx, m)
	}
}

// Reports returns a copy of the collection, newest first.
func (r *Repository) Reports() []report.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]report.Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// Teachers returns a copy of the Teacher Directory.
func (r *Repository) Teachers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.teachers))
	copy(out, r.teachers)
	return out
}

// Loaded reports whether at least one refresh has succeeded.
func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// LastRefresh returns when data was last replaced from the feeds.
func (r *Repository) LastRefresh() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRefresh
}

// LastError returns the error of the most recent failed refresh, cleared by
// the next successful one.
func (r *Repository) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}
