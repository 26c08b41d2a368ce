package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"aduan/internal/api"
	apperrors "aduan/internal/errors"
	"aduan/internal/observability"

	"go.uber.org/zap"
)

// Feed names used in logs, metrics and errors.
const (
	FeedTeachers = "teachers"
	FeedReports  = "reports"
)

// maxFeedBytes caps how much of a feed body is read. A larger feed fails the
// fetch rather than yielding a truncated last row.
const maxFeedBytes = 16 << 20

// Fetcher downloads published CSV exports.
//
// Flow:
//  1. GET the export URL with the shared pooled client
//  2. Reject non-2xx answers (the export host serves an HTML error page)
//  3. Return the body as text for Lines/ParseRow
type Fetcher struct {
	logger   *zap.Logger
	metrics  observability.Metrics
	maxBytes int64
}

// NewFetcher creates a feed fetcher. A nil metrics sink disables metrics.
func NewFetcher(logger *zap.Logger, metrics observability.Metrics) *Fetcher {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Fetcher{logger: logger, metrics: metrics, maxBytes: maxFeedBytes}
}

// Fetch returns the body of the feed at url.
//
// Returns:
//   - string: Raw CSV text
//   - error: *errors.FetchError on transport failure, non-2xx status or an
//     oversized body
func (f *Fetcher) Fetch(ctx context.Context, name, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.metrics.IncrementFeedFetch(name, "error")
		return "", apperrors.NewFetchError(name, "invalid request", err)
	}

	resp, err := api.GetHTTPClient().Do(req)
	if err != nil {
		f.metrics.IncrementFeedFetch(name, "error")
		f.logger.Warn("feed fetch failed", zap.String("feed", name), zap.Error(err))
		return "", apperrors.NewFetchError(name, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		f.metrics.IncrementFeedFetch(name, "error")
		f.logger.Warn("feed returned unexpected status",
			zap.String("feed", name),
			zap.Int("status", resp.StatusCode))
		return "", apperrors.NewFetchError(name, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		f.metrics.IncrementFeedFetch(name, "error")
		return "", apperrors.NewFetchError(name, "read body", err)
	}
	if int64(len(body)) > f.maxBytes {
		f.metrics.IncrementFeedFetch(name, "error")
		f.logger.Warn("⚠️  Feed exceeds size limit",
			zap.String("feed", name),
			zap.Int64("limit", f.maxBytes))
		return "", apperrors.NewFetchError(name, fmt.Sprintf("body exceeds %d bytes", f.maxBytes), nil)
	}

	f.metrics.IncrementFeedFetch(name, "ok")
	f.logger.Debug("feed fetched",
		zap.String("feed", name),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))

	return string(body), nil
}
