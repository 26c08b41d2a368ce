// Package gateway relays mutation intents to the spreadsheet scripting
// endpoint.
//
// The endpoint is driven fire-and-forget: the body is POSTed as text/plain
// JSON and neither the response status nor the body is interpreted. The only
// observable failure is a request that never got out (DNS, connect, timeout).
// Whether the sheet actually changed is learned later from the report feed.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"aduan/internal/api"
	apperrors "aduan/internal/errors"
	"aduan/internal/observability"

	"go.uber.org/zap"
)

// Dispatcher is the contract the repository depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent Intent) error
}

// Gateway posts intents to one scripting endpoint.
type Gateway struct {
	url       string
	schema    int
	debugMode bool
	logger    *zap.Logger
	metrics   observability.Metrics
}

// Options configures a Gateway.
type Options struct {
	URL           string
	SchemaVersion int
	DebugMode     bool // log intents without sending them
}

// New creates a gateway.
func New(opts Options, logger *zap.Logger, metrics observability.Metrics) *Gateway {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Gateway{
		url:       opts.URL,
		schema:    opts.SchemaVersion,
		debugMode: opts.DebugMode,
		logger:    logger,
		metrics:   metrics,
	}
}

// Dispatch sends intent and returns once the request has been answered or has
// failed locally.
//
// Returns:
//   - nil: the request reached the endpoint (remote outcome unknown)
//   - *errors.DispatchError: encoding or transport failure
func (g *Gateway) Dispatch(ctx context.Context, intent Intent) error {
	action := intent.Action()

	body, err := json.Marshal(intent.Payload(g.schema))
	if err != nil {
		g.metrics.IncrementDispatch(action, "failed")
		return apperrors.NewDispatchError(action, "encode payload", err)
	}

	if g.debugMode {
		g.logger.Info("🐛 DEBUG MODE: intent not sent",
			zap.String("action", action),
			zap.String("url", g.url),
			zap.Int("bytes", len(body)))
		g.metrics.IncrementDispatch(action, "skipped")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		g.metrics.IncrementDispatch(action, "failed")
		return apperrors.NewDispatchError(action, "build request", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := api.GetHTTPClient().Do(req)
	if err != nil {
		g.metrics.IncrementDispatch(action, "failed")
		g.logger.Error("intent dispatch failed", zap.String("action", action), zap.Error(err))
		return apperrors.NewDispatchError(action, "request failed", err)
	}
	// Drained only so the connection returns to the pool
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	g.metrics.IncrementDispatch(action, "dispatched")
	g.logger.Info("intent dispatched", zap.String("action", action))
	return nil
}
