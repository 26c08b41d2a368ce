// Package browser manages the headless Chrome instance used for PDF export.
//
// The browser is started lazily on first use and shared by every export. Each
// export opens its own tab from the shared browser context.
//
// Key features:
//   - Thread-safe context holder for sharing across goroutines
//   - Explicit Chrome binary via CHROME_PATH, otherwise the default lookup
//   - Restart capability for error recovery
package browser

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Options configures the browser process.
type Options struct {
	ExecPath string // empty = let chromedp find Chrome/Chromium
	Headless bool
}

// ContextHolder provides thread-safe access to a browser context.
//
// Thread-safety:
//   - All methods use mutex locking
//   - Safe for concurrent access from multiple goroutines
//   - Context updates are atomic
type ContextHolder struct {
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	logger *zap.Logger
}

// NewContextHolder creates a holder. No browser is started until Get is called.
func NewContextHolder(opts Options, logger *zap.Logger) *ContextHolder {
	return &ContextHolder{opts: opts, logger: logger}
}

// Get returns the current browser context, starting the browser if needed.
func (h *ContextHolder) Get() context.Context {
	h.mu.RLock()
	ctx := h.ctx
	h.mu.RUnlock()
	if ctx != nil && ctx.Err() == nil {
		return ctx
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx == nil || h.ctx.Err() != nil {
		h.ctx, h.cancel = NewContext(h.opts, h.logger)
	}
	return h.ctx
}

// Set updates the browser context with a new one. The old context is
// cancelled before the new one is stored.
func (h *ContextHolder) Set(ctx context.Context, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
	}
	h.ctx = ctx
	h.cancel = cancel
}

// Restart replaces the browser with a fresh process. Used after an export
// fails in a way that may have left the browser unusable.
func (h *ContextHolder) Restart() {
	h.logger.Warn("⚠️  Restarting browser context...")
	h.Set(NewContext(h.opts, h.logger))
}

// Cancel shuts the browser down. Get starts a new one afterwards.
func (h *ContextHolder) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.ctx = nil
}

// NewContext creates a new Chrome browser context.
//
// Browser configuration:
//   - chromedp default flags (headless unless opts.Headless is false)
//   - no sandbox, GPU disabled (container friendly)
//   - chromedp errors routed to the zap logger
//
// Returns:
//   - context.Context: Browser context for automation
//   - context.CancelFunc: Cancels the browser and its allocator
func NewContext(opts Options, logger *zap.Logger) (context.Context, context.CancelFunc) {
	logger.Info("  → Creating new browser context...")

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	sugar := logger.Sugar()
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(sugar.Errorf))

	logger.Info("  ✓ Browser context created")
	return ctx, func() {
		cancel()
		allocCancel()
	}
}
