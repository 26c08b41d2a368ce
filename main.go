package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aduan/internal/api"
	"aduan/internal/browser"
	"aduan/internal/config"
	"aduan/internal/export"
	"aduan/internal/feed"
	"aduan/internal/gateway"
	"aduan/internal/health"
	"aduan/internal/imageref"
	"aduan/internal/notify"
	"aduan/internal/observability"
	"aduan/internal/reconcile"
	"aduan/internal/repository"
	"aduan/internal/server"
	"aduan/internal/session"
	"aduan/internal/summary"
	"aduan/internal/telegram"

	"go.uber.org/zap"
)

// sessionIdle is how long an unused session is kept.
const sessionIdle = 12 * time.Hour

func main() {
	logger, err := observability.InitLogger("aduan")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("🚀 Starting complaint dashboard...")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("❌ Failed to load configuration", zap.Error(err))
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api.Configure(cfg.HTTPTimeout, cfg.HTTPMaxConns)
	metrics := observability.NewPrometheusMetrics()

	// Feeds, mutation endpoint and the in-memory mirror
	fetcher := feed.NewFetcher(logger, metrics)
	gw := gateway.New(gateway.Options{
		URL:           cfg.ScriptURL,
		SchemaVersion: cfg.SchemaVersion,
		DebugMode:     cfg.DebugMode,
	}, logger, metrics)
	dates := feed.NewDateNormalizer(cfg.DateOrder)
	logger.Info("✓ Feed dates interpreted",
		zap.String("order", dates.Order()),
		zap.String("display_tz", cfg.DisplayTZ))
	repo := repository.New(repository.Options{
		TeacherFeedURL: cfg.TeacherFeedURL,
		ReportFeedURL:  cfg.ReportFeedURL,
		Dates:          dates,
		Location:       cfg.DisplayLocation,
	}, fetcher, gw, logger, metrics)

	// Pending ledger: Redis when shared, a CSV file for a single instance
	var ledger reconcile.Ledger = reconcile.NewMemoryLedger()
	switch {
	case cfg.RedisAddr != "":
		rl, err := reconcile.NewRedisLedger(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer rl.Close()
		ledger = rl
		logger.Info("✓ Pending ledger stored in Redis", zap.String("addr", cfg.RedisAddr))
	case cfg.LedgerFile != "":
		fl, err := reconcile.NewFileLedger(cfg.LedgerFile)
		if err != nil {
			return fmt.Errorf("failed to open ledger file: %w", err)
		}
		ledger = fl
		logger.Info("✓ Pending ledger stored on disk", zap.String("path", cfg.LedgerFile))
	}

	// Notifications are optional
	var alerter reconcile.Alerter
	var tg *telegram.Client
	if cfg.TelegramEnabled() {
		tg = telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.DebugMode, logger)
		pool := notify.NewPool(tg, cfg.NotifyWorkers, cfg.HTTPTimeout, logger)
		defer pool.Close()
		go pool.Observe(metrics)
		notifier := notify.NewNotifier(pool)
		repo.AddTracker(notifier)
		alerter = notifier
	}

	reconciler := reconcile.New(repo, ledger, cfg.ReconcileGrace, alerter, logger, metrics)
	repo.AddTracker(reconciler)

	// Export
	holder := browser.NewContextHolder(browser.Options{ExecPath: cfg.ChromePath, Headless: true}, logger)
	defer holder.Cancel()
	resolver := imageref.NewResolver(cfg.ImageProxyHost)
	exporter := export.NewExporter(
		export.NewChromeRenderer(holder, cfg.ExportTimeout, logger),
		resolver,
		export.Options{FilePrefix: cfg.ExportFilePrefix, PublicURL: cfg.PublicURL},
		logger,
	)

	sessions := session.NewStore(cfg.AdminPassword, sessionIdle)

	srv := server.New(server.Deps{
		Repo:           repo,
		Reconciler:     reconciler,
		Sessions:       sessions,
		Exporter:       exporter,
		Resolver:       resolver,
		Monitor:        health.NewMonitor(repo, reconciler),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
		Metrics:        metrics,
	})

	// Initial load; a failure leaves the dashboard empty until the next pass
	logger.Info("📬 Loading feeds...")
	loadCtx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
	if err := repo.Refresh(loadCtx); err != nil {
		logger.Warn("⚠️  Initial refresh failed, serving empty collection", zap.Error(err))
		if alertErr := tg.SendCriticalAlert(ctx, "Muatan awal gagal", err.Error()); alertErr != nil {
			logger.Warn("⚠️  Failed to send startup alert", zap.Error(alertErr))
		}
	} else {
		logger.Info("✅ Initial refresh completed",
			zap.Int("reports", len(repo.Reports())),
			zap.Int("teachers", len(repo.Teachers())))
	}
	cancel()

	scheduler, err := reconciler.Schedule(cfg.ReconcileInterval, 2*cfg.HTTPTimeout)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	if _, err := scheduler.AddFunc("@every 30m", func() {
		if n := sessions.Sweep(); n > 0 {
			logger.Debug("expired sessions dropped", zap.Int("count", n))
		}
	}); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	if cfg.TelegramEnabled() && cfg.DigestSchedule != "off" {
		digest := summary.New(repo, tg, logger)
		if err := digest.Schedule(scheduler, cfg.DigestSchedule, 2*cfg.HTTPTimeout); err != nil {
			return err
		}
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("✓ Dashboard server started", zap.String("addr", httpSrv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("🛑 Shutting down...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
