// Package summary sends a periodic digest of open reports to the chat: a
// table image of every report still awaiting action plus a count caption.
package summary

import (
	"context"
	"fmt"
	"time"

	"aduan/internal/analytics"
	"aduan/internal/charts"
	"aduan/internal/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DigestTitle heads the table image.
const DigestTitle = "Aduan Belum Selesai"

// Source provides the report snapshot.
type Source interface {
	Refresh(ctx context.Context) error
	Reports() []report.Report
}

// PhotoSender delivers an image with a caption.
type PhotoSender interface {
	SendPhoto(ctx context.Context, filename string, png []byte, caption string) error
}

// Digest builds and sends the open-reports digest.
type Digest struct {
	source Source
	sender PhotoSender
	logger *zap.Logger
	now    func() time.Time
}

// New creates a digest sender.
func New(source Source, sender PhotoSender, logger *zap.Logger) *Digest {
	return &Digest{source: source, sender: sender, logger: logger, now: time.Now}
}

// OpenReports keeps reports that are new or in progress, in input order.
func OpenReports(reports []report.Report) []report.Report {
	out := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == report.StatusNew || r.Status == report.StatusInProgress {
			out = append(out, r)
		}
	}
	return out
}

// Caption summarises the counts shown under the image.
func Caption(sum analytics.Summary, now time.Time) string {
	return fmt.Sprintf(
		"📊 <b>Ringkasan Aduan %s</b>\n\n"+
			"Baru: %d\n"+
			"Dalam Proses: %d\n"+
			"Selesai: %d\n"+
			"Ditolak: %d\n"+
			"Jumlah: %d",
		now.Format("02/01/2006"),
		sum.New, sum.InProgress, sum.Done, sum.Rejected, sum.Total,
	)
}

// Send refreshes the feeds and posts the digest. A failed refresh falls back
// to the current snapshot. Nothing is sent when no report is open.
func (d *Digest) Send(ctx context.Context) error {
	if err := d.source.Refresh(ctx); err != nil {
		d.logger.Warn("⚠️  Digest using previous snapshot", zap.Error(err))
	}

	reports := d.source.Reports()
	open := OpenReports(reports)
	if len(open) == 0 {
		d.logger.Info("✓ No open reports, digest skipped")
		return nil
	}

	now := d.now()
	png, err := charts.RenderTable(open, DigestTitle, now)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	filename := "aduan_" + now.Format("02-01-2006") + ".png"
	if err := d.sender.SendPhoto(ctx, filename, png, Caption(analytics.Summarize(reports), now)); err != nil {
		return err
	}

	d.logger.Info("📊 Digest sent", zap.Int("open", len(open)))
	return nil
}

// Schedule registers the digest on c using a standard five-field cron spec.
// Each run is bounded by timeout.
func (d *Digest) Schedule(c *cron.Cron, spec string, timeout time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.Send(ctx); err != nil {
			d.logger.Error("❌ Digest failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	d.logger.Info("Digest scheduled", zap.String("spec", spec))
	return nil
}
