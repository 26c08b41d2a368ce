package export

import (
	"context"
	"time"

	"aduan/internal/imageref"
	"aduan/internal/report"

	"go.uber.org/zap"
)

// Result is a finished export. When Fallback is set the body is the
// printable page with the print dialog wired up, not a PDF.
type Result struct {
	Filename    string
	ContentType string
	Body        []byte
	Fallback    bool
}

// Options configures an Exporter.
type Options struct {
	FilePrefix string // e.g. Laporan_Aduan_SMKK
	PublicURL  string // encoded in the listing's QR code
}

// Exporter turns report snapshots into downloadable documents.
type Exporter struct {
	renderer Renderer
	resolver *imageref.Resolver
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewExporter creates an exporter. renderer may be nil, in which case every
// export uses the print fallback.
func NewExporter(renderer Renderer, resolver *imageref.Resolver, opts Options, logger *zap.Logger) *Exporter {
	return &Exporter{
		renderer: renderer,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Listing builds the printable listing for reports.
func (e *Exporter) Listing(reports []report.Report) Listing {
	return BuildListing(reports, e.resolver, e.opts.PublicURL, e.now())
}

// Filename returns the download name for an export made at t.
func (e *Exporter) Filename(t time.Time, ext string) string {
	return e.opts.FilePrefix + "_" + t.Format("02-01-2006") + ext
}

// Export renders reports to PDF. If conversion fails it returns the printable
// page with the native print dialog invoked on load instead.
func (e *Exporter) Export(ctx context.Context, reports []report.Report) (Result, error) {
	now := e.now()
	listing := BuildListing(reports, e.resolver, e.opts.PublicURL, now)

	if e.renderer != nil {
		html, err := listing.HTML()
		if err != nil {
			return Result{}, err
		}
		pdf, err := e.renderer.RenderPDF(ctx, html)
		if err == nil {
			e.logger.Info("📄 PDF export generated", zap.Int("reports", len(reports)), zap.Int("bytes", len(pdf)))
			return Result{
				Filename:    e.Filename(now, ".pdf"),
				ContentType: "application/pdf",
				Body:        pdf,
			}, nil
		}
		e.logger.Warn("⚠️  PDF conversion failed, falling back to print dialog", zap.Error(err))
	}

	listing.AutoPrint = true
	html, err := listing.HTML()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Filename:    e.Filename(now, ".html"),
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Fallback:    true,
	}, nil
}
