package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"

	"aduan/internal/browser"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Page geometry for the exported document: A4 with 10mm margins. Chrome
// rotates the portrait sheet when landscape is set.
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.3937
	captureScale  = 2
	jpegQuality   = 98
)

// printableSelector is the region captured into the PDF.
const printableSelector = "#printable-area"

// Renderer converts a printable HTML page into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer captures the printable region in headless Chrome as a JPEG
// raster and prints that raster into a PDF.
//
// Flow:
//  1. Open a tab and load the listing HTML
//  2. Wait for the printable region and its images
//  3. Screenshot the region at 2x scale, re-encode as JPEG (quality 98)
//  4. Load a page holding only that JPEG and print it to PDF
type ChromeRenderer struct {
	holder  *browser.ContextHolder
	timeout time.Duration
	logger  *zap.Logger
}

// NewChromeRenderer creates a renderer using the shared browser.
func NewChromeRenderer(holder *browser.ContextHolder, timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	return &ChromeRenderer{holder: holder, timeout: timeout, logger: logger}
}

// RenderPDF implements Renderer.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	tabCtx, tabCancel := chromedp.NewContext(r.holder.Get())
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()

	// Stop when the caller goes away
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var shot []byte
	var imagesReady bool
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.WaitReady(printableSelector, chromedp.ByQuery),
		chromedp.Poll(`Array.from(document.images).every(i => i.complete)`, &imagesReady,
			chromedp.WithPollingTimeout(10*time.Second)),
		chromedp.ScreenshotScale(printableSelector, captureScale, &shot, chromedp.ByQuery),
	)
	if err != nil {
		r.reset(ctx)
		return nil, fmt.Errorf("capture printable area: %w", err)
	}

	raster, err := toJPEG(shot)
	if err != nil {
		return nil, err
	}

	var pdf []byte
	err = chromedp.Run(tabCtx,
		setContent(rasterPage(raster)),
		chromedp.WaitReady("img", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithLandscape(true).
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		r.reset(ctx)
		return nil, fmt.Errorf("print pdf: %w", err)
	}

	r.logger.Debug("pdf rendered", zap.Int("jpeg_bytes", len(raster)), zap.Int("pdf_bytes", len(pdf)))
	return pdf, nil
}

// reset drops the shared browser after a failure the caller did not cause,
// so the next export starts a fresh process.
func (r *ChromeRenderer) reset(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	r.holder.Cancel()
}

// setContent replaces the document of the tab's main frame.
func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

// toJPEG re-encodes a PNG screenshot as JPEG.
func toJPEG(pngData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterPage wraps a JPEG in a page that fits it to the printable width.
func rasterPage(jpegData []byte) string {
	return `<!DOCTYPE html><html><head><style>html,body{margin:0;padding:0}img{width:100%;display:block}</style></head><body><img src="data:image/jpeg;base64,` +
		base64.StdEncoding.EncodeToString(jpegData) + `"></body></html>`
}
