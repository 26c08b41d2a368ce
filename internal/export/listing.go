// Package export produces the printable report listing and its PDF form.
package export

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"aduan/internal/imageref"
	"aduan/internal/report"

	"github.com/skip2/go-qrcode"
)

//go:embed templates/print.html
var templateFS embed.FS

var printTemplate = template.Must(template.ParseFS(templateFS, "templates/print.html"))

// DefaultTitle heads the printable listing.
const DefaultTitle = "Senarai Aduan SMK KOLOMBONG"

// Row is one report as printed.
type Row struct {
	report.Report
	Thumbnail   template.URL
	StatusClass string
}

// Listing is the data behind the printable page.
type Listing struct {
	Title       string
	GeneratedAt string
	Rows        []Row
	QRCode      template.URL // data URI, empty when no public URL is configured
	Placeholder template.JS
	AutoPrint   bool // open the print dialog once loaded
}

// BuildListing prepares reports for printing.
func BuildListing(reports []report.Report, resolver *imageref.Resolver, publicURL string, now time.Time) Listing {
	rows := make([]Row, 0, len(reports))
	for _, r := range reports {
		row := Row{Report: r, StatusClass: r.Status.ColorClass()}
		if imageref.IsHosted(r.ImageURL) {
			row.Thumbnail = template.URL(resolver.Thumbnail(r.ImageURL))
		}
		rows = append(rows, row)
	}

	l := Listing{
		Title:       DefaultTitle,
		GeneratedAt: now.Format("02/01/2006"),
		Rows:        rows,
		Placeholder: template.JS(fmt.Sprintf("%q", imageref.PlaceholderDataURI)),
	}
	if publicURL != "" {
		if uri, err := QRCodeDataURI(publicURL); err == nil {
			l.QRCode = template.URL(uri)
		}
	}
	return l
}

// RenderHTML writes the printable page.
func RenderHTML(w io.Writer, l Listing) error {
	return printTemplate.Execute(w, l)
}

// HTML returns the printable page as a string.
func (l Listing) HTML() (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, l); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// QRCodeDataURI encodes content as a PNG QR code data URI.
func QRCodeDataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
