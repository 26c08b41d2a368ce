package export

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"aduan/internal/imageref"
	"aduan/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	pdf  []byte
	err  error
	html string
}

func (f *fakeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	return f.pdf, f.err
}

func sampleReports() []report.Report {
	return []report.Report{
		{
			ID:               "R2",
			ReportedAt:       "02/03/2025",
			TeacherName:      "Siti",
			Location:         "Makmal <Sains>",
			IssueDescription: "Paip bocor",
			ImageURL:         "https://drive.google.com/file/d/abc123/view",
			Status:           report.StatusInProgress,
		},
		{
			ID:               report.PendingID,
			ReportedAt:       "03/03/2025",
			TeacherName:      "Ali",
			Location:         "Kelas 1A",
			IssueDescription: "Kipas rosak",
			ImageURL:         report.ImageNone,
			Status:           report.StatusNew,
			Pending:          true,
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
}

func TestBuildListing(t *testing.T) {
	resolver := imageref.NewResolver("")
	l := BuildListing(sampleReports(), resolver, "https://aduan.test", fixedNow())

	assert.Equal(t, DefaultTitle, l.Title)
	assert.Equal(t, "04/03/2025", l.GeneratedAt)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, "https://lh3.googleusercontent.com/d/abc123=s400", string(l.Rows[0].Thumbnail))
	assert.Equal(t, "status-progress", l.Rows[0].StatusClass)
	assert.Empty(t, l.Rows[1].Thumbnail)
	assert.True(t, strings.HasPrefix(string(l.QRCode), "data:image/png;base64,"))
}

func TestBuildListing_NoPublicURL(t *testing.T) {
	l := BuildListing(nil, imageref.NewResolver(""), "", fixedNow())
	assert.Empty(t, l.QRCode)
	assert.Empty(t, l.Rows)
}

func TestListingHTML(t *testing.T) {
	l := BuildListing(sampleReports(), imageref.NewResolver(""), "", fixedNow())
	html, err := l.HTML()
	require.NoError(t, err)

	assert.Contains(t, html, `id="printable-area"`)
	assert.Contains(t, html, "Senarai Aduan SMK KOLOMBONG")
	assert.Contains(t, html, "Tarikh Jana: 04/03/2025")
	assert.Contains(t, html, "ID Laporan")
	assert.Contains(t, html, "Tiada")
	assert.Contains(t, html, "Makmal &lt;Sains&gt;")
	assert.Contains(t, html, "badge status-progress")
	assert.Contains(t, html, "onerror=")
	assert.NotContains(t, html, "window.print")
}

func TestListingHTML_Empty(t *testing.T) {
	html, err := BuildListing(nil, imageref.NewResolver(""), "", fixedNow()).HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "Tiada aduan.")
}

func TestQRCodeDataURI(t *testing.T) {
	uri, err := QRCodeDataURI("https://aduan.test")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Greater(t, len(uri), 100)
}

func newTestExporter(r Renderer) *Exporter {
	e := NewExporter(r, imageref.NewResolver(""), Options{FilePrefix: "Laporan_Aduan_SMKK"}, zap.NewNop())
	e.now = fixedNow
	return e
}

func TestExport_PDF(t *testing.T) {
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.4")}
	res, err := newTestExporter(renderer).Export(context.Background(), sampleReports())
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Equal(t, "Laporan_Aduan_SMKK_04-03-2025.pdf", res.Filename)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), res.Body)
	assert.Contains(t, renderer.html, "printable-area")
	assert.NotContains(t, renderer.html, "window.print")
}

func TestExport_FallbackOnRendererError(t *testing.T) {
	renderer := &fakeRenderer{err: stderrors.New("chrome not found")}
	res, err := newTestExporter(renderer).Export(context.Background(), sampleReports())
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, "Laporan_Aduan_SMKK_04-03-2025.html", res.Filename)
	assert.Equal(t, "text/html; charset=utf-8", res.ContentType)
	assert.Contains(t, string(res.Body), "window.print")
}

func TestExport_NoRenderer(t *testing.T) {
	res, err := newTestExporter(nil).Export(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
}

func TestToJPEG_RejectsGarbage(t *testing.T) {
	_, err := toJPEG([]byte("not an image"))
	assert.Error(t, err)
}

func TestRasterPage(t *testing.T) {
	page := rasterPage([]byte{0xff, 0xd8})
	assert.Contains(t, page, "data:image/jpeg;base64,/9g=")
}
