package charts

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"aduan/internal/analytics"
	"aduan/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderTable(t *testing.T) {
	reports := []report.Report{
		{ID: "R2", ReportedAt: "26/02/2026", TeacherName: "Cikgu Zainab", Location: "Blok A, Tingkat 2", IssueDescription: "Kipas siling tidak berpusing langsung sejak minggu lepas dan bilik menjadi terlalu panas untuk murid", Status: report.StatusInProgress},
		{ID: "R1", ReportedAt: "25/02/2026", TeacherName: "Cikgu Ali", Location: "Makmal", IssueDescription: "Paip bocor", Status: report.StatusDone},
	}

	data, err := RenderTable(reports, "Senarai Aduan", time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	w, h := decode(t, data)
	assert.Greater(t, w, 600)
	assert.Greater(t, h, titlePadding+headerHeight+2*minRowHeight)
}

func TestRenderTable_Empty(t *testing.T) {
	_, err := RenderTable(nil, "x", time.Now())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderStatusPie(t *testing.T) {
	data, err := RenderStatusPie([]analytics.Bucket{{Name: "Baru", Value: 3}, {Name: "Selesai", Value: 1}})
	require.NoError(t, err)
	w, h := decode(t, data)
	assert.Equal(t, chartWidth, w)
	assert.Equal(t, chartHeight, h)

	_, err = RenderStatusPie(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderTopLocations(t *testing.T) {
	data, err := RenderTopLocations([]analytics.Bucket{{Name: "Kantin", Value: 4}, {Name: "Makmal", Value: 1}})
	require.NoError(t, err)
	decode(t, data)

	_, err = RenderTopLocations(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderMonthlyTrend(t *testing.T) {
	data, err := RenderMonthlyTrend([]analytics.Bucket{{Name: "01/2026", Value: 2}})
	require.NoError(t, err)
	decode(t, data)

	data, err = RenderMonthlyTrend([]analytics.Bucket{{Name: "01/2026", Value: 2}, {Name: "02/2026", Value: 5}, {Name: "03/2026", Value: 0}})
	require.NoError(t, err)
	decode(t, data)
}

func TestStatusColor(t *testing.T) {
	assert.NotEqual(t, StatusColor(report.StatusNew), StatusColor(report.StatusRejected))
	assert.Equal(t, StatusColor(report.Status("x")), StatusColor(report.Status("y")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate(" abc ", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 2))
}
