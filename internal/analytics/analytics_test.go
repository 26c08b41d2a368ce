package analytics

import (
	"fmt"
	"testing"

	"aduan/internal/report"

	"github.com/stretchr/testify/assert"
)

func sample() []report.Report {
	return []report.Report{
		{ID: report.PendingID, Pending: true, Location: "Kantin", ReportedAt: "01/03/2026", Status: report.StatusNew},
		{ID: "R6", Location: "Makmal", ReportedAt: "28/02/2026", Status: report.StatusDone},
		{ID: "R5", Location: "Kantin", ReportedAt: "15/02/2026", Status: report.StatusInProgress},
		{ID: "R4", Location: "Tandas", ReportedAt: "10/12/2025", Status: report.StatusNew},
		{ID: "R3", Location: "Kantin", ReportedAt: "2025-11-01", Status: report.StatusDone},
		{ID: "R2", Location: "Makmal", ReportedAt: "05/01/2026", Status: report.Status("Ditangguh")},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.New)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, 0, s.Rejected)
	assert.Equal(t, 1, s.Pending)
	assert.Len(t, s.Recent, RecentLimit)
	assert.Equal(t, report.PendingID, s.Recent[0].ID)
	assert.Equal(t, "R3", s.Recent[4].ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.NotNil(t, s.Recent)
	assert.Empty(t, s.Recent)
}

func TestStatusBreakdown_DropsEmpty(t *testing.T) {
	got := StatusBreakdown(sample())
	assert.Equal(t, []Bucket{
		{Name: "Baru", Value: 2},
		{Name: "Dalam Proses", Value: 1},
		{Name: "Selesai", Value: 2},
	}, got)
}

func TestTopLocations(t *testing.T) {
	got := TopLocations(sample(), TopLocationLimit)
	assert.Equal(t, []Bucket{
		{Name: "Kantin", Value: 3},
		{Name: "Makmal", Value: 2},
		{Name: "Tandas", Value: 1},
	}, got)
}

func TestTopLocations_Limit(t *testing.T) {
	var reports []report.Report
	for i := 0; i < 8; i++ {
		for j := 0; j <= i; j++ {
			reports = append(reports, report.Report{Location: fmt.Sprintf("Bilik %d", i)})
		}
	}
	got := TopLocations(reports, 5)
	assert.Len(t, got, 5)
	assert.Equal(t, "Bilik 7", got[0].Name)
	assert.Equal(t, 8, got[0].Value)
}

func TestMonthlyTrend(t *testing.T) {
	got := MonthlyTrend(sample())
	assert.Equal(t, []Bucket{
		{Name: "12/2025", Value: 1},
		{Name: "01/2026", Value: 1},
		{Name: "02/2026", Value: 2},
		{Name: "03/2026", Value: 1},
	}, got)
}

func TestCompute(t *testing.T) {
	a := Compute(sample())
	assert.NotEmpty(t, a.StatusBreakdown)
	assert.NotEmpty(t, a.TopLocations)
	assert.NotEmpty(t, a.MonthlyTrend)
}
