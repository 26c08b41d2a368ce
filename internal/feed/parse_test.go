package feed

import (
	"testing"

	"aduan/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	body := "header\r\n\n  row1  \n\nrow2\n"
	assert.Equal(t, []string{"header", "row1", "row2"}, Lines(body))
	assert.Empty(t, Lines(""))
}

func TestParseTeachers(t *testing.T) {
	body := "Bil,Nama\n" +
		"1,Cikgu Zainab\n" +
		"2,\"Cikgu Ahmad, Ketua Panitia\"\n" +
		"3,Cikgu Ali\n" +
		"no-comma-row\n" +
		"4,\n" +
		"5,Cikgu Ali\n"

	got := ParseTeachers(body)
	assert.Equal(t, []string{"Cikgu Ahmad, Ketua Panitia", "Cikgu Ali", "Cikgu Zainab"}, got)
}

func TestParseTeachers_HeaderOnly(t *testing.T) {
	assert.Empty(t, ParseTeachers("Bil,Nama\n"))
	assert.NotNil(t, ParseTeachers(""))
}

func TestParseReports_EndToEnd(t *testing.T) {
	body := "ID,Tarikh,Nama Guru,Tempat,Jenis Kerosakan,Gambar,Status\n" +
		`A1,2/25/2026 08:00:00,Cikgu Ali,"Blok A, Tingkat 2",Kipas rosak,https://drive.google.com/file/d/XYZ/view` + "\n" +
		"B2,25/2/2026,Cikgu Siti,Kantin\n"

	reports := ParseReports(body, NewDateNormalizer(OrderAuto))
	require.Len(t, reports, 2)

	// Last feed row first
	b := reports[0]
	assert.Equal(t, "B2", b.ID)
	assert.Equal(t, "25/02/2026", b.ReportedAt)
	assert.Equal(t, "Kantin", b.Location)
	assert.Equal(t, "", b.IssueDescription)
	assert.Equal(t, "", b.ImageURL)
	assert.Equal(t, report.StatusNew, b.Status)

	a := reports[1]
	assert.Equal(t, "A1", a.ID)
	assert.Equal(t, "25/02/2026", a.ReportedAt)
	assert.Equal(t, "2/25/2026 08:00:00", a.ReportedAtRaw)
	assert.Equal(t, "Blok A, Tingkat 2", a.Location)
	assert.Equal(t, "Kipas rosak", a.IssueDescription)
	assert.Equal(t, "https://drive.google.com/file/d/XYZ/view", a.ImageURL)
	assert.Equal(t, report.StatusNew, a.Status)
}

func TestParseReports_Status(t *testing.T) {
	body := "h\n" +
		"R1,1/1/2026,A,B,C,,\n" +
		"R2,1/1/2026,A,B,C,,selesai\n" +
		"R3,1/1/2026,A,B,C,,Dalam Proses\n"

	reports := ParseReports(body, NewDateNormalizer(OrderAuto))
	require.Len(t, reports, 3)
	assert.Equal(t, report.StatusInProgress, reports[0].Status)
	assert.Equal(t, report.StatusDone, reports[1].Status)
	assert.Equal(t, report.StatusNew, reports[2].Status)
}

func TestParseReports_Idempotent(t *testing.T) {
	body := "h\nR1,1/1/2026,A,B,C,,Baru\nR2,2/1/2026,D,E,F,,Ditolak\n"
	n := NewDateNormalizer(OrderAuto)
	assert.Equal(t, ParseReports(body, n), ParseReports(body, n))
}
