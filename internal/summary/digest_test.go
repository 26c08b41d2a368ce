package summary

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"aduan/internal/analytics"
	"aduan/internal/report"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	reports    []report.Report
	refreshErr error
}

func (f *fakeSource) Refresh(ctx context.Context) error { return f.refreshErr }
func (f *fakeSource) Reports() []report.Report         { return f.reports }

type fakePhotos struct {
	filename string
	png      []byte
	caption  string
	calls    int
	err      error
}

func (f *fakePhotos) SendPhoto(ctx context.Context, filename string, png []byte, caption string) error {
	f.calls++
	f.filename, f.png, f.caption = filename, png, caption
	return f.err
}

func sample() []report.Report {
	return []report.Report{
		{ID: "R3", ReportedAt: "03/03/2025", TeacherName: "Ali", Location: "Dewan", IssueDescription: "Lampu", Status: report.StatusNew},
		{ID: "R2", ReportedAt: "02/03/2025", TeacherName: "Siti", Location: "Makmal", IssueDescription: "Paip", Status: report.StatusDone},
		{ID: "R1", ReportedAt: "01/03/2025", TeacherName: "Abu", Location: "Kelas", IssueDescription: "Kipas", Status: report.StatusInProgress},
	}
}

func newDigest(src Source, sender PhotoSender) *Digest {
	d := New(src, sender, zap.NewNop())
	d.now = func() time.Time { return time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC) }
	return d
}

func TestOpenReports(t *testing.T) {
	open := OpenReports(sample())
	require.Len(t, open, 2)
	assert.Equal(t, "R3", open[0].ID)
	assert.Equal(t, "R1", open[1].ID)
}

func TestCaption(t *testing.T) {
	c := Caption(analytics.Summarize(sample()), time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, c, "04/03/2025")
	assert.Contains(t, c, "Baru: 1")
	assert.Contains(t, c, "Selesai: 1")
	assert.Contains(t, c, "Jumlah: 3")
}

func TestSend(t *testing.T) {
	photos := &fakePhotos{}
	// Refresh failure still sends from the current snapshot
	src := &fakeSource{reports: sample(), refreshErr: stderrors.New("timeout")}

	require.NoError(t, newDigest(src, photos).Send(context.Background()))
	assert.Equal(t, 1, photos.calls)
	assert.Equal(t, "aduan_04-03-2025.png", photos.filename)
	assert.True(t, bytes.HasPrefix(photos.png, []byte("\x89PNG")))
	assert.Contains(t, photos.caption, "Dalam Proses: 1")
}

func TestSend_NothingOpen(t *testing.T) {
	photos := &fakePhotos{}
	src := &fakeSource{reports: []report.Report{{ID: "R1", Status: report.StatusDone}}}

	require.NoError(t, newDigest(src, photos).Send(context.Background()))
	assert.Zero(t, photos.calls)
}

func TestSend_SenderError(t *testing.T) {
	photos := &fakePhotos{err: stderrors.New("chat not found")}
	err := newDigest(&fakeSource{reports: sample()}, photos).Send(context.Background())
	assert.EqualError(t, err, "chat not found")
}

func TestSchedule(t *testing.T) {
	c := cron.New()
	d := newDigest(&fakeSource{}, &fakePhotos{})

	assert.NoError(t, d.Schedule(c, "0 7 * * 1-5", time.Minute))
	assert.Len(t, c.Entries(), 1)
	assert.Error(t, d.Schedule(c, "every tuesday", time.Minute))
}
