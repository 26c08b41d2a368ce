package notify

import (
	"context"
	"fmt"

	"aduan/internal/gateway"
	"aduan/internal/reconcile"
	"aduan/internal/report"
	"aduan/internal/repository"
	"aduan/internal/telegram"
)

// Job kinds.
const (
	KindSubmit      = "submit"
	KindStatus      = "status"
	KindDelete      = "delete"
	KindDiscrepancy = "discrepancy"
)

// Notifier turns dispatched mutations and reconciliation discrepancies into
// queued chat messages. It satisfies repository.Tracker and
// reconcile.Alerter.
type Notifier struct {
	pool *Pool
}

// NewNotifier creates a notifier backed by pool.
func NewNotifier(pool *Pool) *Notifier {
	return &Notifier{pool: pool}
}

// Track implements repository.Tracker.
func (n *Notifier) Track(_ context.Context, m repository.Mutation) {
	job, ok := MutationJob(m)
	if !ok {
		return
	}
	n.pool.Submit(job)
}

// AlertDiscrepancy implements reconcile.Alerter.
func (n *Notifier) AlertDiscrepancy(_ context.Context, e reconcile.Entry) {
	n.pool.Submit(DiscrepancyJob(e))
}

// MutationJob formats a dispatched mutation. Unknown actions produce no job.
func MutationJob(m repository.Mutation) (Job, bool) {
	esc := telegram.Escape
	switch m.Action {
	case gateway.ActionAddReport:
		image := "Tiada"
		if m.Report.ImageURL != "" && m.Report.ImageURL != report.ImageNone {
			image = "Ada"
		}
		return Job{
			Kind: KindSubmit,
			Ref:  m.Token,
			Text: fmt.Sprintf(
				"📋 <b>Aduan Baru</b>\n\n"+
					"👤 %s\n"+
					"📍 %s\n"+
					"📅 %s\n\n"+
					"💬 %s\n\n"+
					"🖼 Gambar: %s",
				esc(m.Report.TeacherName),
				esc(m.Report.Location),
				esc(m.Report.ReportedAt),
				esc(m.Report.IssueDescription),
				image,
			),
		}, true
	case gateway.ActionUpdateStatus:
		return Job{
			Kind: KindStatus,
			Ref:  m.ReportID,
			Text: fmt.Sprintf("🔄 Status aduan <b>%s</b> dikemaskini ke <b>%s</b>",
				esc(m.ReportID), esc(string(m.Status))),
		}, true
	case gateway.ActionDeleteReport:
		return Job{
			Kind: KindDelete,
			Ref:  m.ReportID,
			Text: fmt.Sprintf("🗑 Aduan <b>%s</b> dipadam (%s, %s)",
				esc(m.ReportID), esc(m.Report.Location), esc(m.Report.TeacherName)),
		}, true
	}
	return Job{}, false
}

// DiscrepancyJob formats an intent the feed never confirmed.
func DiscrepancyJob(e reconcile.Entry) Job {
	esc := telegram.Escape
	subject := e.ReportID
	if e.Action == gateway.ActionAddReport {
		subject = fmt.Sprintf("%s / %s", e.TeacherName, e.Location)
	}
	return Job{
		Kind: KindDiscrepancy,
		Ref:  e.Token,
		Text: fmt.Sprintf(
			"⚠️ <b>Perubahan belum kelihatan dalam helaian</b>\n\n"+
				"<b>Tindakan:</b> %s\n"+
				"<b>Aduan:</b> %s\n"+
				"<b>Dihantar:</b> %s",
			esc(e.Action),
			esc(subject),
			e.CreatedAt.Format("02/01/2006 15:04"),
		),
	}
}
