// Package report defines the complaint records shown on the dashboard and the
// transient form draft used to submit new ones.
package report

import "strings"

// Sentinel values written by the dashboard itself rather than the remote sheet.
const (
	// PendingID marks an optimistic record not yet assigned an id remotely.
	PendingID = "Tunggu Update"
	// ImageNone is shown when a submission had no image attached.
	ImageNone = "Tiada Gambar"
	// ImageUploading is shown while the remote side is still storing the image.
	ImageUploading = "Sedang Dimuat Naik..."
)

// Report is one facilities complaint.
type Report struct {
	ID               string `json:"id"`
	ReportedAt       string `json:"reportedAt"`
	ReportedAtRaw    string `json:"-"`
	TeacherName      string `json:"teacherName"`
	Location         string `json:"location"`
	IssueDescription string `json:"issueDescription"`
	ImageURL         string `json:"imageUrl"`
	Status           Status `json:"status"`

	// Set only on records synthesized locally before remote confirmation.
	Pending          bool   `json:"pending,omitempty"`
	CorrelationToken string `json:"correlationToken,omitempty"`
}

// IsPending reports whether the record is an optimistic placeholder.
func (r Report) IsPending() bool {
	return r.Pending || r.ID == PendingID
}

// Fingerprint identifies a submission by its user-entered content. It is how a
// locally created record is recognised once the sheet assigns it a real id.
func (r Report) Fingerprint() string {
	return Fingerprint(r.TeacherName, r.Location, r.IssueDescription)
}

// Fingerprint builds the content key for the given fields.
func Fingerprint(teacher, location, description string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return norm(teacher) + "\x1f" + norm(location) + "\x1f" + norm(description)
}
