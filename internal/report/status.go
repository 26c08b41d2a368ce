package report

import "strings"

// Status is the lifecycle state of a report. Values are the labels stored in
// the spreadsheet.
type Status string

// The closed set of statuses a report can be in.
const (
	StatusNew        Status = "Baru"
	StatusInProgress Status = "Dalam Proses"
	StatusDone       Status = "Selesai"
	StatusRejected   Status = "Ditolak"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusDone, StatusRejected}

// statusAliases maps lower-cased labels, including English names accepted
// from API clients, to their canonical status.
var statusAliases = map[string]Status{
	"baru":         StatusNew,
	"new":          StatusNew,
	"dalam proses": StatusInProgress,
	"in progress":  StatusInProgress,
	"inprogress":   StatusInProgress,
	"selesai":      StatusDone,
	"done":         StatusDone,
	"ditolak":      StatusRejected,
	"rejected":     StatusRejected,
}

// NormalizeStatus canonicalizes a feed value. Empty input is New. Unknown
// labels are kept verbatim so one odd cell does not lose information.
func NormalizeStatus(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusNew
	}
	if s, ok := statusAliases[strings.ToLower(trimmed)]; ok {
		return s
	}
	return Status(trimmed)
}

// ParseStatus accepts only members of the closed set (case-insensitive).
func ParseStatus(raw string) (Status, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone, StatusRejected:
		return true
	}
	return false
}

// ColorClass returns the badge class used by the printable listing.
func (s Status) ColorClass() string {
	switch s {
	case StatusNew:
		return "status-new"
	case StatusInProgress:
		return "status-progress"
	case StatusDone:
		return "status-done"
	case StatusRejected:
		return "status-rejected"
	}
	return "status-unknown"
}
