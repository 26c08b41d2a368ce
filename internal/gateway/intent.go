package gateway

import (
	"aduan/internal/report"
)

// Actions understood by the scripting endpoint.
const (
	ActionAddReport    = "addReport"
	ActionUpdateStatus = "updateStatus"
	ActionDeleteReport = "deleteReport"
)

// Intent is one mutation request destined for the scripting endpoint.
type Intent interface {
	// Action names the intent for logs and metrics.
	Action() string
	// Payload returns the JSON body for the given schema version.
	Payload(schema int) any
}

// CreateIntent submits a new report from a validated draft.
type CreateIntent struct {
	Draft report.Draft
}

// UpdateStatusIntent moves a report to another status.
type UpdateStatusIntent struct {
	ID     string
	Status report.Status
}

// DeleteIntent removes a report.
type DeleteIntent struct {
	ID string
}

type createPayload struct {
	NamaGuru       string  `json:"namaGuru"`
	Tempat         string  `json:"tempat"`
	JenisKerosakan string  `json:"jenisKerosakan"`
	GambarBase64   string  `json:"gambarBase64"`
	GambarName     string  `json:"gambarName"`
	MimeType       string  `json:"mimeType"`
	GambarPreview  *string `json:"gambarPreview"`
	Action         string  `json:"action,omitempty"`
}

type updateStatusPayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Status string `json:"status"`
}

type deletePayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

func (CreateIntent) Action() string { return ActionAddReport }

// Payload carries the draft fields. Schema 1 endpoints predate action tags and
// treat an untagged body as a create.
func (i CreateIntent) Payload(schema int) any {
	p := createPayload{
		NamaGuru:       i.Draft.TeacherName,
		Tempat:         i.Draft.Location,
		JenisKerosakan: i.Draft.IssueDescription,
	}
	if img := i.Draft.Image; img != nil {
		p.GambarBase64 = img.DataURL
		p.GambarName = img.Name
		p.MimeType = img.MimeType
	}
	if i.Draft.PreviewRef != "" {
		preview := i.Draft.PreviewRef
		p.GambarPreview = &preview
	}
	if schema != 1 {
		p.Action = ActionAddReport
	}
	return p
}

func (UpdateStatusIntent) Action() string { return ActionUpdateStatus }

func (i UpdateStatusIntent) Payload(int) any {
	return updateStatusPayload{Action: ActionUpdateStatus, ID: i.ID, Status: string(i.Status)}
}

func (DeleteIntent) Action() string { return ActionDeleteReport }

func (i DeleteIntent) Payload(int) any {
	return deletePayload{Action: ActionDeleteReport, ID: i.ID}
}
