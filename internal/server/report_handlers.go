package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	apperrors "aduan/internal/errors"
	"aduan/internal/imageref"
	"aduan/internal/report"
	"aduan/internal/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Form field names accepted by SubmitReport.
const (
	fieldTeacher     = "namaGuru"
	fieldLocation    = "tempat"
	fieldDescription = "jenisKerosakan"
	fieldImage       = "gambar"
)

// multipartOverhead allows for form fields and boundaries on top of the image.
const multipartOverhead = 1 << 20

// Notification texts shown after report operations.
const (
	msgSubmitted    = "Laporan berjaya dihantar ke Google Sheets!"
	msgSubmitFailed = "Terdapat ralat semasa menghantar aduan."
	msgStatusFailed = "Gagal mengemaskini status."
	msgDeleteFailed = "Gagal memadam aduan. Sila cuba lagi."
	msgOversize     = "Saiz gambar terlalu besar! Maksimum %sMB."
)

// megabytes formats n bytes in MB rounded up to one decimal, without a
// trailing ".0": 50MB → "50", 1.5MB → "1.5", 64 bytes → "0.1".
func megabytes(n int64) string {
	mb := math.Ceil(float64(n)/(1<<20)*10) / 10
	return strconv.FormatFloat(mb, 'f', -1, 64)
}

// reportView is a report with its derived image URLs.
type reportView struct {
	report.Report
	imageref.Resolved
}

// ListTeachers returns the Teacher Directory.
func (s *Server) ListTeachers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Repo.Teachers())
}

// ListReports returns every report, newest first, with thumbnail and zoom URLs.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views(s.Repo.Reports()))
}

func (s *Server) views(reports []report.Report) []reportView {
	out := make([]reportView, len(reports))
	for i, rep := range reports {
		out[i] = reportView{Report: rep, Resolved: s.Resolver.Resolve(rep.ImageURL)}
	}
	return out
}

// SubmitReport accepts the complaint form and dispatches a create intent.
//
// Flow:
//  1. Parse the multipart form under the upload ceiling
//  2. Build the draft, rejecting oversize or non-image uploads
//  3. Dispatch and prepend the optimistic record
//  4. Switch the session to the list view
func (s *Server) SubmitReport(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	done := s.Sessions.Begin(id, session.OpSubmit, "")
	defer done()

	oversize := fmt.Sprintf(msgOversize, megabytes(s.MaxUploadBytes))

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			err = r.ParseForm()
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, apperrors.NewOversizeError(r.ContentLength, s.MaxUploadBytes), oversize)
			return
		}
		if err != nil {
			s.writeError(w, apperrors.NewValidationError("form", err.Error()), "")
			return
		}
	}

	draft := report.Draft{
		TeacherName:      r.FormValue(fieldTeacher),
		Location:         r.FormValue(fieldLocation),
		IssueDescription: r.FormValue(fieldDescription),
	}

	img, err := s.readImage(r)
	if err != nil {
		msg := ""
		if apperrors.IsOversize(err) {
			msg = oversize
		}
		s.writeError(w, err, msg)
		return
	}
	draft.Image = img

	rec, err := s.Repo.SubmitReport(r.Context(), draft)
	if err != nil {
		msg := ""
		if apperrors.IsDispatch(err) {
			msg = msgSubmitFailed
		}
		s.writeError(w, err, msg)
		return
	}

	s.Sessions.SetView(id, session.ViewList)
	s.Logger.Info("📝 Report submitted",
		zap.String("location", rec.Location),
		zap.Bool("image", draft.HasImage()))
	writeJSON(w, http.StatusCreated, messageBody{Message: msgSubmitted, Data: rec})
}

// readImage loads the optional image upload.
func (s *Server) readImage(r *http.Request) (*report.ImagePayload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(fieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError(fieldImage, err.Error())
	}
	defer f.Close()

	if hdr.Size > s.MaxUploadBytes {
		return nil, apperrors.NewOversizeError(hdr.Size, s.MaxUploadBytes)
	}
	data, err := io.ReadAll(io.LimitReader(f, s.MaxUploadBytes+1))
	if err != nil {
		return nil, apperrors.NewValidationError(fieldImage, err.Error())
	}
	return report.NewImagePayload(hdr.Filename, data, s.MaxUploadBytes)
}

// UpdateStatus changes a report's status. Admin only.
func (s *Server) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.NewValidationError("status", "invalid json"), "")
		return
	}

	st := s.currentSession(r)
	done := s.Sessions.Begin(st.ID, session.OpStatus, reportID)
	defer done()

	status := report.Status(body.Status)
	if parsed, ok := report.ParseStatus(body.Status); ok {
		status = parsed
	}

	if err := s.Repo.UpdateStatus(r.Context(), st.Privilege(), reportID, status); err != nil {
		msg := ""
		if apperrors.IsDispatch(err) {
			msg = msgStatusFailed
		}
		s.writeError(w, err, msg)
		return
	}

	writeJSON(w, http.StatusOK, messageBody{
		Message: fmt.Sprintf("Status aduan %s dikemaskini ke %s", reportID, status),
	})
}

// DeleteReport removes a report. Admin only, and requires ?confirm=true.
func (s *Server) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]
	confirmed := r.URL.Query().Get("confirm") == "true"

	st := s.currentSession(r)
	done := s.Sessions.Begin(st.ID, session.OpDelete, reportID)
	defer done()

	err := s.Repo.DeleteReport(r.Context(), st.Privilege(), reportID, confirmed)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageBody{Message: fmt.Sprintf("Aduan %s berjaya dipadam.", reportID)})
	case apperrors.IsConfirmationRequired(err):
		s.writeError(w, err, fmt.Sprintf(
			"Adakah anda pasti ingin memadam aduan %s? Tindakan ini tidak boleh dibatalkan.", reportID))
	case apperrors.IsDispatch(err):
		s.writeError(w, err, msgDeleteFailed)
	default:
		s.writeError(w, err, "")
	}
}

// Refresh reloads the feeds. A failed refresh keeps the current collection
// and reports itself as stale rather than failing the request.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	err := s.Repo.Refresh(r.Context())

	body := struct {
		Stale       bool   `json:"stale"`
		Error       string `json:"error,omitempty"`
		Reports     int    `json:"reports"`
		Teachers    int    `json:"teachers"`
		LastRefresh string `json:"lastRefresh,omitempty"`
	}{
		Reports:  len(s.Repo.Reports()),
		Teachers: len(s.Repo.Teachers()),
	}
	if t := s.Repo.LastRefresh(); !t.IsZero() {
		body.LastRefresh = t.Format("2006-01-02 15:04:05")
	}
	if err != nil {
		s.Logger.Warn("⚠️  Manual refresh failed", zap.Error(err))
		body.Stale = true
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}
