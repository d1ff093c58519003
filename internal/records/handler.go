package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/atokschool/archiving-portal/internal"
	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/storage"
	"github.com/atokschool/archiving-portal/internal/transport"
	"github.com/atokschool/archiving-portal/pkg/logger"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// file parts spill to temp files.
const maxUploadMemory = 8 << 20

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	Sessions *auth.SessionStore
}

func NewHandler(service *Service, sessions *auth.SessionStore) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Sessions:    sessions,
	}
}

// Students handles the student records page: a plain GET lists and
// searches, `?download=<id>` streams one file.
func (h *Handler) Students(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if downloadID := r.URL.Query().Get("download"); downloadID != "" {
		h.download(w, r, user, downloadID, h.Service.DownloadStudentRecord)
		return
	}

	q := StudentSearchQuery{
		Search:     r.URL.Query().Get("search"),
		SchoolYear: r.URL.Query().Get("school_year"),
		GradeLevel: r.URL.Query().Get("grade_level"),
		RecordType: r.URL.Query().Get("record_type"),
		Page:       pageParam(r),
	}

	page, err := h.Service.SearchStudents(r.Context(), q)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load student records")
		return
	}

	students, err := h.Service.ListStudents(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load students")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"pagination": page.Pagination,
		"students":   students,
		"alert":      h.popAlert(r),
	})
}

// StudentsAction handles the student page form POST. The only action is
// `upload`; the route is gated on the upload permission.
func (h *Handler) StudentsAction(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.actionContext(w, r)
	if !ok {
		return
	}

	if r.PostFormValue("action") != "upload" {
		h.alertAndRedirect(w, r, sess, "danger", "Unknown action.")
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	studentID, _ := strconv.ParseInt(r.PostFormValue("student_id"), 10, 64)
	dto := UploadStudentRecordDTO{
		StudentID:  studentID,
		SchoolYear: r.PostFormValue("school_year"),
		GradeLevel: r.PostFormValue("grade_level"),
		Section:    r.PostFormValue("section"),
		RecordType: r.PostFormValue("record_type"),
	}

	if err := dto.Validate(); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please fill in all required fields.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please select a valid file to upload.")
		return
	}
	defer file.Close()

	if _, err := h.Service.UploadStudentRecord(r.Context(), user, dto, file, header, auth.RequestIP(r)); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", uploadFailureMessage(err))
		return
	}

	h.alertAndRedirect(w, r, sess, "success", "Record uploaded successfully.")
}

// Personnel mirrors Students for the personnel catalog.
func (h *Handler) Personnel(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if downloadID := r.URL.Query().Get("download"); downloadID != "" {
		h.download(w, r, user, downloadID, h.Service.DownloadPersonnelRecord)
		return
	}

	q := PersonnelSearchQuery{
		Search:     r.URL.Query().Get("search"),
		Position:   r.URL.Query().Get("position"),
		Status:     r.URL.Query().Get("status"),
		RecordType: r.URL.Query().Get("record_type"),
		Page:       pageParam(r),
	}

	page, err := h.Service.SearchPersonnel(r.Context(), q)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load personnel records")
		return
	}

	personnel, err := h.Service.ListPersonnel(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load personnel")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"pagination": page.Pagination,
		"personnel":  personnel,
		"alert":      h.popAlert(r),
	})
}

func (h *Handler) PersonnelAction(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.actionContext(w, r)
	if !ok {
		return
	}

	if r.PostFormValue("action") != "upload" {
		h.alertAndRedirect(w, r, sess, "danger", "Unknown action.")
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	personnelID, _ := strconv.ParseInt(r.PostFormValue("personnel_id"), 10, 64)
	dto := UploadPersonnelRecordDTO{
		PersonnelID:   personnelID,
		RecordType:    r.PostFormValue("record_type"),
		DocumentTitle: r.PostFormValue("document_title"),
	}

	if err := dto.Validate(); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please fill in all required fields.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please select a valid file to upload.")
		return
	}
	defer file.Close()

	if _, err := h.Service.UploadPersonnelRecord(r.Context(), user, dto, file, header, auth.RequestIP(r)); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", uploadFailureMessage(err))
		return
	}

	h.alertAndRedirect(w, r, sess, "success", "Record uploaded successfully.")
}

// Forms mirrors Students for school-level forms.
func (h *Handler) Forms(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if downloadID := r.URL.Query().Get("download"); downloadID != "" {
		h.download(w, r, user, downloadID, h.Service.DownloadForm)
		return
	}

	q := FormSearchQuery{
		Search:     r.URL.Query().Get("search"),
		SchoolYear: r.URL.Query().Get("school_year"),
		FormType:   r.URL.Query().Get("form_type"),
		Page:       pageParam(r),
	}

	page, err := h.Service.SearchForms(r.Context(), q)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load school forms")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"pagination": page.Pagination,
		"alert":      h.popAlert(r),
	})
}

func (h *Handler) FormsAction(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.actionContext(w, r)
	if !ok {
		return
	}

	if r.PostFormValue("action") != "upload" {
		h.alertAndRedirect(w, r, sess, "danger", "Unknown action.")
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	dto := UploadFormDTO{
		FormType:      r.PostFormValue("form_type"),
		SchoolYear:    r.PostFormValue("school_year"),
		DocumentTitle: r.PostFormValue("document_title"),
	}

	if err := dto.Validate(); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please fill in all required fields.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please select a valid file to upload.")
		return
	}
	defer file.Close()

	if _, err := h.Service.UploadForm(r.Context(), user, dto, file, header, auth.RequestIP(r)); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", uploadFailureMessage(err))
		return
	}

	h.alertAndRedirect(w, r, sess, "success", "Record uploaded successfully.")
}

// --- helpers ---

type downloadFn func(ctx context.Context, user *auth.User, recordID int64, ip string) (*Download, error)

func (h *Handler) download(w http.ResponseWriter, r *http.Request, user *auth.User, rawID string, resolve downloadFn) {
	if user == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	if !user.HasPermission(auth.PermissionView) {
		http.Redirect(w, r, auth.UnauthorizedPath, http.StatusSeeOther)
		return
	}

	recordID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid record ID", internal.ErrCodeValidationFailed))
		return
	}

	d, err := resolve(r.Context(), user, recordID, auth.RequestIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrFileMissing):
			h.WriteAppError(w, internal.NewNotFoundError("record not found", internal.ErrCodeRecordNotFound))
		default:
			h.WriteAppError(w, internal.NewInternalError("failed to download record", err))
		}
		return
	}

	h.stream(w, d)
}

// stream serves the file with attachment disposition and the original
// filename, never the stored one.
func (h *Handler) stream(w http.ResponseWriter, d *Download) {
	f, err := os.Open(d.Path)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, "record not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.OriginalName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	if _, err := io.Copy(w, f); err != nil {
		h.Logger.Error("failed to stream file", "error", err, "path", d.Path)
	}
}

func (h *Handler) actionContext(w http.ResponseWriter, r *http.Request) (*auth.User, *auth.Session, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return nil, nil, false
	}

	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return nil, nil, false
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Please select a valid file to upload.")
		return nil, nil, false
	}

	return user, sess, true
}

// alertAndRedirect stages the one-shot alert and self-redirects so a
// refresh never re-submits the form.
func (h *Handler) alertAndRedirect(w http.ResponseWriter, r *http.Request, sess *auth.Session, alertType, message string) {
	h.Sessions.SetAlert(sess, alertType, message)
	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}

func (h *Handler) popAlert(r *http.Request) *auth.Alert {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess == nil {
		return nil
	}
	return h.Sessions.PopAlert(sess)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// uploadFailureMessage maps pipeline and storage failures to the alert
// text shown to the user. Internal causes stay in the logs.
func uploadFailureMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrFileTypeNotAllowed):
		return err.Error()
	case errors.Is(err, storage.ErrInvalidUpload):
		return "Please select a valid file to upload."
	case errors.Is(err, ErrMissingFields):
		return "Please fill in all required fields."
	case errors.Is(err, ErrStorageFailed):
		return "Failed to save record to database."
	default:
		return "File upload error. Please try again."
	}
}
