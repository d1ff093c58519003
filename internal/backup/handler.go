package backup

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/atokschool/archiving-portal/internal"
	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/transport"
	"github.com/atokschool/archiving-portal/pkg/logger"
)

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

// Page serves the backup page data, or streams an archive when
// `?download=<id>` is present. The route is gated on the backup
// permission.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if downloadID := r.URL.Query().Get("download"); downloadID != "" {
		h.download(w, r, user, downloadID)
		return
	}

	backups, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load backups")
		return
	}

	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load backup stats")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"backups": backups,
		"stats":   stats,
		"alert":   h.popAlert(r),
	})
}

// Action handles the backup form POST, action=create_backup.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	if r.PostFormValue("action") != "create_backup" {
		h.alertAndRedirect(w, r, sess, "danger", "Unknown action.")
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	backupType := r.PostFormValue("backup_type")
	if backupType == "" {
		backupType = TypeFull
	}

	b, err := h.Service.Create(r.Context(), user, backupType, auth.RequestIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			h.alertAndRedirect(w, r, sess, "danger", "Invalid backup type.")
		case errors.Is(err, ErrNothingToBack):
			h.alertAndRedirect(w, r, sess, "danger", "There are no files to back up.")
		default:
			h.alertAndRedirect(w, r, sess, "danger", "Failed to create backup.")
		}
		return
	}

	h.alertAndRedirect(w, r, sess, "success", "Backup created successfully: "+b.FileName)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, user *auth.User, rawID string) {
	if user == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	backupID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid backup ID", internal.ErrCodeValidationFailed))
		return
	}

	d, err := h.Service.Download(r.Context(), user, backupID, auth.RequestIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrBackupNotFound), errors.Is(err, ErrFileMissing):
			h.WriteAppError(w, internal.NewNotFoundError("backup not found", internal.ErrCodeRecordNotFound))
		default:
			h.WriteAppError(w, internal.NewInternalError("failed to download backup", err))
		}
		return
	}

	f, err := os.Open(d.Path)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, "backup not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")

	if _, err := io.Copy(w, f); err != nil {
		h.Logger.Error("failed to stream backup", "error", err, "path", d.Path)
	}
}

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
