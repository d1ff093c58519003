package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

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

// List serves the user management page data. The route is gated on the
// manage_users permission.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load users")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"users":       page.Users,
		"total_users": page.TotalUsers,
		"roles":       []auth.Role{auth.RoleAdmin, auth.RoleSchoolHead, auth.RoleRegistrar},
		"alert":       h.popAlert(r),
	})
}

// Action handles the user management form POST: add_user or update_user.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	actor, sess, ok := h.actionContext(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	switch r.PostFormValue("action") {
	case "add_user":
		dto := CreateUserDTO{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
			FullName: r.PostFormValue("full_name"),
			Email:    r.PostFormValue("email"),
			Role:     r.PostFormValue("role"),
		}
		if _, err := h.Service.Create(r.Context(), actor, dto, auth.RequestIP(r)); err != nil {
			h.alertAndRedirect(w, r, sess, "danger", createFailureMessage(err))
			return
		}
		h.alertAndRedirect(w, r, sess, "success", "User account created successfully.")

	case "update_user":
		id, _ := strconv.ParseInt(r.PostFormValue("user_id"), 10, 64)
		dto := UpdateUserDTO{
			ID:       id,
			FullName: r.PostFormValue("full_name"),
			Email:    r.PostFormValue("email"),
			Role:     r.PostFormValue("role"),
			Status:   r.PostFormValue("status"),
			Password: r.PostFormValue("password"),
		}
		if _, err := h.Service.Update(r.Context(), actor, dto, auth.RequestIP(r)); err != nil {
			h.alertAndRedirect(w, r, sess, "danger", updateFailureMessage(err))
			return
		}
		h.alertAndRedirect(w, r, sess, "success", "User account updated successfully.")

	default:
		h.alertAndRedirect(w, r, sess, "danger", "Unknown action.")
	}
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, sess, ok := h.actionContext(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.ValidateCSRF(sess, r.PostFormValue("csrf_token")); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return
	}

	dto := ChangePasswordDTO{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	if err := h.Service.ChangePassword(r.Context(), actor, dto, auth.RequestIP(r)); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", passwordFailureMessage(err))
		return
	}

	h.alertAndRedirect(w, r, sess, "success", "Password changed successfully.")
}

func (h *Handler) actionContext(w http.ResponseWriter, r *http.Request) (*auth.User, *auth.Session, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return nil, nil, false
	}

	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess == nil {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return nil, nil, false
	}

	if err := r.ParseForm(); err != nil {
		h.alertAndRedirect(w, r, sess, "danger", "Invalid request. Please try again.")
		return nil, nil, false
	}

	return actor, sess, true
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

func createFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserExists),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrInvalidRole):
		return capitalizeError(err)
	default:
		return "Failed to create user account."
	}
}

func updateFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserExists),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidStatus):
		return capitalizeError(err)
	default:
		return "Failed to update user account."
	}
}

func passwordFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordMismatch):
		return capitalizeError(err)
	default:
		return "Failed to change password."
	}
}

// capitalizeError turns a sentinel error into user-facing alert text.
func capitalizeError(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
