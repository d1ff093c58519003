package auth

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/atokschool/archiving-portal/internal"
	"github.com/atokschool/archiving-portal/internal/transport"
	"github.com/atokschool/archiving-portal/pkg/logger"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	DashboardPath    = "/dashboard"
)

type Handler struct {
	*transport.BaseHandler
	Service    *Service
	CookieName string
}

func NewHandler(svc *Service, cookieName string) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		CookieName:  cookieName,
	}
}

// RequestIP extracts the requester address, empty string when unavailable.
func RequestIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	dto := LoginDTO{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	sess, err := h.Service.Authenticate(r.Context(), dto, RequestIP(r))
	if err != nil {
		h.Logger.Warn("login failed", "username", dto.Username, "error", err)
		// One uniform answer regardless of what went wrong.
		h.WriteAppError(w, internal.NewUnauthorizedError("invalid username or password", internal.ErrCodeInvalidCredentials))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil {
		h.Service.Logout(r.Context(), cookie.Value, RequestIP(r))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})

	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Me returns the authenticated identity plus the session CSRF token the
// upload and user-management forms must echo back.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, _ := SessionFromContext(r.Context())
	csrfToken := ""
	if sess != nil {
		token, err := h.Service.Sessions().CSRFToken(sess)
		if err != nil {
			h.Logger.Error("failed to issue csrf token", "error", err, "user_id", user.ID)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		csrfToken = token
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"permissions": user.Role.Permissions(),
		"csrf_token":  csrfToken,
	})
}

// RequireAuth resolves the session cookie, re-fetches the user row, and
// threads both through the request context. Unauthenticated requests are
// redirected to the login page and processing stops there.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.CookieName)
		if err != nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		sess, ok := h.Service.Sessions().Get(cookie.Value)
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		user, err := h.Service.CurrentUser(r.Context(), sess)
		if err != nil || user.Status != "active" {
			h.Logger.Warn("session user no longer usable", "user_id", sess.UserID, "error", err)
			h.Service.Sessions().Destroy(sess.Token)
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = ContextWithSession(ctx, sess)
		ctx = logger.With(ctx, "user_id", user.ID, "username", user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a subtree on one permission from the static
// role table. Denied requests land on the unauthorized page.
func (h *Handler) RequirePermission(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if !user.HasPermission(permission) {
				h.Logger.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"role", user.Role,
					"required_permission", permission)
				http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a subtree on an exact role.
func (h *Handler) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if user.Role != role {
				h.Logger.Warn("access denied: wrong role", "user_id", user.ID, "role", user.Role, "required_role", role)
				http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
