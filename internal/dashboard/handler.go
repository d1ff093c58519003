package dashboard

import (
	"log/slog"
	"net/http"

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

// Page serves the dashboard data: headline counts, the ten most recent
// activity entries, and the signed-in identity.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	counts, err := h.Service.Counts(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	recent, err := h.Service.RecentActivity(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load recent activity")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"counts":          counts,
		"recent_activity": recent,
		"user":            user,
		"alert":           h.popAlert(r),
	})
}

func (h *Handler) popAlert(r *http.Request) *auth.Alert {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || sess == nil {
		return nil
	}
	return h.Sessions.PopAlert(sess)
}
