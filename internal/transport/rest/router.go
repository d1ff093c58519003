package rest

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/atokschool/archiving-portal/internal"
	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/backup"
	"github.com/atokschool/archiving-portal/internal/dashboard"
	"github.com/atokschool/archiving-portal/internal/records"
	"github.com/atokschool/archiving-portal/internal/transport/middleware"
	"github.com/atokschool/archiving-portal/internal/transport/swagger"
	"github.com/atokschool/archiving-portal/internal/user"
)

// RegisterAllRoutes wires the portal surface. Page routes sit at the
// root, list pages respond with JSON page data, form POSTs answer with a
// 303 self-redirect.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	dashboardHandler *dashboard.Handler,
	recordsHandler *records.Handler,
	userHandler *user.Handler,
	backupHandler *backup.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
	})

	router.Post(auth.LoginPath, authHandler.Login)
	router.Get(auth.UnauthorizedPath, unauthorizedHandler)

	router.Group(func(pr chi.Router) {
		pr.Use(authHandler.RequireAuth)

		pr.Post("/logout", authHandler.Logout)
		pr.Get("/me", authHandler.Me)
		pr.Get(auth.DashboardPath, dashboardHandler.Page)

		pr.Post("/settings/password", userHandler.ChangePassword)

		pr.Group(func(vr chi.Router) {
			vr.Use(authHandler.RequirePermission(auth.PermissionView))
			vr.Get("/students", recordsHandler.Students)
			vr.Get("/personnel", recordsHandler.Personnel)
			vr.Get("/forms", recordsHandler.Forms)
		})

		pr.Group(func(ur chi.Router) {
			ur.Use(authHandler.RequirePermission(auth.PermissionUpload))
			ur.Post("/students", recordsHandler.StudentsAction)
			ur.Post("/personnel", recordsHandler.PersonnelAction)
			ur.Post("/forms", recordsHandler.FormsAction)
		})

		pr.Group(func(mr chi.Router) {
			mr.Use(authHandler.RequirePermission(auth.PermissionManageUsers))
			mr.Get("/users", userHandler.List)
			mr.Post("/users", userHandler.Action)
		})

		pr.Group(func(br chi.Router) {
			br.Use(authHandler.RequirePermission(auth.PermissionBackup))
			br.Get("/backup", backupHandler.Page)
			br.Post("/backup", backupHandler.Action)
		})
	})
}

func unauthorizedHandler(w http.ResponseWriter, r *http.Request) {
	appErr := internal.NewForbiddenError("You do not have permission to access this page.", internal.ErrCodePermissionDenied)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(map[string]any{"error": appErr})
}
