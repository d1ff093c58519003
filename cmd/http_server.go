package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/atokschool/archiving-portal/internal"
	"github.com/atokschool/archiving-portal/internal/activity"
	activitydb "github.com/atokschool/archiving-portal/internal/activity/postgres"
	"github.com/atokschool/archiving-portal/internal/auth"
	authdb "github.com/atokschool/archiving-portal/internal/auth/postgres"
	"github.com/atokschool/archiving-portal/internal/backup"
	backupdb "github.com/atokschool/archiving-portal/internal/backup/postgres"
	"github.com/atokschool/archiving-portal/internal/dashboard"
	dashboarddb "github.com/atokschool/archiving-portal/internal/dashboard/postgres"
	"github.com/atokschool/archiving-portal/internal/records"
	recordsdb "github.com/atokschool/archiving-portal/internal/records/postgres"
	"github.com/atokschool/archiving-portal/internal/storage"
	"github.com/atokschool/archiving-portal/internal/transport/rest"
	"github.com/atokschool/archiving-portal/internal/user"
	userdb "github.com/atokschool/archiving-portal/internal/user/postgres"
	"github.com/atokschool/archiving-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server for the archiving portal`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// sessionSweepInterval controls how often expired sessions are evicted.
const sessionSweepInterval = 10 * time.Minute

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Sessions *auth.SessionStore
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sweepDone := make(chan struct{})
	go sweepSessions(deps.Sessions, deps.Logger, sweepDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		close(sweepDone)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func sweepSessions(sessions *auth.SessionStore, lg *slog.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := sessions.Sweep(); evicted > 0 {
				lg.Debug("evicted expired sessions", "count", evicted)
			}
		case <-done:
			return
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.App.Env, config.Logging.Level)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	sessions := auth.NewSessionStore(config.Security.SessionTimeout)

	activityService := activity.NewService(activitydb.NewActivityRepository(gormDB), lg)
	authService := auth.NewService(authdb.NewRepository(gormDB), sessions, activityService, lg)
	authHandler := auth.NewHandler(authService, config.Security.CookieName())

	store := storage.NewLocalStore(config.Storage.UploadPath, config.Storage.MaxFileSize, config.Storage.AllowedExtensions)

	recordsService := records.NewService(recordsdb.NewRecordRepository(gormDB), store, activityService, lg)
	recordsHandler := records.NewHandler(recordsService, sessions)

	userService := user.NewService(userdb.NewUserRepository(gormDB), activityService, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService, sessions)

	backupService := backup.NewService(backupdb.NewBackupRepository(gormDB), config.Storage.UploadPath, config.Storage.BackupPath, activityService, lg)
	backupHandler := backup.NewHandler(backupService, sessions)

	dashboardService := dashboard.NewService(dashboarddb.NewDashboardRepository(db), activityService, lg)
	dashboardHandler := dashboard.NewHandler(dashboardService, sessions)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, dashboardHandler, recordsHandler, userHandler, backupHandler, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   router,
		Sessions: sessions,
		Logger:   lg,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
