package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"diagnostics-backend/internal/analytics"
	googleauth "diagnostics-backend/internal/auth"
	"diagnostics-backend/internal/flows"
	"diagnostics-backend/internal/notifications"
	"diagnostics-backend/internal/queue"
	"diagnostics-backend/internal/services/health"
	"diagnostics-backend/internal/sessions"
	"diagnostics-backend/internal/shared/config"
	"diagnostics-backend/internal/shared/server"
	"diagnostics-backend/internal/shared/storage/db"
	"diagnostics-backend/internal/shared/storage/object"
	localstore "diagnostics-backend/internal/shared/storage/object/local"
	s3store "diagnostics-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies wired for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	FlowsRepo         flows.Repo
	SessionsRepo      sessions.Repo
	NotificationsRepo notifications.Repo
	AnalyticsRepo     analytics.Repo

	FlowsService         *flows.Service
	SessionsService      *sessions.Service
	NotificationsService *notifications.Service
	AnalyticsService     *analytics.Service
	Dispatcher           *notifications.Dispatcher

	FlowHandler         *flows.Handler
	SessionHandler      *sessions.Handler
	NotificationHandler *notifications.Handler
	AnalyticsHandler    *analytics.Handler
	GoogleAuth          *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		FlowHandler:         app.FlowHandler,
		SessionHandler:      app.SessionHandler,
		NotificationHandler: app.NotificationHandler,
		AnalyticsHandler:    app.AnalyticsHandler,
		GoogleAuth:          app.GoogleAuth,
		Health:              health.NewService(app.DB),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return queue.NewMemoryClient(0), nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var flowsRepo flows.Repo
	var sessionsRepo sessions.Repo
	var notificationsRepo notifications.Repo
	var analyticsRepo analytics.Repo

	if app.DB != nil {
		flowsRepo = &flows.PGRepo{DB: app.DB}
		sessionsRepo = &sessions.PGRepo{DB: app.DB}
		notificationsRepo = &notifications.PGRepo{DB: app.DB}
		analyticsRepo = &analytics.PGRepo{DB: app.DB}
	} else {
		flowsRepo = flows.NewMemoryRepo()
		sessionsRepo = sessions.NewMemoryRepo()
		notificationsRepo = notifications.NewMemoryRepo()
		analyticsRepo = analytics.NewMemoryRepo()
	}

	flowsSvc := flows.NewService(flowsRepo)
	analyticsSvc := analytics.NewService(analyticsRepo)
	notificationsSvc := notifications.NewService(notificationsRepo, app.Queue)
	sessionsSvc := &sessions.Service{
		Repo:      sessionsRepo,
		Flows:     flowsRepo,
		Store:     app.Store,
		Analytics: analyticsSvc,
		Notifier:  notificationsSvc,
	}

	app.FlowsRepo = flowsRepo
	app.SessionsRepo = sessionsRepo
	app.NotificationsRepo = notificationsRepo
	app.AnalyticsRepo = analyticsRepo
	app.FlowsService = flowsSvc
	app.SessionsService = sessionsSvc
	app.NotificationsService = notificationsSvc
	app.AnalyticsService = analyticsSvc
	app.Dispatcher = notifications.NewDispatcher(notificationsSvc, nil)

	app.FlowHandler = flows.NewHandler(flowsSvc)
	app.SessionHandler = sessions.NewHandler(sessionsSvc)
	app.NotificationHandler = notifications.NewHandler(notificationsSvc)
	app.AnalyticsHandler = analytics.NewHandler(analyticsSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	return nil
}
