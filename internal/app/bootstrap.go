package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/cors"

	"guestbook/internal/config"
	"guestbook/internal/db"
	"guestbook/internal/guestbook"
	"guestbook/internal/observability"
	"guestbook/internal/web"
)

type Options struct {
	RunMigrations bool
	// Logger overrides the stdout logger built from LOG_LEVEL.
	Logger *observability.Logger
}

type Runtime struct {
	Handler http.Handler
	Config  config.Config
	Logger  *observability.Logger
	Close   func() error
}

func Build(ctx context.Context, options Options) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = observability.NewLoggerWithOutput(os.Stdout, cfg.LogLevel)
	}

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if options.RunMigrations {
		if err := db.Migrate(ctx, database, cfg.Database.Driver, logger); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	messageRepo := guestbook.NewRepository(database, cfg.Database.Driver)
	messageHandler := guestbook.NewHandler(messageRepo)
	postLimiter := guestbook.NewPostRateLimiter(cfg.PostRateLimit, cfg.PostRateWindow, cfg.TrustProxy)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages", messageHandler.ListMessages)
	mux.Handle("POST /api/messages", postLimiter.Middleware(http.HandlerFunc(messageHandler.AddMessage)))
	mux.HandleFunc("GET /health", healthHandler(database, cfg.Database.Driver, logger))
	mux.Handle("GET /", web.Handler())

	handler := observability.RequestLoggingMiddleware(logger, observability.RecoverMiddleware(logger, openCORS(mux)))

	return &Runtime{
		Handler: handler,
		Config:  cfg,
		Logger:  logger,
		Close: func() error {
			observability.FlushSentry()
			return database.Close()
		},
	}, nil
}

// openCORS lets any origin call the API, as the page may be served from a
// different host than the service. Credentials are not allowed, since
// browsers refuse them alongside a wildcard origin.
func openCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{observability.RequestIDHeader},
		MaxAge:         300,
	})(next)
}

// healthHandler reports whether the database answers a ping within two
// seconds.
func healthHandler(database *sql.DB, driver string, logger *observability.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		report := healthReport{Status: "ok", Driver: driver, Time: time.Now().UTC()}
		code := http.StatusOK
		if err := database.PingContext(ctx); err != nil {
			logger.Error("health_degraded", map[string]any{
				"request_id": observability.RequestID(r.Context()),
				"error":      err.Error(),
			})
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

type healthReport struct {
	Status string    `json:"status"`
	Driver string    `json:"driver"`
	Time   time.Time `json:"time"`
}
