package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/library/docs"
	"github.com/fkhayef/library/internal/account"
	"github.com/fkhayef/library/internal/borrow"
	"github.com/fkhayef/library/internal/card"
	"github.com/fkhayef/library/internal/config"
	"github.com/fkhayef/library/internal/database"
	"github.com/fkhayef/library/internal/deposit"
	"github.com/fkhayef/library/internal/fine"
	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/internal/notification"
	"github.com/fkhayef/library/internal/setting"
	mw "github.com/fkhayef/library/pkg/middleware"
	"github.com/fkhayef/library/pkg/response"
)

// @title          Library Finance API
// @version        1.0
// @description    Overdue fines, fine payments and reader deposits for the library desk.
// @BasePath       /api/v1
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("Connected to database successfully")

	// Lookups shared by the ledgers
	accountService := account.NewService(account.NewRepository(db))
	cardRepo := card.NewRepository(db)
	borrowRepo := borrow.NewRepository(db)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db), cardRepo)
	notificationHandler := notification.NewHandler(notificationService, log)

	// Settings feature
	settingService := setting.NewService(setting.NewRepository(db), cfg.FineRatePercent, log)
	settingHandler := setting.NewHandler(settingService, log)

	// Fine feature
	fineRepo := fine.NewRepository(db)
	fineService := fine.NewService(fineRepo, borrowRepo, accountService, settingService,
		fine.WithLogger(log.With().Str("component", "fines").Logger()),
		fine.WithNotifier(notificationService),
	)
	fineHandler := fine.NewHandler(fineService, log)

	// Deposit feature
	depositService := deposit.NewService(deposit.NewRepository(db), cardRepo, borrowRepo, fineRepo, accountService,
		deposit.WithLogger(log.With().Str("component", "deposits").Logger()),
		deposit.WithNotifier(notificationService),
	)
	depositHandler := deposit.NewHandler(depositService, log)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	deposit.NewReconciler(depositService, cfg.ReconcileInterval, log.With().Str("component", "reconciler").Logger()).Start(workerCtx)

	auth := mw.AuthMiddleware([]byte(cfg.JWTSecret))
	if cfg.AuthMode == "dev" {
		log.Warn().Msg("AUTH_MODE=dev: identity is taken from X-Test-User-ID and X-Test-Role headers")
		auth = mw.TestUserMiddleware
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(db))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	docs.SwaggerInfo.BasePath = "/api/v1"

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth)

		// Mount feature routers
		r.Mount("/fines", fineHandler.Routes())
		r.Mount("/deposits", depositHandler.Routes())
		r.Mount("/settings", settingHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func healthHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
