package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/core/services"
	"github.com/koboledger/kobo/internal/handlers"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/koboledger/kobo/internal/notify"
	pgsqlrepo "github.com/koboledger/kobo/internal/repositories/database/pgsql"
	"github.com/koboledger/kobo/pkg/config"
	"github.com/koboledger/kobo/pkg/database"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Kobo Core Ledger API
// @version 1.0
// @description Multi-tenant double-entry ledger core for microfinance branches.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Vendor pool carries companies, branches and users. Client pool
	// carries everything a branch posts against.
	vendorPool, err := database.NewPgxPool(ctx, cfg.VendorDatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize vendor database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vendorPool.Close()

	clientPool, err := database.NewPgxPool(ctx, cfg.ClientDatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize client database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer clientPool.Close()
	logger.Info("Database connection pools established.")

	if err := runMigrations(logger, cfg.VendorDatabaseURL, cfg.MigrationsDir+"/vendor"); err != nil {
		logger.Error("Vendor migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := runMigrations(logger, cfg.ClientDatabaseURL, cfg.MigrationsDir+"/client"); err != nil {
		logger.Error("Client migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Notifications go to the broker when one is configured, otherwise to
	// the log.
	var notifier portssvc.Notifier
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.NotifyExchange, logger)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	repos := pgsqlrepo.NewRepositoryProvider(vendorPool, clientPool)
	serviceContainer := services.NewServiceContainer(cfg, repos, notifier)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rateLimit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server exited.")
}

// runMigrations applies all pending up migrations from sourceURL against the
// given database. Uses a throwaway database/sql connection so the pgx pools
// stay untouched.
func runMigrations(logger *slog.Logger, databaseURL, sourceURL string) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.", slog.String("source", sourceURL))
	} else {
		logger.Info("Database migrations applied.", slog.String("source", sourceURL))
	}
	return nil
}
