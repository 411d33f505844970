package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/ajudi46/expense-tracker-server/internal/adapters/cloud/crypt"
	fsadapter "github.com/ajudi46/expense-tracker-server/internal/adapters/cloud/firestore"
	"github.com/ajudi46/expense-tracker-server/internal/adapters/database/pgsql"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/core/services"
	"github.com/ajudi46/expense-tracker-server/internal/handlers"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/ajudi46/expense-tracker-server/pkg/config"
	"github.com/ajudi46/expense-tracker-server/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

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

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container, err := buildServices(ctx, cfg, dbPool)
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	syncLimiter, err := newSyncLimiter(cfg.RateLimitRate)
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, syncLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories, adapters and services into the container
// consumed by route registration.
func buildServices(ctx context.Context, cfg *config.AppConfig, dbPool *pgxpool.Pool) (*portssvc.ServiceContainer, error) {
	accountRepo := pgsql.NewAccountRepository(dbPool)
	txnRepo := pgsql.NewTransactionRepository(dbPool, accountRepo)
	categoryRepo := pgsql.NewCategoryRepository(dbPool)
	budgetRepo := pgsql.NewBudgetRepository(dbPool)
	userRepo := pgsql.NewUserRepository(dbPool)

	remoteStore, err := fsadapter.NewStore(ctx, cfg.FirestoreProjectID)
	if err != nil {
		return nil, err
	}
	codec := crypt.NewCodec(cfg.EncryptionSecret)

	budgetSvc := services.NewBudgetService(budgetRepo, txnRepo)
	return &portssvc.ServiceContainer{
		Account:     services.NewAccountService(accountRepo),
		Category:    services.NewCategoryService(categoryRepo),
		Budget:      budgetSvc,
		Ledger:      services.NewLedgerService(txnRepo, accountRepo, budgetSvc),
		User:        services.NewUserService(userRepo),
		Sync:        services.NewSyncService(accountRepo, txnRepo, categoryRepo, budgetRepo, userRepo, remoteStore, codec),
		Token:       services.NewTokenService(cfg),
		GoogleOAuth: services.NewGoogleOAuthService(cfg),
	}, nil
}

// newSyncLimiter builds an in-memory rate limiter from a formatted rate
// string such as "60-M".
func newSyncLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// runMigrations applies all pending schema migrations from the migrations
// directory using a temporary database/sql connection.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
