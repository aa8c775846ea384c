package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wichananm65/user-registry/internal/config"
	"github.com/wichananm65/user-registry/internal/database"
	"github.com/wichananm65/user-registry/internal/health"
	"github.com/wichananm65/user-registry/internal/logging"
	"github.com/wichananm65/user-registry/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	userService := user.NewService(repo, user.NewValidator(cfg.MinAgeForRegistration))
	userHandler := user.NewHandler(userService)

	var check health.Checker
	if db != nil {
		check = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logging.Middleware(logger))
	setupCORS(app, cfg.CORSAllowedOrigins)

	health.NewHandler(check).RegisterRoutes(app)
	userHandler.RegisterRoutes(app, writeLimiter(cfg.RateLimitRPM)...)

	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Addr),
			zap.String("storage", cfg.Storage),
			zap.Int("min_age_for_registration", cfg.MinAgeForRegistration),
		)
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func openRepository(ctx context.Context, cfg config.Config) (user.Repository, *sql.DB, error) {
	if cfg.Storage == config.StorageMemory {
		return user.NewInMemoryRepository(nil), nil, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	repo := user.NewPostgresRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

// writeLimiter caps write requests per client IP; zero disables it.
func writeLimiter(rpm int) []fiber.Handler {
	if rpm == 0 {
		return nil
	}
	return []fiber.Handler{limiter.New(limiter.Config{
		Max:        rpm,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests")
		},
	})}
}
