package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"voxroom/server/internal/config"
	"voxroom/server/internal/cron"
	"voxroom/server/internal/database"
	"voxroom/server/internal/handlers"
	"voxroom/server/internal/rooms"
	"voxroom/server/internal/routes"
	"voxroom/server/internal/session"
	"voxroom/server/internal/store"
	"voxroom/server/internal/utils"
	ws "voxroom/server/internal/websocket"
)

func main() {
	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Connect to Postgres and migrate
	if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("connected to PostgreSQL")

	pg := store.NewPostgres(database.Pool)

	// Redis hot message window (optional)
	var hot *store.Redis
	if cfg.RedisURL != "" {
		var err error
		hot, err = store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer hot.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Session manager, hub, and protocol service
	sessions := session.NewManager()
	hub := ws.NewHub(sessions, logger)
	go hub.Run()

	roomService := rooms.NewService(pg, hot, sessions, hub, logger)
	handlers.Init(pg, roomService, hub)

	// Housekeeping
	scheduler := cron.StartCronJobs(pg, cfg.EndedRoomRetentionDays, logger)
	defer scheduler.Stop()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Voxroom API v1.0",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting Voxroom server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server stopped")
}
