package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/config"
	"github.com/brightpath-labs/cbt-api/internal/database"
	"github.com/brightpath-labs/cbt-api/internal/events"
	"github.com/brightpath-labs/cbt-api/internal/handler"
	"github.com/brightpath-labs/cbt-api/internal/middleware"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
	"github.com/brightpath-labs/cbt-api/internal/router"
	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/pkg/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "cbt-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if err := db.AutoMigrate(
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.Assessment{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
		&models.Answer{},
		&models.CourseLayout{},
		&models.LessonProgress{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate schema")
	}

	schema, err := database.VerifySchema(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("schema verification failed")
	}
	if !schema.AnswerAuditEnabled {
		logger.Warn().Msg("answers table missing, per-question audit disabled")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
	}
	publisher := events.NewPublisher(natsConn, logger)

	var store service.AssetStore
	if cfg.CloudinaryCloudName != "" {
		cloudinaryStore, err := storage.New(storage.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		store = cloudinaryStore
	} else {
		logger.Warn().Msg("object storage not configured, signed asset urls disabled")
	}

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	graphRepo := repository.NewGraphRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	resolver := service.NewCorrectnessResolver(assessmentRepo, logger)
	assessmentService := service.NewAssessmentService(
		assessmentRepo, attemptRepo, answerRepo, resolver, publisher, validate,
		service.ScoringConfig{
			Policy:        cfg.ScoringPolicy,
			PassThreshold: cfg.PassThreshold,
			AuditAnswers:  schema.AnswerAuditEnabled,
		},
		logger,
	)
	courseService := service.NewCourseService(courseRepo, logger)
	graphService := service.NewGraphService(
		courseRepo, moduleRepo, lessonRepo, assessmentRepo, graphRepo, layoutRepo,
		cache, publisher, validate, cfg.LayoutCacheTTL, logger,
	)
	importService := service.NewImportService(
		courseRepo, moduleRepo, lessonRepo, assessmentRepo, publisher, logger,
	)
	assetService := service.NewAssetService(lessonRepo, store, cfg.SignedURLTTL, logger)
	progressService := service.NewProgressService(
		progressRepo, lessonRepo, moduleRepo, courseRepo, cache, cfg.ProgressCacheTTL, logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    600 << 20,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
	})

	router.Register(app, router.Dependencies{
		JWTSecret:        cfg.JWTSecret,
		SubmitRateLimit:  cfg.SubmitRateLimit,
		SubmitRateWindow: cfg.SubmitRateWindow,
		Health:           handler.NewHealthHandler(db, cache),
		Assessment:       handler.NewAssessmentHandler(assessmentService, logger),
		Course:           handler.NewCourseHandler(courseService, logger),
		Lesson:           handler.NewLessonHandler(assetService, logger),
		Progress:         handler.NewProgressHandler(progressService, logger),
		Graph:            handler.NewGraphHandler(graphService, logger),
		Import:           handler.NewImportHandler(importService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logger.Info().Str("address", cfg.HTTPAddress()).Msg("server started")

	waitForShutdown(app, natsConn, cache, logger)
}

func waitForShutdown(app *fiber.App, natsConn *nats.Conn, cache *redis.Client, logger zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if natsConn != nil {
		natsConn.Close()
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	logger.Info().Msg("stopped")
}
