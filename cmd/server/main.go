package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/repurpose-api/configs"
	"github.com/maheshrc27/repurpose-api/internal/api/handlers"
	"github.com/maheshrc27/repurpose-api/internal/api/middleware"
	job "github.com/maheshrc27/repurpose-api/internal/jobs"
	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/queue"
	"github.com/maheshrc27/repurpose-api/internal/repository"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg := config.LoadConfig()
	setLogLevel(cfg.LogLevel)

	ctx := context.Background()

	var db *sql.DB
	var sessionRepo repository.SessionRepository
	if cfg.PostgresURI != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("database is unreachable")
		}
		if err := repository.MigrateSessions(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate sessions table")
		}
		sessionRepo = repository.NewSessionRepository(db)
	} else {
		log.Warn().Msg("POSTGRES_URI not set, sessions are kept in memory")
		sessionRepo = repository.NewMemorySessionRepository()
	}

	provider, err := llm.NewProvider(ctx, llm.ProviderConfig{
		Provider:      cfg.Model.Provider,
		GeminiAPIKey:  cfg.Model.GeminiAPIKey,
		GeminiModel:   cfg.Model.Orchestrate,
		OpenAIAPIKey:  cfg.Model.OpenAIAPIKey,
		OpenAIModel:   cfg.Model.OpenAIModel,
		OpenAIBaseURL: cfg.Model.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure model provider")
	}

	fetchClient := &http.Client{Timeout: cfg.Pipeline.FetchTimeout}
	readsURIs := provider.Generator.ReadsFileURIs()

	var videoResolver sources.Resolver
	if unconfigured, ok := provider.Files.(llm.Unconfigured); ok {
		videoResolver = sources.Unsupported{Err: unconfigured.Err}
	} else {
		downloader := sources.MediaDownloader{
			YouTube: sources.NewYouTubeDownloader(nil),
			Direct:  sources.NewHTTPDownloader(nil),
		}
		videoResolver = sources.NewVideoResolver(provider.Files, downloader, sources.VideoConfig{
			ScratchDir:   cfg.Pipeline.ScratchDir,
			PollInterval: cfg.Pipeline.VideoPollInterval,
			PollTimeout:  cfg.Pipeline.VideoPollTimeout,
		})
	}
	resolvers := sources.NewResolverSet(
		sources.NewTextResolver(fetchClient, cfg.Pipeline.TextMaxChars),
		sources.NewPDFResolver(readsURIs, fetchClient, cfg.Pipeline.ScratchDir, cfg.Pipeline.TextMaxChars),
		videoResolver,
	)

	orchestratorService := service.NewOrchestratorService(provider.Generator, resolvers, service.OrchestratorConfig{
		Model:       cfg.Model.Orchestrate,
		Mode:        cfg.Pipeline.Mode,
		VideoPolicy: cfg.Pipeline.VideoFailurePolicy,
		Concurrency: cfg.Pipeline.ResolveConcurrency,
	})
	socialService := service.NewSocialService(provider.Generator, cfg.Model.Social)
	textService := service.NewTextService(provider.Generator, cfg.Model.Text)
	videoService := service.NewVideoService(provider.Generator, videoResolver, cfg.Model.Video)

	sessionOpts := []service.SessionOption{}
	if cfg.R2.Enabled() {
		sessionOpts = append(sessionOpts, service.WithExporter(service.NewR2Service(cfg.R2)))
	}
	if cfg.YoutubeAPIKey != "" {
		enricher, err := service.NewYoutubeMetadataService(ctx, cfg.YoutubeAPIKey)
		if err != nil {
			log.Error().Err(err).Msg("youtube metadata enrichment disabled")
		} else {
			sessionOpts = append(sessionOpts, service.WithSourceEnricher(enricher))
		}
	}
	sessionService := service.NewSessionService(sessionRepo, orchestratorService, socialService, sessionOpts...)

	var enqueuer queue.Enqueuer = queue.Disabled{}
	var asynqServer *asynq.Server
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		enqueuer = queue.NewEnqueuer(client)

		queueW := queue.NewQueue(sessionService)
		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 4,
		})
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGenerateSession, queueW.HandleGenerateSessionTask)

		go func() {
			log.Info().Msg("starting the asynq server")
			if err := asynqServer.Run(mux); err != nil {
				log.Fatal().Err(err).Msg("could not start asynq server")
			}
		}()
	} else {
		log.Warn().Msg("REDIS_URI not set, background generation disabled")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/health", handlers.Health)

	authMiddleware := middleware.NewAuthMiddleware(cfg.SecretKey)
	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	handlers.RegisterRoutes(api,
		handlers.NewGenerateHandler(orchestratorService, socialService, textService, videoService),
		handlers.NewSessionHandler(sessionService, enqueuer),
	)

	// cron jobs
	sweepJob := job.NewScratchSweepJob(cfg.Pipeline.ScratchDir, cfg.Pipeline.ScratchMaxAge)
	c := cron.New()
	if err := c.AddFunc("@every 10m", sweepJob.Run); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule scratch sweep")
	}
	c.Start()
	defer c.Stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("provider", provider.Generator.Name()).Msg("server is running")

	gracefulShutdown(app, asynqServer, db)
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func closeDB(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
		return
	}
	log.Info().Msg("database connection closed")
}

func gracefulShutdown(app *fiber.App, asynqServer *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}
	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	closeDB(db)
	log.Info().Msg("server shutdown complete")
}
