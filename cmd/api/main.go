package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/config"
	"github.com/noah-isme/judging-admin-api/internal/database"
	"github.com/noah-isme/judging-admin-api/internal/handler"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/repository"
	"github.com/noah-isme/judging-admin-api/internal/router"
	"github.com/noah-isme/judging-admin-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "judging-admin-api",
		Usage: "contest judging administration API",
		Commands: []*cli.Command{
			serveCommand(logger),
			migrateCommand(logger),
			issueTokenCommand(logger),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func serveCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply schema migrations before serving", Value: true},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			if c.Bool("migrate") {
				if err := database.Migrate(db); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
			}

			redisClient := connectRedis(c.Context, cfg, logger)
			if redisClient != nil {
				defer redisClient.Close()
			}
			natsConn := connectNATS(cfg, logger)
			if natsConn != nil {
				defer natsConn.Drain()
			}

			server := buildServer(cfg, db, redisClient, natsConn, logger)

			go func() {
				if err := server.Listen(cfg.HTTPAddress()); err != nil {
					logger.Fatal().Err(err).Msg("failed to start server")
				}
			}()

			waitForShutdown(server, logger)
			return nil
		},
	}
}

func migrateCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database schema migrations",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info().Str("driver", cfg.DatabaseDriver).Msg("migrations applied")
			return nil
		},
	}
}

func issueTokenCommand(logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "issue-token",
		Usage: "mint a session token for an existing evaluator",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "evaluator-id", Required: true},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}

			evaluator, err := repository.NewEvaluatorRepository(db).GetByID(c.Context, c.Uint("evaluator-id"))
			if err != nil {
				return fmt.Errorf("failed to load evaluator: %w", err)
			}
			if evaluator.AccountLocked {
				return service.ErrAccountLocked
			}

			token, err := auth.Sign(cfg.JWTSecret, service.IdentityFromEvaluator(evaluator), cfg.JWTTTL, time.Now())
			if err != nil {
				return err
			}
			logger.Info().Uint("evaluator_id", evaluator.ID).Msg("token issued")
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func connectRedis(ctx context.Context, cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis url not configured, results cache disabled")
		return nil
	}
	client, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, results cache disabled")
		return nil
	}
	return client
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		logger.Warn().Msg("nats url not configured, judging events disabled")
		return nil
	}
	conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, judging events disabled")
		return nil
	}
	return conn
}

func buildServer(cfg config.Config, db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn, logger zerolog.Logger) *fiber.App {
	validate := validator.New(validator.WithRequiredStructEnabled())

	contestRepo := repository.NewContestRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	judgingRepo := repository.NewJudgingRepository(db)
	resultsRepo := repository.NewResultsRepository(db)
	contestantRepo := repository.NewContestantRepository(db)
	evaluatorRepo := repository.NewEvaluatorRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	events := service.NewEventPublisher(natsConn, cfg.EventSubject, logger)
	resultsService := service.NewResultsService(resultsRepo, contestRepo, redisClient, cfg.ResultsCacheTTL, logger)

	contestService := service.NewContestService(contestRepo, validate, activityService, logger)
	entryService := service.NewEntryService(entryRepo, contestRepo, groupRepo, resultsService, activityService, validate, logger)
	voteService := service.NewVoteService(voteRepo, entryRepo, contestRepo, resultsService, activityService, logger)
	judgingService := service.NewJudgingService(judgingRepo, entryRepo, evaluationRepo, evaluatorRepo, resultsService, events, activityService, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, entryRepo, resultsService, activityService, validate, logger)
	winnerService := service.NewWinnerService(entryRepo, resultsService, events, activityService, logger)
	contestantService := service.NewContestantService(contestantRepo, logger)
	taskService := service.NewTaskService(taskRepo, activityService, validate, cfg.StrictTaskOwnership, logger)
	messageService := service.NewMessageService(messageRepo, activityService, validate, logger)
	groupService := service.NewGroupService(groupRepo, activityService, validate, logger)
	evaluatorService := service.NewEvaluatorService(evaluatorRepo, activityService, validate, logger)
	authService := service.NewAuthService(evaluatorRepo, cfg.JWTSecret, cfg.JWTTTL, logger)

	judgingLimiter := middleware.RateLimit("judging", cfg.JudgingRateLimit, time.Minute)
	voteLimiter := middleware.RateLimit("votes", cfg.VoteRateLimit, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:     &logger,
		JWTSecret:  cfg.JWTSecret,
		CookieName: cfg.AuthCookieName,
		Sessions:   evaluatorRepo,
	})

	healthChecks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		healthChecks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	router.Register(app, cfg, router.Dependencies{
		ContestHandler:    handler.NewContestHandler(contestService, logger),
		EntryHandler:      handler.NewEntryHandler(entryService, voteService, voteLimiter, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		JudgingHandler:    handler.NewJudgingHandler(judgingService, judgingLimiter, logger),
		MessageHandler:    handler.NewMessageHandler(messageService, logger),
		TaskHandler:       handler.NewTaskHandler(taskService, logger),
		EvaluatorHandler:  handler.NewEvaluatorHandler(evaluatorService, logger),
		GroupHandler:      handler.NewGroupHandler(groupService, logger),
		WinnerHandler:     handler.NewWinnerHandler(winnerService, logger),
		ResultsHandler:    handler.NewResultsHandler(resultsService, logger),
		ContestantHandler: handler.NewContestantHandler(contestantService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		AuthHandler:       handler.NewAuthHandler(authService, cfg.AuthCookieName, cfg.AppEnv == "production", logger),
		HealthChecks:      healthChecks,
	})

	return app
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
