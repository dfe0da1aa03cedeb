package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"health-checkin-service/internal/app"
	"health-checkin-service/internal/config"
	"health-checkin-service/internal/generate"
	"health-checkin-service/internal/infra/memory"
	pgstore "health-checkin-service/internal/infra/postgres"
	redisstore "health-checkin-service/internal/infra/redis"
	"health-checkin-service/internal/platform/logger"
	"health-checkin-service/internal/questions"
	"health-checkin-service/internal/risk"
	transport "health-checkin-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the check-in server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	bank, err := questions.New()
	if err != nil {
		return err
	}

	var (
		setRepo    app.QuestionSetRepository
		subRepo    app.SubmissionRepository
		statsStore app.StatsStore
	)
	if pool != nil {
		setRepo = pgstore.NewQuestionSetRepository(pool)
		subRepo = pgstore.NewSubmissionRepository(pool)
		statsStore = pgstore.NewStatsStore(pool)
	} else {
		log.Warn("postgres not configured, using in-memory storage")
		setRepo = memory.NewQuestionSetRepository()
		subRepo = memory.NewSubmissionRepository()
		statsStore = memory.NewStatsStore()
	}

	registry := app.NewRegistry()
	defer registry.Close()

	service := app.NewCheckinService(setRepo, subRepo, bank, log).WithRegistry(registry)

	if cfg.Groq.APIKey != "" {
		opts := []generate.Option{}
		if cfg.Groq.BaseURL != "" {
			opts = append(opts, generate.WithBaseURL(cfg.Groq.BaseURL))
		}
		if cfg.Groq.Model != "" {
			opts = append(opts, generate.WithModel(cfg.Groq.Model))
		}
		if d := config.TTLDuration(cfg.Groq.Timeout, 0); d > 0 {
			opts = append(opts, generate.WithTimeout(d))
		}
		service = service.WithGenerator(generate.NewClient(cfg.Groq.APIKey, log, opts...))
	}

	var rewards *app.RewardService
	if redisClient != nil {
		rewards = app.NewRewardService(statsStore, redisstore.NewLeaderboard(redisClient), log)
		service = service.WithRewards(rewards)
	} else {
		log.Warn("redis not configured, gamification disabled")
	}

	handler := transport.NewHandler(service, log).
		WithRiskModel(risk.NewPredictor()).
		WithDemo(cfg.Server.Demo)
	if rewards != nil {
		handler = handler.WithRewards(rewards)
	}
	wsHandler := transport.NewWSHandler(registry, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting check-in service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
