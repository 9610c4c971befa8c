package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiznix-service/internal/app"
	"quiznix-service/internal/config"
	filestore "quiznix-service/internal/infra/file"
	"quiznix-service/internal/infra/memory"
	pgbank "quiznix-service/internal/infra/postgres"
	redisstore "quiznix-service/internal/infra/redis"
	"quiznix-service/internal/infra/smtp"
	"quiznix-service/internal/otp"
	"quiznix-service/internal/questionbank"
	transport "quiznix-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	continuityTTL := config.TTLDuration(cfg.Quiz.ContinuityTTL, 30*24*time.Hour)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var stats app.StatsRepository = filestore.NewStatsStore(filepath.Join(dataDir, "user_stats.json"))
	var continuity app.ContinuityRepository = filestore.NewContinuityStore(filepath.Join(dataDir, "user_session.json"))
	if redisClient != nil {
		stats = redisstore.NewStatsStore(redisClient)
		continuity = redisstore.NewContinuityStore(redisClient, continuityTTL)
	}
	leaderboard := filestore.NewLeaderboardStore(filepath.Join(dataDir, "leaderboard.json"))
	suggestions := filestore.NewSuggestionStore(filepath.Join(dataDir, "suggestions.json"))

	quizdata := cfg.Data.Quizdata
	if quizdata == "" {
		quizdata = "quizdata"
	}
	var bank memory.Bank = questionbank.NewFileLoader(quizdata)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bank = pgbank.NewBankLoader(pool)
	}
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	cachedBank := memory.NewBankCache(bank, cacheTTL)

	var deliverer otp.Deliverer = logDeliverer{}
	if cfg.SMTP.Host != "" {
		deliverer = smtp.NewMailer(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	service := app.NewService(app.Deps{
		Stats:       stats,
		Leaderboard: leaderboard,
		Suggestions: suggestions,
		Continuity:  continuity,
		Bank:        cachedBank,
		Deliverer:   deliverer,
	}, app.Options{
		ContinuityTTL:   continuityTTL,
		QuestionTimeout: config.TTLDuration(cfg.Quiz.QuestionTimeout, 0),
	})
	wsHandler := transport.NewSessionHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiznix service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logDeliverer prints codes to the log when no SMTP host is configured.
type logDeliverer struct{}

func (logDeliverer) Deliver(_ context.Context, email, code string) error {
	log.Printf("otp for %s: %s", email, code)
	return nil
}
