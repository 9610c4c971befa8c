package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiznix-service/internal/app"
	"quiznix-service/internal/domain"
	"quiznix-service/internal/infra/memory"
	pgbank "quiznix-service/internal/infra/postgres"
	pgmigrations "quiznix-service/internal/infra/postgres/migrations"
	redisstore "quiznix-service/internal/infra/redis"
	"quiznix-service/internal/questionbank"
)

type captureDeliverer struct {
	code string
}

func (d *captureDeliverer) Deliver(_ context.Context, _ string, code string) error {
	d.code = code
	return nil
}

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCategory(t, ctx, pgURL, "science", sampleDocument())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	deliverer := &captureDeliverer{}
	leaderboard := memory.NewLeaderboardStore()
	service := app.NewService(app.Deps{
		Stats:       redisstore.NewStatsStore(redisClient),
		Leaderboard: leaderboard,
		Suggestions: memory.NewSuggestionStore(),
		Continuity:  redisstore.NewContinuityStore(redisClient, 30*24*time.Hour),
		Bank:        memory.NewBankCache(pgbank.NewBankLoader(pool), 5*time.Minute),
		Deliverer:   deliverer,
	}, app.Options{})

	sess := app.NewSession()
	if _, err := service.Resume(ctx, sess); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if sess.Stage() != domain.StageEmail {
		t.Fatalf("expected fresh session at email stage, got %s", sess.Stage())
	}

	if err := service.SubmitEmail(ctx, sess, "alice@example.com"); err != nil {
		t.Fatalf("submit email: %v", err)
	}
	if err := service.SubmitCode(ctx, sess, deliverer.code); err != nil {
		t.Fatalf("submit code: %v", err)
	}
	if err := service.SubmitName(ctx, sess, "Alice"); err != nil {
		t.Fatalf("submit name: %v", err)
	}

	cats, err := service.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 1 || cats[0] != "science" {
		t.Fatalf("expected [science], got %v", cats)
	}

	if err := service.ChooseCategory(ctx, sess, "science"); err != nil {
		t.Fatalf("choose category: %v", err)
	}
	if err := service.StartQuiz(ctx, sess, 5, domain.LangEnglish); err != nil {
		t.Fatalf("start quiz: %v", err)
	}

	var result *app.QuizResult
	for result == nil {
		q, ok := sess.CurrentQuestion()
		if !ok {
			t.Fatalf("expected a current question at index %d", sess.Index())
		}
		_, result, err = service.SubmitAnswer(ctx, sess, q.Answer)
		if err != nil {
			t.Fatalf("submit answer: %v", err)
		}
	}
	if result.Score != 5 || result.Total != 5 {
		t.Fatalf("expected 5/5, got %d/%d", result.Score, result.Total)
	}
	if !result.Stats.HasAchievement(domain.AchFirstQuiz) {
		t.Fatalf("expected first_quiz achievement, got %v", result.Stats.Achievements)
	}
	if entries := leaderboard.Entries(); len(entries) != 1 || entries[0].Name != "Alice" {
		t.Fatalf("expected Alice on the leaderboard, got %v", entries)
	}

	// A new session resumes straight to category selection from Redis.
	resumed := app.NewSession()
	ok, err := service.Resume(ctx, resumed)
	if err != nil {
		t.Fatalf("resume again: %v", err)
	}
	if !ok || resumed.Stage() != domain.StageCategory || resumed.Name() != "Alice" {
		t.Fatalf("expected resumed session for Alice at category, got ok=%v stage=%s name=%s", ok, resumed.Stage(), resumed.Name())
	}
	if resumed.Stats().QuizzesPlayed != 1 {
		t.Fatalf("expected persisted stats with one quiz, got %+v", resumed.Stats())
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiznix", "POSTGRES_PASSWORD": "quiznixpass", "POSTGRES_DB": "quiznixdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiznix:quiznixpass@%s:%s/quiznixdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCategory(t *testing.T, ctx context.Context, dsn, id string, doc questionbank.Document) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO categories (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, id, string(data)); err != nil {
		t.Fatalf("insert category: %v", err)
	}
}

func sampleDocument() questionbank.Document {
	doc := questionbank.Document{}
	for i := 0; i < 5; i++ {
		n := fmt.Sprintf("%d", i)
		doc.Questions = append(doc.Questions, questionbank.Record{
			Question: "question-" + n,
			Options:  []string{"answer-" + n, "decoy-a", "decoy-b", "decoy-c"},
			Answer:   "answer-" + n,
		})
	}
	return doc
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
