package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/config"
	"quiz-trainer/internal/infra/file"
	"quiz-trainer/internal/infra/memory"
	pgstore "quiz-trainer/internal/infra/postgres"
	redisstore "quiz-trainer/internal/infra/redis"
	"quiz-trainer/internal/infra/sqlite"
)

// runtime bundles the collaborators selected by configuration.
type runtime struct {
	cfg       config.Config
	logger    *slog.Logger
	questions app.QuestionRepository
	sessions  app.SessionRepository
	stats     app.StatisticsStore
	profiles  app.ProfileStore
	closers   []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func (r *runtime) practice() *app.PracticeService {
	return app.NewPracticeService(r.sessions, r.questions, r.stats, r.logger)
}

func loadRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		cfg.Session.Seed = seed
	}

	rt := &runtime{cfg: cfg, logger: newLogger(cfg)}
	store, err := rt.questionStore(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rand := app.NewRandSource(cfg.Session.Seed)
	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		rt.questions = redisstore.NewQuestionRepository(client, store, bankTTL)
		rt.sessions = redisstore.NewSessionStore(client, redisTTL, rand)
		rt.stats = redisstore.NewStatisticsStore(client)
	} else {
		rt.questions = memory.NewQuestionRepository(store, bankTTL)
		rt.sessions = memory.NewSessionStore(rand)
		rt.stats = file.NewStatisticsStore(cfg.Storage.Statistics)
	}
	rt.profiles = file.NewProfileStore(cfg.Storage.Profiles)
	return rt, nil
}

func (r *runtime) questionStore(ctx context.Context) (app.QuestionStore, error) {
	switch r.cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(r.cfg.Storage.SQLite)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		r.closers = append(r.closers, func() { _ = store.Close() })
		return store, nil
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, r.cfg, r.logger); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, r.cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		r.closers = append(r.closers, pool.Close)
		return pgstore.NewQuestionStore(pool), nil
	default:
		return file.NewQuestionStore(r.cfg.Storage.Questions), nil
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
