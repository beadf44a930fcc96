package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	contestservice "compezze/contexts/contest-live/contest-service"
	contestpostgres "compezze/contexts/contest-live/contest-service/adapters/postgres"
	sessionorchestrator "compezze/contexts/contest-live/session-orchestrator"
	sessionpostgres "compezze/contexts/contest-live/session-orchestrator/adapters/postgres"
	sessionworkers "compezze/contexts/contest-live/session-orchestrator/application/workers"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	"compezze/contexts/contest-live/stage-registry/adapters/remotehttp"
	stageports "compezze/contexts/contest-live/stage-registry/ports"
	votingengine "compezze/contexts/contest-live/voting-engine"
	votingpostgres "compezze/contexts/contest-live/voting-engine/adapters/postgres"
	votingredis "compezze/contexts/contest-live/voting-engine/adapters/redis"
	"compezze/internal/platform/config"
	"compezze/internal/platform/db"
	"compezze/internal/platform/httpserver"
	"compezze/internal/platform/messaging"
	redisplatform "compezze/internal/platform/redis"

	"github.com/gomodule/redigo/redis"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redis.Pool
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *redis.Pool
	sweeper      sessionworkers.TallySweeper
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	redisPool, err := redisplatform.Connect(cfg.RedisAddr)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	hub := messaging.NewHub(logger)
	tally := votingredis.NewTallyStore(redisPool, logger)
	sessionRepo := sessionpostgres.NewRepository(pg.DB, logger)

	registry := stageregistry.NewRegistry(stageregistry.Dependencies{
		Stages:      sessionRepo,
		Submissions: sessionRepo,
		Tally:       stageTallyReader{store: tally},
		Votes:       sessionRepo,
		Quiz:        remotehttp.NewQuizClient(cfg.QuizServiceURL, cfg.RemoteRPCTimeout),
		Survey:      remotehttp.NewSurveyClient(cfg.SurveyServiceURL, cfg.RemoteRPCTimeout),
		Logger:      logger,
	})

	contestRepo := contestpostgres.NewRepository(pg.DB, logger)
	contestModule := contestservice.NewModule(contestservice.Dependencies{
		Contests:     contestRepo,
		Stages:       contestRepo,
		Participants: contestRepo,
		Submissions:  contestRepo,
		Registry:     registry,
		Sink:         hub,
		Clock:        contestpostgres.SystemClock{},
		IDGen:        contestpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	votingRepo := votingpostgres.NewRepository(pg.DB, logger)
	votingModule := votingengine.NewModule(votingengine.Dependencies{
		Votes:  votingRepo,
		Tally:  tally,
		Sink:   hub,
		Clock:  votingpostgres.SystemClock{},
		IDGen:  votingpostgres.UUIDGenerator{},
		Logger: logger,
	})

	sessionModule := sessionorchestrator.NewModule(sessionorchestrator.Dependencies{
		Rooms:    sessionRepo,
		Contests: sessionRepo,
		Scores:   sessionRepo,
		Registry: registry,
		Tx:       sessionRepo,
		Janitor:  tally,
		Sink:     hub,
		Clock:    sessionpostgres.SystemClock{},
		IDGen:    sessionpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	server := httpserver.New(contestModule, votingModule, sessionModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisPool,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	redisPool, err := redisplatform.Connect(cfg.RedisAddr)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		redis:    redisPool,
		sweeper: sessionworkers.TallySweeper{
			Stages:  sessionpostgres.NewRepository(pg.DB, logger),
			Janitor: votingredis.NewTallyStore(redisPool, logger),
			Logger:  logger,
		},
		pollInterval: cfg.TallySweepInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.sweeper.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// stageTallyReader adapts the voting engine's tally rows to the stage
// registry's reader type. The stores are identical in shape but live behind
// different module boundaries.
type stageTallyReader struct {
	store *votingredis.TallyStore
}

func (b stageTallyReader) ReadAll(ctx context.Context, stageID int64) ([]stageports.SubmissionTotal, error) {
	totals, err := b.store.ReadAll(ctx, stageID)
	if err != nil {
		return nil, err
	}
	out := make([]stageports.SubmissionTotal, 0, len(totals))
	for _, total := range totals {
		out = append(out, stageports.SubmissionTotal{
			SubmissionID: total.SubmissionID,
			Total:        total.Total,
		})
	}
	return out, nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
