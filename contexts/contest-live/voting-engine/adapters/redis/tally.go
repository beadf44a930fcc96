// Package redisadapter keeps the per-stage vote tallies in Redis sorted sets.
// One set per stage, member = submission id, score = accumulated raw votes.
package redisadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gomodule/redigo/redis"

	"compezze/contexts/contest-live/voting-engine/ports"
)

type TallyStore struct {
	pool   *redis.Pool
	logger *slog.Logger
}

func NewTallyStore(pool *redis.Pool, logger *slog.Logger) *TallyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TallyStore{pool: pool, logger: logger}
}

func stageKey(stageID int64) string {
	return fmt.Sprintf("contest:stage:%d:scores", stageID)
}

func (s *TallyStore) Increment(ctx context.Context, stageID int64, submissionID string, score float64) (float64, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return 0, s.logError("voting_tally_connection_failed", err, "stage_id", stageID)
	}
	defer conn.Close()

	total, err := redis.Float64(redis.DoContext(conn, ctx, "ZINCRBY", stageKey(stageID), score, submissionID))
	if err != nil {
		return 0, s.logError("voting_tally_incr_failed", err,
			"stage_id", stageID,
			"submission_id", submissionID,
		)
	}
	return total, nil
}

func (s *TallyStore) ReadAll(ctx context.Context, stageID int64) ([]ports.SubmissionTotal, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, s.logError("voting_tally_connection_failed", err, "stage_id", stageID)
	}
	defer conn.Close()

	values, err := redis.Values(redis.DoContext(conn, ctx, "ZRANGE", stageKey(stageID), 0, -1, "REV", "WITHSCORES"))
	if err != nil {
		return nil, s.logError("voting_tally_read_failed", err, "stage_id", stageID)
	}

	totals := make([]ports.SubmissionTotal, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		member, err := redis.String(values[i], nil)
		if err != nil {
			return nil, s.logError("voting_tally_decode_failed", err, "stage_id", stageID)
		}
		score, err := redis.Float64(values[i+1], nil)
		if err != nil {
			return nil, s.logError("voting_tally_decode_failed", err, "stage_id", stageID)
		}
		totals = append(totals, ports.SubmissionTotal{SubmissionID: member, Total: score})
	}
	return totals, nil
}

// DropStage removes a stage's tally set once the stage has been reconciled.
func (s *TallyStore) DropStage(ctx context.Context, stageID int64) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return s.logError("voting_tally_connection_failed", err, "stage_id", stageID)
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "DEL", stageKey(stageID)); err != nil {
		return s.logError("voting_tally_drop_failed", err, "stage_id", stageID)
	}
	return nil
}

func (s *TallyStore) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-live/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("vote tally operation failed", fields...)
	return err
}

var _ ports.TallyStore = (*TallyStore)(nil)
