package workers

import (
	"context"
	"log/slog"

	"compezze/contexts/contest-live/session-orchestrator/ports"
)

// FinishedStageSource lists stages whose contest has finished. Their live
// tallies are dead weight once reconciliation has run.
type FinishedStageSource interface {
	ListFinishedStageIDs(ctx context.Context) ([]int64, error)
}

// TallySweeper drops leftover stage tallies for finished contests. The
// in-band cleanup after each stage is best-effort, so a crashed process or an
// unreachable store can leave keys behind; the sweeper picks them up.
type TallySweeper struct {
	Stages  FinishedStageSource
	Janitor ports.StageJanitor
	Logger  *slog.Logger
}

func (s TallySweeper) RunOnce(ctx context.Context) error {
	stageIDs, err := s.Stages.ListFinishedStageIDs(ctx)
	if err != nil {
		return err
	}

	dropped := 0
	for _, stageID := range stageIDs {
		if err := s.Janitor.DropStage(ctx, stageID); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("stage tally sweep failed",
					"event", "tally_sweep_drop_failed",
					"module", "contest-live/session-orchestrator",
					"layer", "worker",
					"stage_id", stageID,
					"error", err.Error(),
				)
			}
			continue
		}
		dropped++
	}

	if dropped > 0 && s.Logger != nil {
		s.Logger.Info("stage tallies swept",
			"event", "tally_sweep_completed",
			"module", "contest-live/session-orchestrator",
			"layer", "worker",
			"dropped", dropped,
		)
	}
	return nil
}
