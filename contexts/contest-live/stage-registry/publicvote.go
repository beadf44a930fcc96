package stageregistry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// PublicVoteStrategy backs audience rounds. Every audience vote counts one
// point before weighting regardless of any score the caller sends.
type PublicVoteStrategy struct {
	Stages      ports.StageStore
	Submissions ports.SubmissionOwners
	Tally       ports.TallyReader
	Votes       ports.StageVoteReader
	Logger      *slog.Logger
}

func (PublicVoteStrategy) Type() entities.StageType { return entities.StageTypePublicVote }

func (PublicVoteStrategy) Validate(req CreateStageRequest) error {
	if req.PublicVote == nil {
		return ErrStrategyMismatch
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: stage name is required", ErrInvalidSettings)
	}
	if req.PublicVote.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
	}
	return nil
}

func (s PublicVoteStrategy) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	if err := s.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	settings := *req.PublicVote
	// Audience votes are flat; the effective per-vote score is always 1.
	settings.MaxScore = 1
	return entities.Stage{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: req.DurationMinutes,
		Type:            entities.StageTypePublicVote,
		PublicVote:      &settings,
	}, nil
}

func (PublicVoteStrategy) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	if stage.PublicVote == nil {
		return ErrStrategyMismatch
	}
	applyCommonPatch(req, stage)
	patch := req.PublicVote
	if patch == nil {
		return nil
	}
	if patch.Weight != nil {
		if *patch.Weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
		}
		stage.PublicVote.Weight = *patch.Weight
	}
	return nil
}

func (s PublicVoteStrategy) RunStage(ctx context.Context, stageID int64) (StageSettings, error) {
	stage, err := s.Stages.GetStage(ctx, stageID)
	if err != nil {
		return StageSettings{}, err
	}
	if stage.PublicVote == nil {
		return StageSettings{}, ErrStrategyMismatch
	}
	return s.Settings(stage), nil
}

func (PublicVoteStrategy) Settings(stage entities.Stage) StageSettings {
	settings := StageSettings{
		StageID:  stage.StageID,
		Type:     entities.StageTypePublicVote,
		Duration: stage.DurationMinutes,
	}
	if stage.PublicVote != nil {
		settings.Weight = stage.PublicVote.Weight
		settings.MaxScore = 1
	}
	return settings
}

func (s PublicVoteStrategy) FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error) {
	if stage.PublicVote == nil {
		return nil, ErrStrategyMismatch
	}
	return reconcileVoteStage(ctx, stage, stage.PublicVote.Weight, s.Tally, s.Votes, s.Submissions, s.Logger)
}
