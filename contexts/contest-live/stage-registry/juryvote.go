package stageregistry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// JuryVoteStrategy backs stages scored by jurors on a bounded scale.
type JuryVoteStrategy struct {
	Stages      ports.StageStore
	Submissions ports.SubmissionOwners
	Tally       ports.TallyReader
	Votes       ports.StageVoteReader
	Logger      *slog.Logger
}

func (JuryVoteStrategy) Type() entities.StageType { return entities.StageTypeJuryVote }

func (JuryVoteStrategy) Validate(req CreateStageRequest) error {
	if req.JuryVote == nil {
		return ErrStrategyMismatch
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: stage name is required", ErrInvalidSettings)
	}
	if req.JuryVote.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
	}
	if req.JuryVote.MaxScore < 1 {
		return fmt.Errorf("%w: max score must be at least 1", ErrInvalidSettings)
	}
	switch req.JuryVote.RevealMode {
	case entities.JuryRevealImmediate, entities.JuryRevealDeferred:
	default:
		return fmt.Errorf("%w: unknown reveal mode %q", ErrInvalidSettings, req.JuryVote.RevealMode)
	}
	return nil
}

func (s JuryVoteStrategy) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	if err := s.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	settings := *req.JuryVote
	return entities.Stage{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: req.DurationMinutes,
		Type:            entities.StageTypeJuryVote,
		JuryVote:        &settings,
	}, nil
}

func (JuryVoteStrategy) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	if stage.JuryVote == nil {
		return ErrStrategyMismatch
	}
	applyCommonPatch(req, stage)
	patch := req.JuryVote
	if patch == nil {
		return nil
	}
	if patch.Weight != nil {
		if *patch.Weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
		}
		stage.JuryVote.Weight = *patch.Weight
	}
	if patch.MaxScore != nil {
		if *patch.MaxScore < 1 {
			return fmt.Errorf("%w: max score must be at least 1", ErrInvalidSettings)
		}
		stage.JuryVote.MaxScore = *patch.MaxScore
	}
	if patch.RevealMode != nil {
		switch *patch.RevealMode {
		case entities.JuryRevealImmediate, entities.JuryRevealDeferred:
			stage.JuryVote.RevealMode = *patch.RevealMode
		default:
			return fmt.Errorf("%w: unknown reveal mode %q", ErrInvalidSettings, *patch.RevealMode)
		}
	}
	if patch.ShowJudgeNames != nil {
		stage.JuryVote.ShowJudgeNames = *patch.ShowJudgeNames
	}
	return nil
}

func (s JuryVoteStrategy) RunStage(ctx context.Context, stageID int64) (StageSettings, error) {
	stage, err := s.Stages.GetStage(ctx, stageID)
	if err != nil {
		return StageSettings{}, err
	}
	if stage.JuryVote == nil {
		return StageSettings{}, ErrStrategyMismatch
	}
	return s.Settings(stage), nil
}

func (JuryVoteStrategy) Settings(stage entities.Stage) StageSettings {
	settings := StageSettings{
		StageID:  stage.StageID,
		Type:     entities.StageTypeJuryVote,
		Duration: stage.DurationMinutes,
	}
	if stage.JuryVote != nil {
		settings.Weight = stage.JuryVote.Weight
		settings.MaxScore = stage.JuryVote.MaxScore
		settings.RevealMode = string(stage.JuryVote.RevealMode)
		settings.JudgeNames = stage.JuryVote.ShowJudgeNames
	}
	return settings
}

func (s JuryVoteStrategy) FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error) {
	if stage.JuryVote == nil {
		return nil, ErrStrategyMismatch
	}
	return reconcileVoteStage(ctx, stage, stage.JuryVote.Weight, s.Tally, s.Votes, s.Submissions, s.Logger)
}
