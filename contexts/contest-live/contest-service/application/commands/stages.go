package commands

import (
	"context"
	"log/slog"

	application "compezze/contexts/contest-live/contest-service/application"
	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
	stageregistry "compezze/contexts/contest-live/stage-registry"
)

// StageUseCase manages the stage line-up of a contest. All type-specific
// validation and settings handling is delegated to the stage registry; this
// use case owns positions, authorization, and the editability window.
type StageUseCase struct {
	Contests ports.ContestRepository
	Stages   ports.StageRepository
	Registry *stageregistry.Registry
	Clock    ports.Clock
	Logger   *slog.Logger
}

// AddStage appends a stage at the next dense position. The line-up is frozen
// once the contest went live.
func (uc StageUseCase) AddStage(ctx context.Context, contestID int64, actorUserID string, req stageregistry.CreateStageRequest) (entities.Stage, error) {
	contest, err := uc.editableContest(ctx, contestID, actorUserID)
	if err != nil {
		return entities.Stage{}, err
	}

	if err := uc.Registry.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	stage, err := uc.Registry.CreateStage(req)
	if err != nil {
		return entities.Stage{}, err
	}
	stage.ContestID = contestID
	stage.Position = len(contest.Stages) + 1

	stage, err = uc.Stages.AddStage(ctx, stage)
	if err != nil {
		return entities.Stage{}, err
	}
	application.ResolveLogger(uc.Logger).Info("stage added",
		"event", "contest_stage_added",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"stage_id", stage.StageID,
		"stage_type", string(stage.Type),
		"position", stage.Position,
	)
	return stage, nil
}

// UpdateStage applies a typed patch. The stage type is immutable; unset patch
// fields are no-ops.
func (uc StageUseCase) UpdateStage(
	ctx context.Context,
	contestID, stageID int64,
	actorUserID string,
	req stageregistry.UpdateStageRequest,
) (entities.Stage, error) {
	contest, err := uc.editableContest(ctx, contestID, actorUserID)
	if err != nil {
		return entities.Stage{}, err
	}
	stage, found := findStage(contest, stageID)
	if !found {
		return entities.Stage{}, domainerrors.ErrStageNotFound
	}

	if err := uc.Registry.UpdateStage(req, &stage); err != nil {
		return entities.Stage{}, err
	}
	if err := uc.Stages.UpdateStage(ctx, stage); err != nil {
		return entities.Stage{}, err
	}
	application.ResolveLogger(uc.Logger).Info("stage updated",
		"event", "contest_stage_updated",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"stage_id", stageID,
	)
	return stage, nil
}

// ReorderStages rewrites stage positions from the given order. The order must
// list every stage of the contest exactly once; partial reorders are rejected
// so positions stay a dense 1..N permutation.
func (uc StageUseCase) ReorderStages(ctx context.Context, contestID int64, actorUserID string, orderedStageIDs []int64) error {
	contest, err := uc.editableContest(ctx, contestID, actorUserID)
	if err != nil {
		return err
	}
	if len(orderedStageIDs) != len(contest.Stages) {
		return domainerrors.ErrStagePermutation
	}

	known := make(map[int64]bool, len(contest.Stages))
	for _, stage := range contest.Stages {
		known[stage.StageID] = true
	}
	positions := make(map[int64]int, len(orderedStageIDs))
	for i, stageID := range orderedStageIDs {
		if !known[stageID] {
			return domainerrors.ErrStagePermutation
		}
		if _, dup := positions[stageID]; dup {
			return domainerrors.ErrStagePermutation
		}
		positions[stageID] = i + 1
	}

	if err := uc.Stages.ReplacePositions(ctx, contestID, positions); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("stages reordered",
		"event", "contest_stages_reordered",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"stage_count", len(orderedStageIDs),
	)
	return nil
}

// editableContest loads the contest and enforces the edit window: only the
// organizer may change the line-up, and only before the contest goes live.
func (uc StageUseCase) editableContest(ctx context.Context, contestID int64, actorUserID string) (entities.Contest, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return entities.Contest{}, err
	}
	if !isOrganizer(contest, actorUserID) {
		return entities.Contest{}, domainerrors.ErrNotOrganizer
	}
	if contest.Status == entities.ContestStatusActive || contest.Status == entities.ContestStatusFinished {
		return entities.Contest{}, domainerrors.ErrContestNotEditable
	}
	return contest, nil
}

func findStage(contest entities.Contest, stageID int64) (entities.Stage, bool) {
	for _, stage := range contest.Stages {
		if stage.StageID == stageID {
			return stage, true
		}
	}
	return entities.Stage{}, false
}
