package stageregistry

import (
	"context"
	"fmt"
	"strings"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// GenericStrategy backs untyped stages such as openings, breaks, and
// announcements. They carry no settings, no votes, and no score contribution.
type GenericStrategy struct {
	Stages ports.StageStore
}

func (GenericStrategy) Type() entities.StageType { return entities.StageTypeGeneric }

func (GenericStrategy) Validate(req CreateStageRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: stage name is required", ErrInvalidSettings)
	}
	if req.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidSettings)
	}
	return nil
}

func (s GenericStrategy) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	if err := s.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	return entities.Stage{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: req.DurationMinutes,
		Type:            entities.StageTypeGeneric,
	}, nil
}

func (GenericStrategy) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	applyCommonPatch(req, stage)
	return nil
}

func (s GenericStrategy) RunStage(ctx context.Context, stageID int64) (StageSettings, error) {
	stage, err := s.Stages.GetStage(ctx, stageID)
	if err != nil {
		return StageSettings{}, err
	}
	return s.Settings(stage), nil
}

func (GenericStrategy) Settings(stage entities.Stage) StageSettings {
	return StageSettings{
		StageID:  stage.StageID,
		Type:     entities.StageTypeGeneric,
		Duration: stage.DurationMinutes,
	}
}

func (GenericStrategy) FinishStage(context.Context, entities.Stage) (map[string]float64, error) {
	return map[string]float64{}, nil
}

// applyCommonPatch covers the fields shared by every stage type.
func applyCommonPatch(req UpdateStageRequest, stage *entities.Stage) {
	if req.Name != nil {
		stage.Name = strings.TrimSpace(*req.Name)
	}
	if req.DurationMinutes != nil {
		stage.DurationMinutes = *req.DurationMinutes
	}
}
