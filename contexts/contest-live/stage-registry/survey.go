package stageregistry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// SurveyStrategy backs survey stages hosted by the remote survey service.
// Surveys collect responses only; finishing one contributes no score.
type SurveyStrategy struct {
	Stages ports.StageStore
	Client ports.SurveyRoomClient
	Logger *slog.Logger
}

func (SurveyStrategy) Type() entities.StageType { return entities.StageTypeSurvey }

func (SurveyStrategy) Validate(req CreateStageRequest) error {
	if req.Survey == nil {
		return ErrStrategyMismatch
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: stage name is required", ErrInvalidSettings)
	}
	if req.Survey.SurveyFormID <= 0 {
		return fmt.Errorf("%w: survey form id is required", ErrInvalidSettings)
	}
	if req.Survey.MaxParticipants < 1 {
		return fmt.Errorf("%w: max participants must be at least 1", ErrInvalidSettings)
	}
	return nil
}

func (s SurveyStrategy) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	if err := s.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	settings := *req.Survey
	settings.ActiveRoomID = ""
	return entities.Stage{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: req.DurationMinutes,
		Type:            entities.StageTypeSurvey,
		Survey:          &settings,
	}, nil
}

func (SurveyStrategy) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	if stage.Survey == nil {
		return ErrStrategyMismatch
	}
	applyCommonPatch(req, stage)
	patch := req.Survey
	if patch == nil {
		return nil
	}
	if patch.SurveyFormID != nil {
		if *patch.SurveyFormID <= 0 {
			return fmt.Errorf("%w: survey form id is required", ErrInvalidSettings)
		}
		stage.Survey.SurveyFormID = *patch.SurveyFormID
	}
	if patch.MaxParticipants != nil {
		if *patch.MaxParticipants < 1 {
			return fmt.Errorf("%w: max participants must be at least 1", ErrInvalidSettings)
		}
		stage.Survey.MaxParticipants = *patch.MaxParticipants
	}
	if patch.DurationMinutes != nil {
		stage.Survey.DurationMinutes = *patch.DurationMinutes
	}
	return nil
}

func (s SurveyStrategy) RunStage(ctx context.Context, stageID int64) (StageSettings, error) {
	stage, err := s.Stages.GetStage(ctx, stageID)
	if err != nil {
		return StageSettings{}, err
	}
	if stage.Survey == nil {
		return StageSettings{}, ErrStrategyMismatch
	}
	if stage.Survey.ActiveRoomID != "" {
		return s.Settings(stage), nil
	}

	resp, err := s.Client.CreateRoom(ctx, ports.CreateSurveyRoomRequest{
		SurveyFormID:    stage.Survey.SurveyFormID,
		MaxParticipants: stage.Survey.MaxParticipants,
		DurationMinutes: stage.Survey.DurationMinutes,
		Private:         true,
	})
	if err != nil {
		return StageSettings{}, fmt.Errorf("%w: create survey room: %v", ErrUpstream, err)
	}

	stage.Survey.ActiveRoomID = resp.RoomID
	if err := s.Stages.SaveStage(ctx, stage); err != nil {
		return StageSettings{}, err
	}
	s.Logger.Info("remote survey room created",
		"event", "survey_room_created",
		"module", "contest-live/stage-registry",
		"layer", "application",
		"stage_id", stage.StageID,
		"remote_room_id", resp.RoomID,
	)
	return s.Settings(stage), nil
}

func (SurveyStrategy) Settings(stage entities.Stage) StageSettings {
	settings := StageSettings{
		StageID:  stage.StageID,
		Type:     entities.StageTypeSurvey,
		Duration: stage.DurationMinutes,
	}
	if stage.Survey != nil {
		settings.FormID = stage.Survey.SurveyFormID
		settings.Participants = stage.Survey.MaxParticipants
		if stage.Survey.DurationMinutes > 0 {
			settings.Duration = stage.Survey.DurationMinutes
		}
		settings.RemoteRoomID = stage.Survey.ActiveRoomID
	}
	return settings
}

// FinishStage closes the remote room. Responses live in the survey service;
// nothing feeds back into contest scores.
func (s SurveyStrategy) FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error) {
	if stage.Survey == nil {
		return nil, ErrStrategyMismatch
	}
	roomID := stage.Survey.ActiveRoomID
	if roomID == "" {
		return map[string]float64{}, nil
	}
	if err := s.Client.CloseRoom(ctx, roomID); err != nil {
		return nil, fmt.Errorf("%w: close survey room %s: %v", ErrUpstream, roomID, err)
	}
	return map[string]float64{}, nil
}
