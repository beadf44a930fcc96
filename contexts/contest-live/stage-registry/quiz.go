package stageregistry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// QuizStrategy backs stages whose gameplay runs inside the remote quiz
// service. Activation creates a remote room exactly once; the handle is
// persisted on the stage so a replayed activation reuses it.
type QuizStrategy struct {
	Stages ports.StageStore
	Client ports.QuizRoomClient
	Logger *slog.Logger
}

func (QuizStrategy) Type() entities.StageType { return entities.StageTypeQuiz }

func (QuizStrategy) Validate(req CreateStageRequest) error {
	if req.Quiz == nil {
		return ErrStrategyMismatch
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: stage name is required", ErrInvalidSettings)
	}
	if req.Quiz.QuizFormID <= 0 {
		return fmt.Errorf("%w: quiz form id is required", ErrInvalidSettings)
	}
	if req.Quiz.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
	}
	if req.Quiz.MaxParticipants < 1 {
		return fmt.Errorf("%w: max participants must be at least 1", ErrInvalidSettings)
	}
	if req.Quiz.TimePerQuestion < 1 {
		return fmt.Errorf("%w: time per question must be at least 1", ErrInvalidSettings)
	}
	return nil
}

func (s QuizStrategy) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	if err := s.Validate(req); err != nil {
		return entities.Stage{}, err
	}
	settings := *req.Quiz
	settings.ActiveRoomID = ""
	return entities.Stage{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: req.DurationMinutes,
		Type:            entities.StageTypeQuiz,
		Quiz:            &settings,
	}, nil
}

func (QuizStrategy) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	if stage.Quiz == nil {
		return ErrStrategyMismatch
	}
	applyCommonPatch(req, stage)
	patch := req.Quiz
	if patch == nil {
		return nil
	}
	if patch.QuizFormID != nil {
		if *patch.QuizFormID <= 0 {
			return fmt.Errorf("%w: quiz form id is required", ErrInvalidSettings)
		}
		stage.Quiz.QuizFormID = *patch.QuizFormID
	}
	if patch.Weight != nil {
		if *patch.Weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrInvalidSettings)
		}
		stage.Quiz.Weight = *patch.Weight
	}
	if patch.MaxParticipants != nil {
		if *patch.MaxParticipants < 1 {
			return fmt.Errorf("%w: max participants must be at least 1", ErrInvalidSettings)
		}
		stage.Quiz.MaxParticipants = *patch.MaxParticipants
	}
	if patch.TimePerQuestion != nil {
		if *patch.TimePerQuestion < 1 {
			return fmt.Errorf("%w: time per question must be at least 1", ErrInvalidSettings)
		}
		stage.Quiz.TimePerQuestion = *patch.TimePerQuestion
	}
	return nil
}

func (s QuizStrategy) RunStage(ctx context.Context, stageID int64) (StageSettings, error) {
	stage, err := s.Stages.GetStage(ctx, stageID)
	if err != nil {
		return StageSettings{}, err
	}
	if stage.Quiz == nil {
		return StageSettings{}, ErrStrategyMismatch
	}
	if stage.Quiz.ActiveRoomID != "" {
		return s.Settings(stage), nil
	}

	resp, err := s.Client.CreateRoom(ctx, ports.CreateQuizRoomRequest{
		QuizFormID:      stage.Quiz.QuizFormID,
		MaxParticipants: stage.Quiz.MaxParticipants,
		TimePerQuestion: stage.Quiz.TimePerQuestion,
		Private:         true,
	})
	if err != nil {
		return StageSettings{}, fmt.Errorf("%w: create quiz room: %v", ErrUpstream, err)
	}

	stage.Quiz.ActiveRoomID = resp.RoomID
	if err := s.Stages.SaveStage(ctx, stage); err != nil {
		return StageSettings{}, err
	}
	s.Logger.Info("remote quiz room created",
		"event", "quiz_room_created",
		"module", "contest-live/stage-registry",
		"layer", "application",
		"stage_id", stage.StageID,
		"remote_room_id", resp.RoomID,
	)
	return s.Settings(stage), nil
}

func (QuizStrategy) Settings(stage entities.Stage) StageSettings {
	settings := StageSettings{
		StageID:  stage.StageID,
		Type:     entities.StageTypeQuiz,
		Duration: stage.DurationMinutes,
	}
	if stage.Quiz != nil {
		settings.Weight = stage.Quiz.Weight
		settings.FormID = stage.Quiz.QuizFormID
		settings.Participants = stage.Quiz.MaxParticipants
		settings.TimePerItem = stage.Quiz.TimePerQuestion
		settings.RemoteRoomID = stage.Quiz.ActiveRoomID
	}
	return settings
}

// FinishStage closes the remote room and folds its leaderboard, weighted, into
// per-user deltas. A stage that never ran has no room and scores nothing.
func (s QuizStrategy) FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error) {
	if stage.Quiz == nil {
		return nil, ErrStrategyMismatch
	}
	roomID := stage.Quiz.ActiveRoomID
	if roomID == "" {
		return map[string]float64{}, nil
	}

	if err := s.Client.CloseRoom(ctx, roomID); err != nil {
		return nil, fmt.Errorf("%w: close quiz room %s: %v", ErrUpstream, roomID, err)
	}
	details, err := s.Client.GetRoomDetails(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: read quiz room %s: %v", ErrUpstream, roomID, err)
	}

	deltas := make(map[string]float64, len(details.Leaderboard))
	for _, entry := range details.Leaderboard {
		deltas[entry.UserID] += entry.Score * stage.Quiz.Weight
	}
	return deltas, nil
}
