package httpadapter

import (
	"context"
	"log/slog"

	"compezze/contexts/contest-live/session-orchestrator/application/commands"
	httptransport "compezze/contexts/contest-live/session-orchestrator/transport/http"
)

type Handler struct {
	Sessions commands.SessionUseCase
	Logger   *slog.Logger
}

func (h Handler) OpenRoomHandler(ctx context.Context, contestID int64, actorUserID string) (httptransport.RoomResponse, error) {
	result, err := h.Sessions.OpenRoom(ctx, contestID, actorUserID)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return httptransport.RoomResponse{
		RoomID:               result.Room.RoomID,
		ContestID:            result.Room.ContestID,
		RoomKey:              result.Room.RoomKey,
		CurrentStagePosition: result.Room.CurrentStagePosition,
		Active:               result.Room.Active,
		Replayed:             result.Replayed,
	}, nil
}

func (h Handler) StartStageHandler(
	ctx context.Context,
	contestID int64,
	stageID int64,
	actorUserID string,
) (httptransport.StageTransitionResponse, error) {
	result, err := h.Sessions.StartStage(ctx, contestID, stageID, actorUserID)
	if err != nil {
		return httptransport.StageTransitionResponse{}, err
	}
	return mapTransition(contestID, result), nil
}

func (h Handler) AdvanceStageHandler(
	ctx context.Context,
	contestID int64,
	expectedPosition int,
	actorUserID string,
) (httptransport.StageTransitionResponse, error) {
	result, err := h.Sessions.AdvanceStage(ctx, contestID, expectedPosition, actorUserID)
	if err != nil {
		return httptransport.StageTransitionResponse{}, err
	}
	return mapTransition(contestID, result), nil
}

func (h Handler) FinishCurrentStageHandler(ctx context.Context, contestID int64, expectedPosition int, actorUserID string) error {
	return h.Sessions.FinishCurrentStage(ctx, contestID, expectedPosition, actorUserID)
}

func (h Handler) CloseContestHandler(ctx context.Context, contestID int64, actorUserID string) error {
	return h.Sessions.CloseContest(ctx, contestID, actorUserID)
}

func mapTransition(contestID int64, result commands.StageTransitionResult) httptransport.StageTransitionResponse {
	resp := httptransport.StageTransitionResponse{
		ContestID: contestID,
		Finished:  result.Finished,
	}
	if !result.Finished {
		settings := result.Settings
		resp.StageID = result.Stage.StageID
		resp.StageName = result.Stage.Name
		resp.Position = result.Stage.Position
		resp.Settings = &settings
	}
	return resp
}
