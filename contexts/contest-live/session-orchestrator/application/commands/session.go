package commands

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/session-orchestrator/domain/entities"
	domainerrors "compezze/contexts/contest-live/session-orchestrator/domain/errors"
	"compezze/contexts/contest-live/session-orchestrator/ports"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	"compezze/internal/shared/events"
)

// OpenRoomResult carries the room plus a replay marker for transport mapping.
type OpenRoomResult struct {
	Room     entities.Room
	Replayed bool
}

// StageTransitionResult reports where a transition landed.
type StageTransitionResult struct {
	Room     entities.Room
	Stage    contestentities.Stage
	Settings stageregistry.StageSettings
	Finished bool
}

// SessionUseCase orchestrates the live contest session: opening the room,
// starting and advancing stages, and closing the contest. Stage transitions
// run inside one transaction so a failed remote activation rolls back the
// score deltas already applied for the finished stage.
type SessionUseCase struct {
	Rooms    ports.RoomRepository
	Contests ports.ContestStore
	Scores   ports.ScoreStore
	Registry *stageregistry.Registry
	Tx       ports.TxManager
	Janitor  ports.StageJanitor
	Sink     ports.NotificationSink
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// OpenRoom creates the contest's live room and activates the contest.
// Replay-safe: when a room already exists it is returned unchanged.
func (uc SessionUseCase) OpenRoom(ctx context.Context, contestID int64, actorUserID string) (OpenRoomResult, error) {
	logger := uc.logger()
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return OpenRoomResult{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(contest.OrganizerID), strings.TrimSpace(actorUserID)) {
		return OpenRoomResult{}, domainerrors.ErrNotOrganizer
	}
	if contest.Status == contestentities.ContestStatusFinished {
		return OpenRoomResult{}, domainerrors.ErrContestFinished
	}

	if room, found, err := uc.Rooms.GetRoomByContest(ctx, contestID); err != nil {
		return OpenRoomResult{}, err
	} else if found {
		logger.Info("room open replayed",
			"event", "session_room_open_replayed",
			"module", "contest-live/session-orchestrator",
			"layer", "application",
			"contest_id", contestID,
			"room_id", room.RoomID,
		)
		return OpenRoomResult{Room: room, Replayed: true}, nil
	}

	roomID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return OpenRoomResult{}, err
	}
	room := entities.Room{
		RoomID:               roomID,
		ContestID:            contestID,
		RoomKey:              randomRoomKey(6),
		CurrentStagePosition: 0,
		Active:               true,
		CreatedAt:            uc.now(),
	}

	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.Rooms.SaveRoom(ctx, room); err != nil {
			return err
		}
		return uc.Contests.SetContestStatus(ctx, contestID, contestentities.ContestStatusActive)
	})
	if err != nil {
		return OpenRoomResult{}, err
	}

	logger.Info("contest room opened",
		"event", "session_room_opened",
		"module", "contest-live/session-orchestrator",
		"layer", "application",
		"contest_id", contestID,
		"room_id", room.RoomID,
		"room_key", room.RoomKey,
	)
	return OpenRoomResult{Room: room}, nil
}

// StartStage enters the stage line-up from the lobby, activating the
// first stage by position. Re-activating the running stage is a replay and
// returns the cached remote-room handle; any other target is rejected, since
// skipping a stage would leave its votes unreconciled. Later stages are
// reached through AdvanceStage, which finishes the running one first.
func (uc SessionUseCase) StartStage(ctx context.Context, contestID, stageID int64, actorUserID string) (StageTransitionResult, error) {
	contest, room, err := uc.loadRunningSession(ctx, contestID, actorUserID)
	if err != nil {
		return StageTransitionResult{}, err
	}

	var stage contestentities.Stage
	found := false
	for _, candidate := range contest.Stages {
		if candidate.StageID == stageID {
			stage = candidate
			found = true
			break
		}
	}
	if !found {
		return StageTransitionResult{}, domainerrors.ErrStageNotFound
	}
	if stage.Position < room.CurrentStagePosition {
		return StageTransitionResult{}, domainerrors.ErrStagePositionLag
	}
	if room.CurrentStagePosition == 0 {
		first, ok := contest.FirstStage()
		if !ok {
			return StageTransitionResult{}, domainerrors.ErrNoStages
		}
		if stage.StageID != first.StageID {
			return StageTransitionResult{}, domainerrors.ErrStageSkip
		}
	} else if stage.Position != room.CurrentStagePosition {
		return StageTransitionResult{}, domainerrors.ErrStageSkip
	}

	var settings stageregistry.StageSettings
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		settings, err = uc.Registry.RunStage(ctx, stage.StageID, stage.Type)
		if err != nil {
			return err
		}
		if room.CurrentStagePosition == stage.Position {
			return nil
		}
		room.CurrentStagePosition = stage.Position
		return uc.Rooms.SaveRoom(ctx, room)
	})
	if err != nil {
		return StageTransitionResult{}, err
	}

	uc.notifyStageChanged(ctx, contestID, stage)
	uc.logger().Info("stage started",
		"event", "session_stage_started",
		"module", "contest-live/session-orchestrator",
		"layer", "application",
		"contest_id", contestID,
		"stage_id", stage.StageID,
		"stage_type", string(stage.Type),
		"position", stage.Position,
	)
	return StageTransitionResult{Room: room, Stage: stage, Settings: settings}, nil
}

// AdvanceStage finishes the running stage, folds its weighted deltas into
// participant totals, and starts the next stage by position. When no stage
// remains the contest finishes and the room closes. A failed activation of
// the next stage rolls back the applied deltas.
//
// expectedPosition is an optimistic precondition: a request issued against a
// position the room has already moved past fails instead of re-finishing.
func (uc SessionUseCase) AdvanceStage(ctx context.Context, contestID int64, expectedPosition int, actorUserID string) (StageTransitionResult, error) {
	contest, room, err := uc.loadRunningSession(ctx, contestID, actorUserID)
	if err != nil {
		return StageTransitionResult{}, err
	}
	if expectedPosition != room.CurrentStagePosition {
		return StageTransitionResult{}, domainerrors.ErrStalePosition
	}
	current, ok := contest.StageAt(room.CurrentStagePosition)
	if !ok {
		return StageTransitionResult{}, domainerrors.ErrNoStageRunning
	}

	next, hasNext := contest.NextStageAfter(room.CurrentStagePosition)

	var settings stageregistry.StageSettings
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		deltas, err := uc.Registry.FinishStage(ctx, current)
		if err != nil {
			return err
		}
		if len(deltas) > 0 {
			if err := uc.Scores.ApplyScoreDeltas(ctx, contestID, deltas); err != nil {
				return err
			}
		}
		if !hasNext {
			return uc.closeSession(ctx, contestID, &room)
		}
		settings, err = uc.Registry.RunStage(ctx, next.StageID, next.Type)
		if err != nil {
			return err
		}
		room.CurrentStagePosition = next.Position
		return uc.Rooms.SaveRoom(ctx, room)
	})
	if err != nil {
		return StageTransitionResult{}, err
	}

	uc.dropStageTally(ctx, current.StageID)

	if !hasNext {
		uc.notifyContestFinished(ctx, contestID, room)
		uc.logger().Info("contest finished after final stage",
			"event", "session_contest_finished",
			"module", "contest-live/session-orchestrator",
			"layer", "application",
			"contest_id", contestID,
			"room_id", room.RoomID,
		)
		return StageTransitionResult{Room: room, Finished: true}, nil
	}

	uc.notifyStageChanged(ctx, contestID, next)
	uc.logger().Info("stage advanced",
		"event", "session_stage_advanced",
		"module", "contest-live/session-orchestrator",
		"layer", "application",
		"contest_id", contestID,
		"from_position", current.Position,
		"to_position", next.Position,
		"stage_id", next.StageID,
	)
	return StageTransitionResult{Room: room, Stage: next, Settings: settings}, nil
}

// FinishCurrentStage reconciles the running stage without advancing. The room
// keeps pointing at the finished stage; a later advance moves past it.
func (uc SessionUseCase) FinishCurrentStage(ctx context.Context, contestID int64, expectedPosition int, actorUserID string) error {
	contest, room, err := uc.loadRunningSession(ctx, contestID, actorUserID)
	if err != nil {
		return err
	}
	if expectedPosition != room.CurrentStagePosition {
		return domainerrors.ErrStalePosition
	}
	current, ok := contest.StageAt(room.CurrentStagePosition)
	if !ok {
		return domainerrors.ErrNoStageRunning
	}

	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		deltas, err := uc.Registry.FinishStage(ctx, current)
		if err != nil {
			return err
		}
		if len(deltas) == 0 {
			return nil
		}
		return uc.Scores.ApplyScoreDeltas(ctx, contestID, deltas)
	})
	if err != nil {
		return err
	}

	uc.dropStageTally(ctx, current.StageID)
	uc.logger().Info("stage finished in place",
		"event", "session_stage_finished",
		"module", "contest-live/session-orchestrator",
		"layer", "application",
		"contest_id", contestID,
		"stage_id", current.StageID,
	)
	return nil
}

// CloseContest ends the session unconditionally. The running stage is
// reconciled best-effort: remote failures are logged and swallowed so an
// unreachable quiz service can never hold a contest open.
func (uc SessionUseCase) CloseContest(ctx context.Context, contestID int64, actorUserID string) error {
	logger := uc.logger()
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(contest.OrganizerID), strings.TrimSpace(actorUserID)) {
		return domainerrors.ErrNotOrganizer
	}

	room, found, err := uc.Rooms.GetRoomByContest(ctx, contestID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrRoomNotFound
	}

	var currentStageID int64
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if current, ok := contest.StageAt(room.CurrentStagePosition); ok && room.Active {
			currentStageID = current.StageID
			deltas, finishErr := uc.Registry.FinishStage(ctx, current)
			switch {
			case finishErr != nil:
				logger.Warn("final stage reconciliation skipped during close",
					"event", "session_close_finish_skipped",
					"module", "contest-live/session-orchestrator",
					"layer", "application",
					"contest_id", contestID,
					"stage_id", current.StageID,
					"error", finishErr.Error(),
				)
			case len(deltas) > 0:
				if err := uc.Scores.ApplyScoreDeltas(ctx, contestID, deltas); err != nil {
					return err
				}
			}
		}
		return uc.closeSession(ctx, contestID, &room)
	})
	if err != nil {
		return err
	}

	if currentStageID != 0 {
		uc.dropStageTally(ctx, currentStageID)
	}
	uc.notifyContestFinished(ctx, contestID, room)
	logger.Info("contest closed",
		"event", "session_contest_closed",
		"module", "contest-live/session-orchestrator",
		"layer", "application",
		"contest_id", contestID,
		"room_id", room.RoomID,
	)
	return nil
}

// closeSession marks the contest finished and deactivates the room. Callers
// run it inside a transaction and hold the mutated room.
func (uc SessionUseCase) closeSession(ctx context.Context, contestID int64, room *entities.Room) error {
	now := uc.now()
	room.Active = false
	room.ClosedAt = &now
	if err := uc.Rooms.SaveRoom(ctx, *room); err != nil {
		return err
	}
	return uc.Contests.SetContestStatus(ctx, contestID, contestentities.ContestStatusFinished)
}

func (uc SessionUseCase) loadRunningSession(
	ctx context.Context,
	contestID int64,
	actorUserID string,
) (contestentities.Contest, entities.Room, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return contestentities.Contest{}, entities.Room{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(contest.OrganizerID), strings.TrimSpace(actorUserID)) {
		return contestentities.Contest{}, entities.Room{}, domainerrors.ErrNotOrganizer
	}
	if contest.Status == contestentities.ContestStatusFinished {
		return contestentities.Contest{}, entities.Room{}, domainerrors.ErrContestFinished
	}
	if len(contest.Stages) == 0 {
		return contestentities.Contest{}, entities.Room{}, domainerrors.ErrNoStages
	}

	room, found, err := uc.Rooms.GetRoomByContest(ctx, contestID)
	if err != nil {
		return contestentities.Contest{}, entities.Room{}, err
	}
	if !found {
		return contestentities.Contest{}, entities.Room{}, domainerrors.ErrRoomNotFound
	}
	if !room.Active {
		return contestentities.Contest{}, entities.Room{}, domainerrors.ErrRoomClosed
	}
	return contest, room, nil
}

func (uc SessionUseCase) dropStageTally(ctx context.Context, stageID int64) {
	if uc.Janitor == nil {
		return
	}
	if err := uc.Janitor.DropStage(ctx, stageID); err != nil {
		uc.logger().Warn("stage tally cleanup failed",
			"event", "session_tally_cleanup_failed",
			"module", "contest-live/session-orchestrator",
			"layer", "application",
			"stage_id", stageID,
			"error", err.Error(),
		)
	}
}

func (uc SessionUseCase) notifyStageChanged(ctx context.Context, contestID int64, stage contestentities.Stage) {
	uc.publish(ctx, contestID, events.TypeStageChanged, events.StageChangedPayload{
		StageID:   stage.StageID,
		StageName: stage.Name,
		StageType: string(stage.Type),
		Position:  stage.Position,
	})
}

func (uc SessionUseCase) notifyContestFinished(ctx context.Context, contestID int64, room entities.Room) {
	uc.publish(ctx, contestID, events.TypeContestFinished, events.ContestFinishedPayload{
		RoomID: room.RoomID,
	})
}

func (uc SessionUseCase) publish(ctx context.Context, contestID int64, eventType string, payload any) {
	if uc.Sink == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "session-orchestrator",
		OccurredAtUTC: uc.now(),
		ContestID:     contestID,
		Payload:       payload,
	}
	if err := uc.Sink.Publish(ctx, envelope); err != nil {
		uc.logger().Warn("session notification dropped",
			"event", "session_notification_dropped",
			"module", "contest-live/session-orchestrator",
			"layer", "application",
			"contest_id", contestID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (uc SessionUseCase) logger() *slog.Logger {
	if uc.Logger == nil {
		return slog.Default()
	}
	return uc.Logger
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// randomRoomKey avoids ambiguous characters so keys survive being read aloud.
func randomRoomKey(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// IsUpstream reports whether a transition failed on a remote session service.
func IsUpstream(err error) bool {
	return errors.Is(err, stageregistry.ErrUpstream)
}
