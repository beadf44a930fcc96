package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	application "compezze/contexts/contest-live/voting-engine/application"
	"compezze/contexts/contest-live/voting-engine/domain/entities"
	domainerrors "compezze/contexts/contest-live/voting-engine/domain/errors"
	"compezze/contexts/contest-live/voting-engine/ports"
	"compezze/internal/shared/events"
)

// CastVoteCommand is the write-model input for vote recording.
type CastVoteCommand struct {
	ContestID    int64
	StageID      int64
	VoterUserID  string
	SubmissionID string
	Score        int
}

// CastVoteResult returns the durable marker plus the tally store's running
// total for the voted submission after the increment.
type CastVoteResult struct {
	Marker       entities.VoteMarker
	RunningTotal float64
}

// VoteUseCase enforces the vote precondition chain and records accepted votes:
// durable marker first, tally increment second, notification last.
type VoteUseCase struct {
	Votes  ports.VoteRepository
	Tally  ports.TallyStore
	Sink   ports.NotificationSink
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CastVote validates the full chain before writing anything. Duplicate votes
// lose at the marker's unique key, so two racing requests for the same
// (stage, participant, submission) produce exactly one accepted vote.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote cast processing started",
		"event", "voting_cast_started",
		"module", "contest-live/voting-engine",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"stage_id", cmd.StageID,
		"voter_user_id", strings.TrimSpace(cmd.VoterUserID),
		"submission_id", strings.TrimSpace(cmd.SubmissionID),
	)
	if cmd.ContestID <= 0 || cmd.StageID <= 0 ||
		strings.TrimSpace(cmd.VoterUserID) == "" ||
		strings.TrimSpace(cmd.SubmissionID) == "" {
		logger.Warn("vote cast validation failed",
			"event", "voting_cast_validation_failed",
			"module", "contest-live/voting-engine",
			"layer", "application",
			"contest_id", cmd.ContestID,
			"stage_id", cmd.StageID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	contest, err := uc.Votes.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if contest.Status != contestentities.ContestStatusActive {
		return CastVoteResult{}, domainerrors.ErrContestNotActive
	}

	stage, err := uc.Votes.GetStage(ctx, cmd.StageID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if stage.ContestID != cmd.ContestID {
		return CastVoteResult{}, domainerrors.ErrStageNotFound
	}

	room, found, err := uc.Votes.GetRoomByContest(ctx, cmd.ContestID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		return CastVoteResult{}, domainerrors.ErrRoomNotFound
	}
	if stage.Position != room.CurrentStagePosition {
		return CastVoteResult{}, domainerrors.ErrStageNotRunning
	}

	participant, found, err := uc.Votes.GetParticipantByUser(ctx, cmd.ContestID, strings.TrimSpace(cmd.VoterUserID))
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		return CastVoteResult{}, domainerrors.ErrNotParticipant
	}

	submission, err := uc.Votes.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return CastVoteResult{}, err
	}
	if submission.ContestID != cmd.ContestID {
		return CastVoteResult{}, domainerrors.ErrSubmissionNotInContest
	}

	score, err := resolveScore(stage, participant, cmd.Score)
	if err != nil {
		return CastVoteResult{}, err
	}

	markerID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	marker := entities.VoteMarker{
		MarkerID:      markerID,
		StageID:       stage.StageID,
		ContestID:     cmd.ContestID,
		ParticipantID: participant.ParticipantID,
		VoterUserID:   strings.TrimSpace(cmd.VoterUserID),
		SubmissionID:  submission.SubmissionID,
		Score:         score,
		CreatedAt:     now,
	}
	if err := uc.Votes.SaveMarker(ctx, marker); err != nil {
		return CastVoteResult{}, err
	}

	runningTotal, err := uc.Tally.Increment(ctx, stage.StageID, submission.SubmissionID, float64(score))
	if err != nil {
		// The marker is already durable; reconciliation falls back to it.
		logger.Warn("tally increment failed after marker write",
			"event", "voting_tally_increment_failed",
			"module", "contest-live/voting-engine",
			"layer", "application",
			"stage_id", stage.StageID,
			"submission_id", submission.SubmissionID,
			"error", err.Error(),
		)
		runningTotal = 0
	}

	uc.notifyVoteRecorded(ctx, marker, runningTotal, now)

	logger.Info("vote recorded",
		"event", "voting_vote_recorded",
		"module", "contest-live/voting-engine",
		"layer", "application",
		"marker_id", marker.MarkerID,
		"stage_id", marker.StageID,
		"submission_id", marker.SubmissionID,
		"participant_id", marker.ParticipantID,
		"score", marker.Score,
	)
	return CastVoteResult{Marker: marker, RunningTotal: runningTotal}, nil
}

// resolveScore applies the per-stage-type vote rules. Audience votes are flat
// ones; jury votes must fall inside the configured scale.
func resolveScore(
	stage contestentities.Stage,
	participant contestentities.Participant,
	requested int,
) (int, error) {
	switch stage.Type {
	case contestentities.StageTypeJuryVote:
		if !participant.HasRole(contestentities.RoleJury) {
			return 0, domainerrors.ErrJuryRoleRequired
		}
		maxScore := 0
		if stage.JuryVote != nil {
			maxScore = stage.JuryVote.MaxScore
		}
		if requested < 1 || requested > maxScore {
			return 0, domainerrors.ErrScoreOutOfRange
		}
		return requested, nil
	case contestentities.StageTypePublicVote:
		return 1, nil
	default:
		return 0, domainerrors.ErrStageNotVotable
	}
}

func (uc VoteUseCase) notifyVoteRecorded(
	ctx context.Context,
	marker entities.VoteMarker,
	runningTotal float64,
	occurredAt time.Time,
) {
	if uc.Sink == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     events.TypeVoteRecorded,
		SourceService: "voting-engine",
		OccurredAtUTC: occurredAt,
		ContestID:     marker.ContestID,
		Payload: events.VoteRecordedPayload{
			StageID:      marker.StageID,
			SubmissionID: marker.SubmissionID,
			RunningTotal: runningTotal,
		},
	}
	if err := uc.Sink.Publish(ctx, envelope); err != nil {
		application.ResolveLogger(uc.Logger).Warn("vote notification dropped",
			"event", "voting_notification_dropped",
			"module", "contest-live/voting-engine",
			"layer", "application",
			"marker_id", marker.MarkerID,
			"error", err.Error(),
		)
	}
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
