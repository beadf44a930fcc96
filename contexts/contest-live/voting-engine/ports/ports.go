package ports

import (
	"context"
	"time"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/voting-engine/domain/entities"
	"compezze/internal/shared/events"
)

// RoomProjection is the session orchestrator's room as seen by vote checks.
type RoomProjection struct {
	RoomID               string
	ContestID            int64
	RoomKey              string
	CurrentStagePosition int
	Active               bool
}

// VoteRepository covers the durable reads and the single write the vote path
// performs. SaveMarker must map a unique-key violation on
// (stage_id, participant_id, submission_id) to ErrDuplicateVote.
type VoteRepository interface {
	SaveMarker(ctx context.Context, marker entities.VoteMarker) error
	ListMarkersByStage(ctx context.Context, stageID int64) ([]entities.VoteMarker, error)

	GetContest(ctx context.Context, contestID int64) (contestentities.Contest, error)
	GetStage(ctx context.Context, stageID int64) (contestentities.Stage, error)
	GetRoomByContest(ctx context.Context, contestID int64) (RoomProjection, bool, error)
	GetParticipantByUser(ctx context.Context, contestID int64, userID string) (contestentities.Participant, bool, error)
	GetSubmission(ctx context.Context, submissionID string) (contestentities.Submission, error)
}

// SubmissionTotal is one accumulated tally row for a stage.
type SubmissionTotal struct {
	SubmissionID string
	Total        float64
}

// TallyStore is the fast per-stage score accumulator. Increment returns the
// running total after the write. It is a cache over the durable markers, so a
// failed increment degrades reads but never loses a vote.
type TallyStore interface {
	Increment(ctx context.Context, stageID int64, submissionID string, score float64) (float64, error)
	ReadAll(ctx context.Context, stageID int64) ([]SubmissionTotal, error)
}

// NotificationSink delivers best-effort, at-most-once live notifications.
type NotificationSink interface {
	Publish(ctx context.Context, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
