package ports

import (
	"context"
	"time"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/internal/shared/events"
)

type ContestFilter struct {
	OrganizerID string
	Status      entities.ContestStatus
}

// ContestRepository persists the contest aggregate. GetContest returns the
// contest with its stages ordered by position.
type ContestRepository interface {
	CreateContest(ctx context.Context, contest entities.Contest) (entities.Contest, error)
	UpdateContest(ctx context.Context, contest entities.Contest) error
	GetContest(ctx context.Context, contestID int64) (entities.Contest, error)
	ListContests(ctx context.Context, filter ContestFilter) ([]entities.Contest, error)
}

type StageRepository interface {
	AddStage(ctx context.Context, stage entities.Stage) (entities.Stage, error)
	UpdateStage(ctx context.Context, stage entities.Stage) error

	// ReplacePositions rewrites the position of every listed stage in one
	// operation. Callers guarantee the map covers the whole contest.
	ReplacePositions(ctx context.Context, contestID int64, positions map[int64]int) error
}

type ParticipantRepository interface {
	AddParticipant(ctx context.Context, participant entities.Participant) (entities.Participant, error)
	UpdateParticipant(ctx context.Context, participant entities.Participant) error
	GetParticipant(ctx context.Context, contestID, participantID int64) (entities.Participant, error)
	GetParticipantByUser(ctx context.Context, contestID int64, userID string) (entities.Participant, bool, error)
	CountParticipants(ctx context.Context, contestID int64) (int, error)
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submission entities.Submission) error
	UpdateSubmission(ctx context.Context, submission entities.Submission) error
	DeleteSubmission(ctx context.Context, contestID int64, submissionID string) error
	GetSubmission(ctx context.Context, contestID int64, submissionID string) (entities.Submission, error)
	GetSubmissionByParticipant(ctx context.Context, contestID, participantID int64) (entities.Submission, bool, error)
	ListSubmissions(ctx context.Context, contestID int64, status entities.SubmissionStatus) ([]entities.Submission, error)
}

// NotificationSink delivers live-update events. At-most-once, best-effort.
type NotificationSink interface {
	Publish(ctx context.Context, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
