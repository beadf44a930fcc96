package ports

import (
	"context"
	"time"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/session-orchestrator/domain/entities"
	"compezze/internal/shared/events"
)

// RoomRepository persists live session rooms, one per contest.
type RoomRepository interface {
	GetRoomByContest(ctx context.Context, contestID int64) (entities.Room, bool, error)
	SaveRoom(ctx context.Context, room entities.Room) error
}

// ContestStore reads contests with their stages and writes status changes.
type ContestStore interface {
	GetContest(ctx context.Context, contestID int64) (contestentities.Contest, error)
	SetContestStatus(ctx context.Context, contestID int64, status contestentities.ContestStatus) error
}

// ScoreStore folds finished-stage deltas into participant totals. Deltas are
// keyed by user id; users without a participant row are skipped.
type ScoreStore interface {
	ApplyScoreDeltas(ctx context.Context, contestID int64, deltas map[string]float64) error
}

// TxManager runs fn inside one transaction. The ctx handed to fn carries the
// transaction; repositories resolve it before touching their default handle.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StageJanitor clears a stage's live tally after reconciliation. Best effort.
type StageJanitor interface {
	DropStage(ctx context.Context, stageID int64) error
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
