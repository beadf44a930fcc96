package ports

import (
	"context"

	"compezze/contexts/contest-live/contest-service/domain/entities"
)

// StageStore loads and persists stage rows. RunStage uses it to re-read the
// freshest remote-room handle before deciding whether to create one.
type StageStore interface {
	GetStage(ctx context.Context, stageID int64) (entities.Stage, error)
	SaveStage(ctx context.Context, stage entities.Stage) error
}

// SubmissionOwners resolves submission ids to the user id of the owning
// participant, scoped to one contest.
type SubmissionOwners interface {
	OwnersBySubmission(ctx context.Context, contestID int64, submissionIDs []string) (map[string]string, error)
}

// SubmissionTotal is one tally-store row: the accumulated raw score for a
// submission within a stage.
type SubmissionTotal struct {
	SubmissionID string
	Total        float64
}

// TallyReader reads the fast-path vote totals for a stage. An empty result is
// a valid answer and triggers the durable fallback.
type TallyReader interface {
	ReadAll(ctx context.Context, stageID int64) ([]SubmissionTotal, error)
}

// StageVote is a durable vote fact as seen by reconciliation.
type StageVote struct {
	SubmissionID string
	VoterUserID  string
	Score        int
}

// StageVoteReader lists the durable vote markers recorded during a stage.
// These rows are the source of truth when the tally store is empty or down.
type StageVoteReader interface {
	ListStageVotes(ctx context.Context, stageID int64) ([]StageVote, error)
}

type CreateQuizRoomRequest struct {
	QuizFormID      int64 `json:"quizFormId"`
	MaxParticipants int   `json:"maxParticipants"`
	TimePerQuestion int   `json:"timePerQuestion"`
	Private         bool  `json:"isPrivate"`
}

type CreateQuizRoomResponse struct {
	RoomID     string `json:"roomId"`
	QuizFormID int64  `json:"quizFormId"`
	QuizTitle  string `json:"quizTitle"`
}

type QuizLeaderboardEntry struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

type QuizRoomDetails struct {
	Status      string                 `json:"status"`
	Leaderboard []QuizLeaderboardEntry `json:"leaderboard"`
}

// QuizRoomClient is the RPC facade to the quiz service. Implementations own
// all transport failure handling; callers only see wrapped upstream errors.
type QuizRoomClient interface {
	CreateRoom(ctx context.Context, req CreateQuizRoomRequest) (CreateQuizRoomResponse, error)
	CloseRoom(ctx context.Context, roomID string) error
	GetRoomDetails(ctx context.Context, roomID string) (QuizRoomDetails, error)
}

type CreateSurveyRoomRequest struct {
	SurveyFormID    int64 `json:"surveyFormId"`
	MaxParticipants int   `json:"maxParticipants"`
	DurationMinutes int   `json:"durationMinutes"`
	Private         bool  `json:"isPrivate"`
}

type CreateSurveyRoomResponse struct {
	RoomID string `json:"roomId"`
}

type SurveyRoomDetails struct {
	Status          string `json:"status"`
	ResponsesFilled int    `json:"responsesFilled"`
}

// SurveyRoomClient is the RPC facade to the survey service.
type SurveyRoomClient interface {
	CreateRoom(ctx context.Context, req CreateSurveyRoomRequest) (CreateSurveyRoomResponse, error)
	CloseRoom(ctx context.Context, roomID string) error
	GetRoomDetails(ctx context.Context, roomID string) (SurveyRoomDetails, error)
}
