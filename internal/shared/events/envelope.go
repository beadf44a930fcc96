package events

import "time"

// Event type names emitted by the contest-live context.
const (
	TypeStageChanged        = "contest.stage_changed"
	TypeVoteRecorded        = "contest.vote_recorded"
	TypeContestFinished     = "contest.finished"
	TypeSubmissionPresented = "contest.submission_presented"
	TypeParticipantJoined   = "contest.participant_joined"
	TypeSubmissionReviewed  = "contest.submission_reviewed"
)

// Envelope is the shared notification event shape used in Compezze.
// Delivery is at-most-once best-effort; producers must never depend on it.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	ContestID     int64     `json:"contest_id"`
	Payload       any       `json:"payload"`
}

// StageChangedPayload accompanies TypeStageChanged.
type StageChangedPayload struct {
	StageID   int64  `json:"stage_id"`
	StageName string `json:"stage_name"`
	StageType string `json:"stage_type"`
	Position  int    `json:"position"`
}

// VoteRecordedPayload accompanies TypeVoteRecorded. RunningTotal is the tally
// store's post-increment value for the voted submission.
type VoteRecordedPayload struct {
	StageID      int64   `json:"stage_id"`
	SubmissionID string  `json:"submission_id"`
	RunningTotal float64 `json:"running_total"`
}

// ContestFinishedPayload accompanies TypeContestFinished.
type ContestFinishedPayload struct {
	RoomID string `json:"room_id"`
}

// SubmissionPresentedPayload accompanies TypeSubmissionPresented.
type SubmissionPresentedPayload struct {
	SubmissionID string `json:"submission_id"`
	StageID      int64  `json:"stage_id"`
}

// ParticipantJoinedPayload accompanies TypeParticipantJoined.
type ParticipantJoinedPayload struct {
	ParticipantID int64  `json:"participant_id"`
	UserID        string `json:"user_id"`
}

// SubmissionReviewedPayload accompanies TypeSubmissionReviewed.
type SubmissionReviewedPayload struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
}
