package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope for cross-runtime use.
// The quiz and survey services and the realtime frontend consume this shape;
// it must stay backward compatible.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAtUTC time.Time       `json:"occurred_at_utc"`
	ContestID     int64           `json:"contest_id"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// Event type names published under this contract.
const (
	TypeStageChanged        = "contest.stage_changed"
	TypeVoteRecorded        = "contest.vote_recorded"
	TypeContestFinished     = "contest.finished"
	TypeSubmissionPresented = "contest.submission_presented"
	TypeParticipantJoined   = "contest.participant_joined"
	TypeSubmissionReviewed  = "contest.submission_reviewed"
)
