package entities

import "time"

// VoteMarker is the durable record of one accepted vote. The triple
// (stage_id, participant_id, submission_id) is unique, which is what makes a
// concurrent double vote lose at the database instead of in application code.
type VoteMarker struct {
	MarkerID      string
	StageID       int64
	ContestID     int64
	ParticipantID int64
	VoterUserID   string
	SubmissionID  string
	Score         int
	CreatedAt     time.Time
}

// SubmissionScore is one leaderboard row for a stage.
type SubmissionScore struct {
	SubmissionID string
	Votes        int
	Total        float64
}
