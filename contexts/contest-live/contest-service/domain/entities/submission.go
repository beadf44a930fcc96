package entities

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// FileRef points at the submitted media object. The core never dereferences
// it; object storage is an external collaborator.
type FileRef struct {
	ObjectKey   string
	Bucket      string
	ContentType string
	SizeBytes   int64
}

// Submission is a participant's single entry for a contest. One submission per
// participant per contest, enforced by a unique constraint.
type Submission struct {
	SubmissionID     string
	ContestID        int64
	ParticipantID    int64
	Status           SubmissionStatus
	File             FileRef
	OriginalFilename string
	Comment          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
