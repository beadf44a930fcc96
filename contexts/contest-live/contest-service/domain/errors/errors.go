package errors

import "errors"

var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSubmissionNotFound  = errors.New("submission not found")

	ErrNotOrganizer       = errors.New("caller is not the contest organizer")
	ErrReviewForbidden    = errors.New("only the organizer or a moderator can review submissions")
	ErrNotSubmissionOwner = errors.New("caller does not own this submission")

	ErrContestNotEditable   = errors.New("contest is not editable in its current status")
	ErrContestClosedToEntry = errors.New("contest is closed for entries")
	ErrParticipantLimit     = errors.New("contest participant limit reached")
	ErrDuplicateSubmission  = errors.New("participant already has a submission in this contest")
	ErrSubmissionNotPending = errors.New("submission is no longer pending")

	ErrInvalidContestInput = errors.New("invalid contest input")
	ErrInvalidStageInput   = errors.New("invalid stage input")
	ErrStagePermutation    = errors.New("reorder must list every stage of the contest exactly once")
	ErrReviewToPending     = errors.New("submission cannot be reverted to pending")
	ErrRejectionComment    = errors.New("a comment is required when rejecting a submission")
)
