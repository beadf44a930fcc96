package errors

import "errors"

var (
	ErrInvalidVoteInput       = errors.New("invalid vote input")
	ErrContestNotFound        = errors.New("contest not found")
	ErrContestNotActive       = errors.New("contest is not active")
	ErrStageNotFound          = errors.New("stage not found")
	ErrStageNotRunning        = errors.New("stage is not the running stage")
	ErrStageNotVotable        = errors.New("stage type does not accept votes")
	ErrRoomNotFound           = errors.New("contest room not found")
	ErrNotParticipant         = errors.New("voter is not a contest participant")
	ErrJuryRoleRequired       = errors.New("jury role required for this stage")
	ErrScoreOutOfRange        = errors.New("score is out of range")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrSubmissionNotInContest = errors.New("submission does not belong to the contest")
	ErrDuplicateVote          = errors.New("vote already recorded for this submission")
)
