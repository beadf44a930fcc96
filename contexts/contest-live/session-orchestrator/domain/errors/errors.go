package errors

import "errors"

var (
	ErrContestNotFound  = errors.New("contest not found")
	ErrContestFinished  = errors.New("contest is already finished")
	ErrRoomNotFound     = errors.New("contest room not found")
	ErrRoomClosed       = errors.New("contest room is closed")
	ErrNotOrganizer     = errors.New("actor is not the contest organizer")
	ErrStageNotFound    = errors.New("stage not found")
	ErrNoStages         = errors.New("contest has no stages")
	ErrNoStageRunning   = errors.New("no stage is currently running")
	ErrStalePosition    = errors.New("stage position moved since the request was issued")
	ErrStagePositionLag = errors.New("stage position behind the running stage")
	ErrStageSkip        = errors.New("stage activation would skip over an unfinished stage")
)
