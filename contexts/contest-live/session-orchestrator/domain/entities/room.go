package entities

import "time"

// Room is the live session for one contest. CurrentStagePosition points at the
// running stage; zero means the room is open but no stage has started yet.
// Positions only ever move forward.
type Room struct {
	RoomID               string
	ContestID            int64
	RoomKey              string
	CurrentStagePosition int
	Active               bool
	CreatedAt            time.Time
	ClosedAt             *time.Time
}
