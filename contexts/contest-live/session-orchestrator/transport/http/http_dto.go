package http

import stageregistry "compezze/contexts/contest-live/stage-registry"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomResponse struct {
	RoomID               string `json:"room_id"`
	ContestID            int64  `json:"contest_id"`
	RoomKey              string `json:"room_key"`
	CurrentStagePosition int    `json:"current_stage_position"`
	Active               bool   `json:"active"`
	Replayed             bool   `json:"replayed,omitempty"`
}

// StageTransitionRequest carries the caller's view of the running position so
// concurrent double-clicks on "next stage" cannot skip a stage.
type StageTransitionRequest struct {
	ExpectedPosition int `json:"expected_position"`
}

type StageTransitionResponse struct {
	ContestID int64                        `json:"contest_id"`
	Finished  bool                         `json:"finished"`
	StageID   int64                        `json:"stage_id,omitempty"`
	StageName string                       `json:"stage_name,omitempty"`
	Position  int                          `json:"position,omitempty"`
	Settings  *stageregistry.StageSettings `json:"settings,omitempty"`
}
