package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	ContestID    int64  `json:"contest_id"`
	StageID      int64  `json:"stage_id"`
	SubmissionID string `json:"submission_id"`
	Score        int    `json:"score,omitempty"`
}

type VoteResponse struct {
	MarkerID     string  `json:"marker_id"`
	ContestID    int64   `json:"contest_id"`
	StageID      int64   `json:"stage_id"`
	SubmissionID string  `json:"submission_id"`
	VoterUserID  string  `json:"voter_user_id"`
	Score        int     `json:"score"`
	RunningTotal float64 `json:"running_total"`
}

type LeaderboardItem struct {
	SubmissionID string  `json:"submission_id"`
	Votes        int     `json:"votes,omitempty"`
	Total        float64 `json:"total"`
	Rank         int     `json:"rank"`
}

type LeaderboardResponse struct {
	StageID int64             `json:"stage_id"`
	Items   []LeaderboardItem `json:"items"`
}
