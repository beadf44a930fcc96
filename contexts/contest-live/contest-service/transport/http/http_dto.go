package http

import (
	"time"

	stageregistry "compezze/contexts/contest-live/stage-registry"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateContestRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Category         string    `json:"category,omitempty"`
	ParticipantLimit int       `json:"participant_limit,omitempty"`
	StartDate        time.Time `json:"start_date,omitempty"`
	EndDate          time.Time `json:"end_date,omitempty"`
	Private          bool      `json:"private,omitempty"`
	OpenForEntries   bool      `json:"open_for_entries,omitempty"`
	CoverImageKey    string    `json:"cover_image_key,omitempty"`
	DisplayName      string    `json:"display_name,omitempty"`
}

type UpdateContestRequest struct {
	Name             *string    `json:"name,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Location         *string    `json:"location,omitempty"`
	ParticipantLimit *int       `json:"participant_limit,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Private          *bool      `json:"private,omitempty"`
	OpenForEntries   *bool      `json:"open_for_entries,omitempty"`
	CoverImageKey    *string    `json:"cover_image_key,omitempty"`
}

type JuryVoteSettingsRequest struct {
	Weight         float64 `json:"weight"`
	MaxScore       int     `json:"max_score"`
	RevealMode     string  `json:"reveal_mode"`
	ShowJudgeNames bool    `json:"show_judge_names"`
}

type PublicVoteSettingsRequest struct {
	Weight float64 `json:"weight"`
}

type QuizSettingsRequest struct {
	QuizFormID      int64   `json:"quiz_form_id"`
	Weight          float64 `json:"weight"`
	MaxParticipants int     `json:"max_participants"`
	TimePerQuestion int     `json:"time_per_question"`
}

type SurveySettingsRequest struct {
	SurveyFormID    int64 `json:"survey_form_id"`
	MaxParticipants int   `json:"max_participants"`
	DurationMinutes int   `json:"duration_minutes"`
}

// CreateStageRequest carries the discriminant plus exactly one settings block.
type CreateStageRequest struct {
	Type            string                     `json:"type"`
	Name            string                     `json:"name"`
	DurationMinutes int                        `json:"duration_minutes,omitempty"`
	JuryVote        *JuryVoteSettingsRequest   `json:"jury_vote,omitempty"`
	PublicVote      *PublicVoteSettingsRequest `json:"public_vote,omitempty"`
	Quiz            *QuizSettingsRequest       `json:"quiz,omitempty"`
	Survey          *SurveySettingsRequest     `json:"survey,omitempty"`
}

type UpdateStageRequest struct {
	Name            *string `json:"name,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`

	JuryVote   *JuryVotePatchRequest   `json:"jury_vote,omitempty"`
	PublicVote *PublicVotePatchRequest `json:"public_vote,omitempty"`
	Quiz       *QuizPatchRequest       `json:"quiz,omitempty"`
	Survey     *SurveyPatchRequest     `json:"survey,omitempty"`
}

type JuryVotePatchRequest struct {
	Weight         *float64 `json:"weight,omitempty"`
	MaxScore       *int     `json:"max_score,omitempty"`
	RevealMode     *string  `json:"reveal_mode,omitempty"`
	ShowJudgeNames *bool    `json:"show_judge_names,omitempty"`
}

type PublicVotePatchRequest struct {
	Weight *float64 `json:"weight,omitempty"`
}

type QuizPatchRequest struct {
	QuizFormID      *int64   `json:"quiz_form_id,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	MaxParticipants *int     `json:"max_participants,omitempty"`
	TimePerQuestion *int     `json:"time_per_question,omitempty"`
}

type SurveyPatchRequest struct {
	SurveyFormID    *int64 `json:"survey_form_id,omitempty"`
	MaxParticipants *int   `json:"max_participants,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

type ReorderStagesRequest struct {
	OrderedStageIDs []int64 `json:"ordered_stage_ids"`
}

type JoinContestRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarKey   string `json:"avatar_key,omitempty"`
}

type ManageRolesRequest struct {
	Roles []string `json:"roles"`
}

type SubmitEntryRequest struct {
	ObjectKey        string `json:"object_key"`
	Bucket           string `json:"bucket,omitempty"`
	ContentType      string `json:"content_type,omitempty"`
	SizeBytes        int64  `json:"size_bytes,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

type ReviewSubmissionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type ContestResponse struct {
	ContestID        int64     `json:"contest_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	Category         string    `json:"category"`
	ParticipantLimit int       `json:"participant_limit,omitempty"`
	StartDate        time.Time `json:"start_date,omitempty"`
	EndDate          time.Time `json:"end_date,omitempty"`
	Private          bool      `json:"private"`
	OpenForEntries   bool      `json:"open_for_entries"`
	OrganizerID      string    `json:"organizer_id"`
	Status           string    `json:"status"`
	CoverImageKey    string    `json:"cover_image_key,omitempty"`
}

type ContestDetailsResponse struct {
	Contest          ContestResponse               `json:"contest"`
	Stages           []stageregistry.StageSettings `json:"stages"`
	ParticipantCount int                           `json:"participant_count"`
}

type StageResponse struct {
	StageID  int64                       `json:"stage_id"`
	Name     string                      `json:"name"`
	Position int                         `json:"position"`
	Type     string                      `json:"type"`
	Settings stageregistry.StageSettings `json:"settings"`
}

type ParticipantResponse struct {
	ParticipantID int64    `json:"participant_id"`
	ContestID     int64    `json:"contest_id"`
	UserID        string   `json:"user_id"`
	Roles         []string `json:"roles"`
	TotalScore    int64    `json:"total_score"`
	DisplayName   string   `json:"display_name,omitempty"`
	Replayed      bool     `json:"replayed,omitempty"`
}

type SubmissionResponse struct {
	SubmissionID     string `json:"submission_id"`
	ContestID        int64  `json:"contest_id"`
	ParticipantID    int64  `json:"participant_id"`
	Status           string `json:"status"`
	ObjectKey        string `json:"object_key"`
	OriginalFilename string `json:"original_filename,omitempty"`
	Comment          string `json:"comment,omitempty"`
}
