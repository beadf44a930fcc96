package entities

import "time"

type ContestStatus string

const (
	ContestStatusCreated  ContestStatus = "CREATED"
	ContestStatusDraft    ContestStatus = "DRAFT"
	ContestStatusActive   ContestStatus = "ACTIVE"
	ContestStatusFinished ContestStatus = "FINISHED"
)

type ContestCategory string

const (
	CategoryMusic       ContestCategory = "MUSIC"
	CategoryPhotography ContestCategory = "PHOTOGRAPHY"
	CategoryArt         ContestCategory = "ART"
	CategoryFilm        ContestCategory = "FILM"
	CategoryOther       ContestCategory = "OTHER"
)

// Contest is the aggregate root of the contest-live context. Stages are kept
// ordered by position; positions form a dense 1..N permutation.
type Contest struct {
	ContestID        int64
	Name             string
	Description      string
	Location         string
	Category         ContestCategory
	ParticipantLimit int
	StartDate        time.Time
	EndDate          time.Time
	Private          bool
	OpenForEntries   bool
	OrganizerID      string
	Status           ContestStatus
	CoverImageKey    string
	Stages           []Stage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StageAt returns the stage at the given position, if any.
func (c Contest) StageAt(position int) (Stage, bool) {
	for _, stage := range c.Stages {
		if stage.Position == position {
			return stage, true
		}
	}
	return Stage{}, false
}

// NextStageAfter returns the stage with the smallest position strictly greater
// than the given one. Positions never need to be contiguous at call time
// because the lookup tolerates holes left by concurrent edits.
func (c Contest) NextStageAfter(position int) (Stage, bool) {
	var next Stage
	found := false
	for _, stage := range c.Stages {
		if stage.Position <= position {
			continue
		}
		if !found || stage.Position < next.Position {
			next = stage
			found = true
		}
	}
	return next, found
}

// FirstStage returns the stage with the lowest position.
func (c Contest) FirstStage() (Stage, bool) {
	return c.NextStageAfter(0)
}
