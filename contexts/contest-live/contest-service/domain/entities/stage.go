package entities

type StageType string

const (
	StageTypeGeneric    StageType = "GENERIC"
	StageTypeJuryVote   StageType = "JURY_VOTE"
	StageTypePublicVote StageType = "PUBLIC_VOTE"
	StageTypeQuiz       StageType = "QUIZ"
	StageTypeSurvey     StageType = "SURVEY"
)

type JuryRevealMode string

const (
	JuryRevealImmediate JuryRevealMode = "IMMEDIATE"
	JuryRevealDeferred  JuryRevealMode = "DEFERRED"
)

// Stage is a tagged union over the contest stage variants. Type is the
// discriminant and is immutable after creation; only the settings block
// matching the discriminant is meaningful.
type Stage struct {
	StageID         int64
	ContestID       int64
	Name            string
	DurationMinutes int
	Position        int
	Type            StageType

	JuryVote   *JuryVoteSettings
	PublicVote *PublicVoteSettings
	Quiz       *QuizSettings
	Survey     *SurveySettings
}

// JuryVoteSettings configures a jury-scored round.
type JuryVoteSettings struct {
	Weight         float64
	MaxScore       int
	RevealMode     JuryRevealMode
	ShowJudgeNames bool
}

// PublicVoteSettings configures an audience round; every vote counts 1 before
// weighting.
type PublicVoteSettings struct {
	Weight   float64
	MaxScore int
}

// QuizSettings configures a stage whose gameplay runs in the remote quiz
// service. ActiveRoomID is the remote room handle, set once on first run.
type QuizSettings struct {
	QuizFormID      int64
	Weight          float64
	MaxParticipants int
	TimePerQuestion int
	ActiveRoomID    string
}

// SurveySettings configures a stage backed by the remote survey service.
// Surveys carry no numeric score contribution.
type SurveySettings struct {
	SurveyFormID    int64
	MaxParticipants int
	DurationMinutes int
	ActiveRoomID    string
}

// Weight returns the score multiplier applied when the stage is reconciled.
// Stage types without a score contribution weigh zero.
func (s Stage) Weight() float64 {
	switch s.Type {
	case StageTypeJuryVote:
		if s.JuryVote != nil {
			return s.JuryVote.Weight
		}
	case StageTypePublicVote:
		if s.PublicVote != nil {
			return s.PublicVote.Weight
		}
	case StageTypeQuiz:
		if s.Quiz != nil {
			return s.Quiz.Weight
		}
	}
	return 0
}

// RemoteRoomID returns the remote session handle for remote stage types.
func (s Stage) RemoteRoomID() string {
	switch s.Type {
	case StageTypeQuiz:
		if s.Quiz != nil {
			return s.Quiz.ActiveRoomID
		}
	case StageTypeSurvey:
		if s.Survey != nil {
			return s.Survey.ActiveRoomID
		}
	}
	return ""
}
