package stageregistry

import (
	"context"
	"errors"
	"log/slog"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

var (
	// ErrUpstream marks a failed or timed-out remote quiz/survey call. The
	// orchestrator aborts the transition on it, except during contest close.
	ErrUpstream = errors.New("remote session service failure")

	// ErrStrategyMismatch signals a request whose declared type does not match
	// the dispatched strategy. It is a programming invariant, not user input.
	ErrStrategyMismatch = errors.New("stage request does not match strategy type")

	ErrUnknownStageType = errors.New("no strategy registered for stage type")
	ErrInvalidSettings  = errors.New("invalid stage settings")
)

// CreateStageRequest carries the type discriminant plus exactly one settings
// block matching it.
type CreateStageRequest struct {
	Type            entities.StageType
	Name            string
	DurationMinutes int

	JuryVote   *entities.JuryVoteSettings
	PublicVote *entities.PublicVoteSettings
	Quiz       *entities.QuizSettings
	Survey     *entities.SurveySettings
}

// UpdateStageRequest is a field-level patch; nil fields are no-ops.
type UpdateStageRequest struct {
	Name            *string
	DurationMinutes *int

	JuryVote   *JuryVotePatch
	PublicVote *PublicVotePatch
	Quiz       *QuizPatch
	Survey     *SurveyPatch
}

type JuryVotePatch struct {
	Weight         *float64
	MaxScore       *int
	RevealMode     *entities.JuryRevealMode
	ShowJudgeNames *bool
}

type PublicVotePatch struct {
	Weight   *float64
	MaxScore *int
}

type QuizPatch struct {
	QuizFormID      *int64
	Weight          *float64
	MaxParticipants *int
	TimePerQuestion *int
}

type SurveyPatch struct {
	SurveyFormID    *int64
	MaxParticipants *int
	DurationMinutes *int
}

// StageSettings is the read projection handed to clients when a stage is
// activated or inspected. RemoteRoomID is set for remote stage types only.
type StageSettings struct {
	StageID      int64              `json:"stage_id"`
	Type         entities.StageType `json:"type"`
	Weight       float64            `json:"weight,omitempty"`
	MaxScore     int                `json:"max_score,omitempty"`
	RevealMode   string             `json:"reveal_mode,omitempty"`
	JudgeNames   bool               `json:"show_judge_names,omitempty"`
	FormID       int64              `json:"form_id,omitempty"`
	Participants int                `json:"max_participants,omitempty"`
	TimePerItem  int                `json:"time_per_question,omitempty"`
	Duration     int                `json:"duration_minutes,omitempty"`
	RemoteRoomID string             `json:"remote_room_id,omitempty"`
}

// Strategy implements the per-stage-type behaviour behind stage creation,
// activation, and reconciliation.
type Strategy interface {
	Type() entities.StageType

	// Validate runs type-specific structural checks before persistence.
	Validate(req CreateStageRequest) error

	// CreateStage builds the concrete stage variant. The caller assigns
	// identity and position afterwards.
	CreateStage(req CreateStageRequest) (entities.Stage, error)

	// UpdateStage applies a partial patch to the stage in place.
	UpdateStage(req UpdateStageRequest, stage *entities.Stage) error

	// RunStage activates the stage and returns its settings. Idempotent: for
	// remote types a cached remote-room handle is returned without re-creating.
	RunStage(ctx context.Context, stageID int64) (StageSettings, error)

	// Settings is a read-only projection with no side effects.
	Settings(stage entities.Stage) StageSettings

	// FinishStage reconciles everything cast during the stage into weighted
	// per-participant deltas keyed by user id.
	FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error)
}

// Dependencies wires the ports every strategy may need. Strategies take only
// what they use.
type Dependencies struct {
	Stages      ports.StageStore
	Submissions ports.SubmissionOwners
	Tally       ports.TallyReader
	Votes       ports.StageVoteReader
	Quiz        ports.QuizRoomClient
	Survey      ports.SurveyRoomClient
	Logger      *slog.Logger
}

// Registry maps stage type tags to strategies. It is built once at process
// start and injected into the contest service and the session orchestrator.
type Registry struct {
	byType map[entities.StageType]Strategy
	stages ports.StageStore
}

func NewRegistry(deps Dependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strategies := []Strategy{
		GenericStrategy{Stages: deps.Stages},
		JuryVoteStrategy{Stages: deps.Stages, Submissions: deps.Submissions, Tally: deps.Tally, Votes: deps.Votes, Logger: logger},
		PublicVoteStrategy{Stages: deps.Stages, Submissions: deps.Submissions, Tally: deps.Tally, Votes: deps.Votes, Logger: logger},
		QuizStrategy{Stages: deps.Stages, Client: deps.Quiz, Logger: logger},
		SurveyStrategy{Stages: deps.Stages, Client: deps.Survey, Logger: logger},
	}
	byType := make(map[entities.StageType]Strategy, len(strategies))
	for _, strategy := range strategies {
		byType[strategy.Type()] = strategy
	}
	return &Registry{byType: byType, stages: deps.Stages}
}

func (r *Registry) forType(stageType entities.StageType) (Strategy, error) {
	strategy, ok := r.byType[stageType]
	if !ok {
		return nil, ErrUnknownStageType
	}
	return strategy, nil
}

func (r *Registry) Validate(req CreateStageRequest) error {
	strategy, err := r.forType(req.Type)
	if err != nil {
		return err
	}
	return strategy.Validate(req)
}

func (r *Registry) CreateStage(req CreateStageRequest) (entities.Stage, error) {
	strategy, err := r.forType(req.Type)
	if err != nil {
		return entities.Stage{}, err
	}
	return strategy.CreateStage(req)
}

func (r *Registry) UpdateStage(req UpdateStageRequest, stage *entities.Stage) error {
	strategy, err := r.forType(stage.Type)
	if err != nil {
		return err
	}
	return strategy.UpdateStage(req, stage)
}

func (r *Registry) RunStage(ctx context.Context, stageID int64, stageType entities.StageType) (StageSettings, error) {
	strategy, err := r.forType(stageType)
	if err != nil {
		return StageSettings{}, err
	}
	return strategy.RunStage(ctx, stageID)
}

func (r *Registry) Settings(stage entities.Stage) StageSettings {
	strategy, err := r.forType(stage.Type)
	if err != nil {
		return StageSettings{StageID: stage.StageID, Type: entities.StageTypeGeneric}
	}
	return strategy.Settings(stage)
}

// FinishStage reconciles the stage into weighted per-user deltas. The stage is
// re-read from the store first: remote room handles written at activation must
// not be lost to a caller-held stale copy.
func (r *Registry) FinishStage(ctx context.Context, stage entities.Stage) (map[string]float64, error) {
	strategy, err := r.forType(stage.Type)
	if err != nil {
		return map[string]float64{}, nil
	}
	if stage.StageID != 0 && r.stages != nil {
		if fresh, err := r.stages.GetStage(ctx, stage.StageID); err == nil {
			stage = fresh
		}
	}
	return strategy.FinishStage(ctx, stage)
}
