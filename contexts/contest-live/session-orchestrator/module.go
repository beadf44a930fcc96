package sessionorchestrator

import (
	"log/slog"

	httpadapter "compezze/contexts/contest-live/session-orchestrator/adapters/http"
	"compezze/contexts/contest-live/session-orchestrator/adapters/memory"
	"compezze/contexts/contest-live/session-orchestrator/application/commands"
	"compezze/contexts/contest-live/session-orchestrator/ports"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	stagememory "compezze/contexts/contest-live/stage-registry/adapters/memory"
	stageports "compezze/contexts/contest-live/stage-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler

	Store  *memory.Store
	Stages *stagememory.StageStore
	Quiz   *stagememory.QuizRoomClient
	Survey *stagememory.SurveyRoomClient
	Tally  *stagememory.TallyReader
	Votes  *stagememory.StageVoteReader
	Owners map[string]string
}

type Dependencies struct {
	Rooms    ports.RoomRepository
	Contests ports.ContestStore
	Scores   ports.ScoreStore
	Registry *stageregistry.Registry
	Tx       ports.TxManager
	Janitor  ports.StageJanitor
	Sink     ports.NotificationSink
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	sessionUseCase := commands.SessionUseCase{
		Rooms:    deps.Rooms,
		Contests: deps.Contests,
		Scores:   deps.Scores,
		Registry: deps.Registry,
		Tx:       deps.Tx,
		Janitor:  deps.Janitor,
		Sink:     deps.Sink,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Sessions: sessionUseCase,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule wires the orchestrator with an in-process stage registry
// and fake remote session services for tests and local runs.
func NewInMemoryModule(sink ports.NotificationSink, logger *slog.Logger) Module {
	store := memory.NewStore()
	stages := stagememory.NewStageStore()
	quiz := stagememory.NewQuizRoomClient()
	survey := stagememory.NewSurveyRoomClient()
	owners := map[string]string{}
	tally := &stagememory.TallyReader{Totals: map[int64][]stageports.SubmissionTotal{}}
	votes := &stagememory.StageVoteReader{Votes: map[int64][]stageports.StageVote{}}
	registry := stageregistry.NewRegistry(stageregistry.Dependencies{
		Stages:      stages,
		Submissions: stagememory.SubmissionOwners{Owners: owners},
		Tally:       tally,
		Votes:       votes,
		Quiz:        quiz,
		Survey:      survey,
		Logger:      logger,
	})
	module := NewModule(Dependencies{
		Rooms:    store,
		Contests: store,
		Scores:   store,
		Registry: registry,
		Tx:       store,
		Sink:     sink,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	module.Stages = stages
	module.Quiz = quiz
	module.Survey = survey
	module.Tally = tally
	module.Votes = votes
	module.Owners = owners
	return module
}
