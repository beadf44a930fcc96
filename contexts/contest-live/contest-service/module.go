package contestservice

import (
	"log/slog"

	httpadapter "compezze/contexts/contest-live/contest-service/adapters/http"
	"compezze/contexts/contest-live/contest-service/adapters/memory"
	"compezze/contexts/contest-live/contest-service/application/commands"
	"compezze/contexts/contest-live/contest-service/application/queries"
	"compezze/contexts/contest-live/contest-service/ports"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	stagememory "compezze/contexts/contest-live/stage-registry/adapters/memory"
)

type Module struct {
	Handler httpadapter.Handler

	Store *memory.Store
}

type Dependencies struct {
	Contests     ports.ContestRepository
	Stages       ports.StageRepository
	Participants ports.ParticipantRepository
	Submissions  ports.SubmissionRepository
	Registry     *stageregistry.Registry
	Sink         ports.NotificationSink
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Contests: commands.ContestUseCase{
				Contests:     deps.Contests,
				Participants: deps.Participants,
				Clock:        deps.Clock,
				Logger:       deps.Logger,
			},
			Stages: commands.StageUseCase{
				Contests: deps.Contests,
				Stages:   deps.Stages,
				Registry: deps.Registry,
				Clock:    deps.Clock,
				Logger:   deps.Logger,
			},
			Membership: commands.MembershipUseCase{
				Contests:     deps.Contests,
				Participants: deps.Participants,
				Sink:         deps.Sink,
				Clock:        deps.Clock,
				IDGen:        deps.IDGen,
				Logger:       deps.Logger,
			},
			Submissions: commands.SubmissionUseCase{
				Contests:     deps.Contests,
				Participants: deps.Participants,
				Submissions:  deps.Submissions,
				Sink:         deps.Sink,
				Clock:        deps.Clock,
				IDGen:        deps.IDGen,
				Logger:       deps.Logger,
			},
			Queries: queries.ContestQueries{
				Contests:     deps.Contests,
				Participants: deps.Participants,
				Submissions:  deps.Submissions,
				Registry:     deps.Registry,
				Logger:       deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the contest service against the in-memory store and
// a registry backed by fake remote clients, for tests and local runs.
func NewInMemoryModule(sink ports.NotificationSink, logger *slog.Logger) Module {
	store := memory.NewStore()
	registry := stageregistry.NewRegistry(stageregistry.Dependencies{
		Stages: stagememory.NewStageStore(),
		Quiz:   stagememory.NewQuizRoomClient(),
		Survey: stagememory.NewSurveyRoomClient(),
		Logger: logger,
	})
	module := NewModule(Dependencies{
		Contests:     store,
		Stages:       store,
		Participants: store,
		Submissions:  store,
		Registry:     registry,
		Sink:         sink,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
