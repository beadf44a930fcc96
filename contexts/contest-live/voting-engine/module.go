package votingengine

import (
	"log/slog"

	httpadapter "compezze/contexts/contest-live/voting-engine/adapters/http"
	"compezze/contexts/contest-live/voting-engine/adapters/memory"
	"compezze/contexts/contest-live/voting-engine/application/commands"
	"compezze/contexts/contest-live/voting-engine/application/queries"
	"compezze/contexts/contest-live/voting-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Tally   *memory.Tally
}

type Dependencies struct {
	Votes  ports.VoteRepository
	Tally  ports.TallyStore
	Sink   ports.NotificationSink
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Votes:  deps.Votes,
		Tally:  deps.Tally,
		Sink:   deps.Sink,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	leaderboardUseCase := queries.LeaderboardUseCase{
		Votes:  deps.Votes,
		Tally:  deps.Tally,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:        voteUseCase,
			Leaderboards: leaderboardUseCase,
			Logger:       deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on in-process adapters for tests and
// local runs without Postgres or Redis.
func NewInMemoryModule(sink ports.NotificationSink, logger *slog.Logger) Module {
	store := memory.NewStore()
	tally := memory.NewTally()
	module := NewModule(Dependencies{
		Votes:  store,
		Tally:  tally,
		Sink:   sink,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	module.Tally = tally
	return module
}
