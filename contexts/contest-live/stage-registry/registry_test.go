package stageregistry_test

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	"compezze/contexts/contest-live/stage-registry/adapters/memory"
	"compezze/contexts/contest-live/stage-registry/ports"
)

type registryFixture struct {
	registry *stageregistry.Registry
	stages   *memory.StageStore
	quiz     *memory.QuizRoomClient
	survey   *memory.SurveyRoomClient
	tally    *memory.TallyReader
	votes    *memory.StageVoteReader
}

func newRegistryFixture(t *testing.T, owners map[string]string) *registryFixture {
	t.Helper()
	fixture := &registryFixture{
		stages: memory.NewStageStore(),
		quiz:   memory.NewQuizRoomClient(),
		survey: memory.NewSurveyRoomClient(),
		tally:  &memory.TallyReader{Totals: map[int64][]ports.SubmissionTotal{}},
		votes:  &memory.StageVoteReader{Votes: map[int64][]ports.StageVote{}},
	}
	fixture.registry = stageregistry.NewRegistry(stageregistry.Dependencies{
		Stages:      fixture.stages,
		Submissions: memory.SubmissionOwners{Owners: owners},
		Tally:       fixture.tally,
		Votes:       fixture.votes,
		Quiz:        fixture.quiz,
		Survey:      fixture.survey,
		Logger:      slog.Default(),
	})
	return fixture
}

func TestCreateStageRejectsMissingSettingsBlock(t *testing.T) {
	fixture := newRegistryFixture(t, nil)

	_, err := fixture.registry.CreateStage(stageregistry.CreateStageRequest{
		Type: entities.StageTypeJuryVote,
		Name: "Jury Round",
	})
	if !errors.Is(err, stageregistry.ErrStrategyMismatch) {
		t.Fatalf("expected strategy mismatch, got %v", err)
	}

	_, err = fixture.registry.CreateStage(stageregistry.CreateStageRequest{
		Type: entities.StageType("KARAOKE"),
		Name: "Unknown",
	})
	if !errors.Is(err, stageregistry.ErrUnknownStageType) {
		t.Fatalf("expected unknown stage type, got %v", err)
	}
}

func TestCreateStageValidatesSettings(t *testing.T) {
	fixture := newRegistryFixture(t, nil)

	cases := []struct {
		name string
		req  stageregistry.CreateStageRequest
	}{
		{
			name: "jury max score below one",
			req: stageregistry.CreateStageRequest{
				Type:     entities.StageTypeJuryVote,
				Name:     "Jury",
				JuryVote: &entities.JuryVoteSettings{Weight: 1, MaxScore: 0, RevealMode: entities.JuryRevealImmediate},
			},
		},
		{
			name: "public weight not positive",
			req: stageregistry.CreateStageRequest{
				Type:       entities.StageTypePublicVote,
				Name:       "Audience",
				PublicVote: &entities.PublicVoteSettings{Weight: 0},
			},
		},
		{
			name: "quiz missing form id",
			req: stageregistry.CreateStageRequest{
				Type: entities.StageTypeQuiz,
				Name: "Trivia",
				Quiz: &entities.QuizSettings{Weight: 1, MaxParticipants: 10, TimePerQuestion: 20},
			},
		},
		{
			name: "survey missing form id",
			req: stageregistry.CreateStageRequest{
				Type:   entities.StageTypeSurvey,
				Name:   "Feedback",
				Survey: &entities.SurveySettings{MaxParticipants: 10},
			},
		},
	}
	for _, tc := range cases {
		if _, err := fixture.registry.CreateStage(tc.req); !errors.Is(err, stageregistry.ErrInvalidSettings) {
			t.Fatalf("%s: expected invalid settings, got %v", tc.name, err)
		}
	}
}

func TestPublicVoteStageForcesUnitScore(t *testing.T) {
	fixture := newRegistryFixture(t, nil)

	stage, err := fixture.registry.CreateStage(stageregistry.CreateStageRequest{
		Type:       entities.StageTypePublicVote,
		Name:       "Audience",
		PublicVote: &entities.PublicVoteSettings{Weight: 2, MaxScore: 10},
	})
	if err != nil {
		t.Fatalf("create public stage failed: %v", err)
	}
	if stage.PublicVote.MaxScore != 1 {
		t.Fatalf("expected public max score 1, got %d", stage.PublicVote.MaxScore)
	}
}

func TestQuizRunStageReplaysCachedRoom(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 7,
		Name:      "Trivia",
		Type:      entities.StageTypeQuiz,
		Quiz:      &entities.QuizSettings{QuizFormID: 41, Weight: 1.5, MaxParticipants: 20, TimePerQuestion: 15},
	})

	first, err := fixture.registry.RunStage(context.Background(), stage.StageID, entities.StageTypeQuiz)
	if err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	if first.RemoteRoomID == "" {
		t.Fatalf("expected a remote room id")
	}

	second, err := fixture.registry.RunStage(context.Background(), stage.StageID, entities.StageTypeQuiz)
	if err != nil {
		t.Fatalf("replayed activation failed: %v", err)
	}
	if second.RemoteRoomID != first.RemoteRoomID {
		t.Fatalf("expected cached room %s, got %s", first.RemoteRoomID, second.RemoteRoomID)
	}
	if created := fixture.quiz.CreatedRooms(); len(created) != 1 {
		t.Fatalf("expected a single remote room, got %d", len(created))
	}
}

func TestQuizRunStageWrapsRemoteFailure(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 7,
		Name:      "Trivia",
		Type:      entities.StageTypeQuiz,
		Quiz:      &entities.QuizSettings{QuizFormID: 41, Weight: 1, MaxParticipants: 20, TimePerQuestion: 15},
	})
	fixture.quiz.Fail = true

	_, err := fixture.registry.RunStage(context.Background(), stage.StageID, entities.StageTypeQuiz)
	if !errors.Is(err, stageregistry.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	// The failed attempt must not leave a half-bound room behind.
	reloaded, err := fixture.stages.GetStage(context.Background(), stage.StageID)
	if err != nil {
		t.Fatalf("reload stage: %v", err)
	}
	if reloaded.Quiz.ActiveRoomID != "" {
		t.Fatalf("expected no room handle after failure, got %s", reloaded.Quiz.ActiveRoomID)
	}
}

func TestFinishVoteStagePrefersTally(t *testing.T) {
	owners := map[string]string{"sub-a": "user-a", "sub-b": "user-b"}
	fixture := newRegistryFixture(t, owners)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Jury",
		Type:      entities.StageTypeJuryVote,
		JuryVote:  &entities.JuryVoteSettings{Weight: 2, MaxScore: 10, RevealMode: entities.JuryRevealImmediate},
	})
	fixture.tally.Totals[stage.StageID] = []ports.SubmissionTotal{
		{SubmissionID: "sub-a", Total: 8},
		{SubmissionID: "sub-b", Total: 5},
	}
	// Divergent durable rows must be ignored while the tally answers.
	fixture.votes.Votes[stage.StageID] = []ports.StageVote{
		{SubmissionID: "sub-a", VoterUserID: "judge-1", Score: 1},
	}

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if deltas["user-a"] != 16 || deltas["user-b"] != 10 {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
}

func TestFinishVoteStageFallsBackToDurableVotes(t *testing.T) {
	owners := map[string]string{"sub-a": "user-a", "sub-b": "user-b"}
	fixture := newRegistryFixture(t, owners)
	stage := fixture.stages.Put(entities.Stage{
		ContestID:  3,
		Name:       "Audience",
		Type:       entities.StageTypePublicVote,
		PublicVote: &entities.PublicVoteSettings{Weight: 0.5, MaxScore: 1},
	})
	fixture.tally.Err = errors.New("connection refused")
	fixture.votes.Votes[stage.StageID] = []ports.StageVote{
		{SubmissionID: "sub-a", VoterUserID: "user-1", Score: 1},
		{SubmissionID: "sub-a", VoterUserID: "user-2", Score: 1},
		{SubmissionID: "sub-b", VoterUserID: "user-3", Score: 1},
	}

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if deltas["user-a"] != 1 || deltas["user-b"] != 0.5 {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
}

func TestFinishVoteStageTallyAndFallbackAgree(t *testing.T) {
	owners := map[string]string{"sub-a": "user-a", "sub-b": "user-b"}
	votes := []ports.StageVote{
		{SubmissionID: "sub-a", VoterUserID: "judge-1", Score: 8},
		{SubmissionID: "sub-a", VoterUserID: "judge-2", Score: 3},
		{SubmissionID: "sub-b", VoterUserID: "judge-1", Score: 5},
	}
	juryStage := entities.Stage{
		ContestID: 3,
		Name:      "Jury",
		Type:      entities.StageTypeJuryVote,
		JuryVote:  &entities.JuryVoteSettings{Weight: 1.5, MaxScore: 10, RevealMode: entities.JuryRevealImmediate},
	}

	// Tally path: per-submission totals as the live store accumulated them.
	withTally := newRegistryFixture(t, owners)
	stage := withTally.stages.Put(juryStage)
	withTally.tally.Totals[stage.StageID] = []ports.SubmissionTotal{
		{SubmissionID: "sub-a", Total: 11},
		{SubmissionID: "sub-b", Total: 5},
	}
	fromTally, err := withTally.registry.FinishStage(context.Background(), mustGetStage(t, withTally.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish via tally: %v", err)
	}

	// Fallback path: the tally store is down, only durable markers remain.
	withMarkers := newRegistryFixture(t, owners)
	stage = withMarkers.stages.Put(juryStage)
	withMarkers.tally.Err = errors.New("connection refused")
	withMarkers.votes.Votes[stage.StageID] = votes
	fromMarkers, err := withMarkers.registry.FinishStage(context.Background(), mustGetStage(t, withMarkers.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish via markers: %v", err)
	}

	if !reflect.DeepEqual(fromTally, fromMarkers) {
		t.Fatalf("reconciliation paths disagree: tally %v, markers %v", fromTally, fromMarkers)
	}
	if fromTally["user-a"] != 16.5 || fromTally["user-b"] != 7.5 {
		t.Fatalf("unexpected deltas: %v", fromTally)
	}
}

func TestFinishVoteStageSkipsWithdrawnSubmissions(t *testing.T) {
	owners := map[string]string{"sub-a": "user-a"}
	fixture := newRegistryFixture(t, owners)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Jury",
		Type:      entities.StageTypeJuryVote,
		JuryVote:  &entities.JuryVoteSettings{Weight: 1, MaxScore: 10, RevealMode: entities.JuryRevealDeferred},
	})
	fixture.tally.Totals[stage.StageID] = []ports.SubmissionTotal{
		{SubmissionID: "sub-a", Total: 4},
		{SubmissionID: "sub-gone", Total: 9},
	}

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if len(deltas) != 1 || deltas["user-a"] != 4 {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
}

func TestFinishQuizStageWeighsLeaderboard(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Trivia",
		Type:      entities.StageTypeQuiz,
		Quiz:      &entities.QuizSettings{QuizFormID: 41, Weight: 2, MaxParticipants: 20, TimePerQuestion: 15},
	})
	if _, err := fixture.registry.RunStage(context.Background(), stage.StageID, entities.StageTypeQuiz); err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	fixture.quiz.Leaderboard = []ports.QuizLeaderboardEntry{
		{UserID: "user-a", Score: 120, Rank: 1},
		{UserID: "user-b", Score: 80, Rank: 2},
	}

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if deltas["user-a"] != 240 || deltas["user-b"] != 160 {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
	roomID := fixture.quiz.CreatedRooms()[0]
	if !fixture.quiz.Closed(roomID) {
		t.Fatalf("expected room %s to be closed", roomID)
	}
}

func TestFinishQuizStageWithoutRoomScoresNothing(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Trivia",
		Type:      entities.StageTypeQuiz,
		Quiz:      &entities.QuizSettings{QuizFormID: 41, Weight: 2, MaxParticipants: 20, TimePerQuestion: 15},
	})

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if len(deltas) != 0 {
		t.Fatalf("expected no deltas, got %v", deltas)
	}
}

func TestFinishSurveyStageClosesRoomWithoutScores(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Feedback",
		Type:      entities.StageTypeSurvey,
		Survey:    &entities.SurveySettings{SurveyFormID: 77, MaxParticipants: 50, DurationMinutes: 10},
	})
	if _, err := fixture.registry.RunStage(context.Background(), stage.StageID, entities.StageTypeSurvey); err != nil {
		t.Fatalf("activation failed: %v", err)
	}

	deltas, err := fixture.registry.FinishStage(context.Background(), mustGetStage(t, fixture.stages, stage.StageID))
	if err != nil {
		t.Fatalf("finish stage failed: %v", err)
	}
	if len(deltas) != 0 {
		t.Fatalf("expected no deltas, got %v", deltas)
	}
	reloaded := mustGetStage(t, fixture.stages, stage.StageID)
	if !fixture.survey.Closed(reloaded.Survey.ActiveRoomID) {
		t.Fatalf("expected survey room to be closed")
	}
}

func TestUpdateStagePatchesOnlyProvidedFields(t *testing.T) {
	fixture := newRegistryFixture(t, nil)
	stage := fixture.stages.Put(entities.Stage{
		ContestID: 3,
		Name:      "Jury",
		Type:      entities.StageTypeJuryVote,
		JuryVote:  &entities.JuryVoteSettings{Weight: 1, MaxScore: 10, RevealMode: entities.JuryRevealImmediate},
	})

	loaded := mustGetStage(t, fixture.stages, stage.StageID)
	newMax := 20
	if err := fixture.registry.UpdateStage(stageregistry.UpdateStageRequest{
		JuryVote: &stageregistry.JuryVotePatch{MaxScore: &newMax},
	}, &loaded); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if loaded.JuryVote.MaxScore != 20 || loaded.JuryVote.Weight != 1 {
		t.Fatalf("unexpected settings after patch: %+v", loaded.JuryVote)
	}

	badWeight := -1.0
	err := fixture.registry.UpdateStage(stageregistry.UpdateStageRequest{
		JuryVote: &stageregistry.JuryVotePatch{Weight: &badWeight},
	}, &loaded)
	if !errors.Is(err, stageregistry.ErrInvalidSettings) {
		t.Fatalf("expected invalid settings, got %v", err)
	}
}

func mustGetStage(t *testing.T, stages *memory.StageStore, stageID int64) entities.Stage {
	t.Helper()
	stage, err := stages.GetStage(context.Background(), stageID)
	if err != nil {
		t.Fatalf("get stage %d: %v", stageID, err)
	}
	return stage
}
