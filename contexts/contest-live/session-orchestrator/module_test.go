package sessionorchestrator_test

import (
	"context"
	"errors"
	"testing"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	sessionorchestrator "compezze/contexts/contest-live/session-orchestrator"
	"compezze/contexts/contest-live/session-orchestrator/application/commands"
	domainerrors "compezze/contexts/contest-live/session-orchestrator/domain/errors"
	stageports "compezze/contexts/contest-live/stage-registry/ports"
)

// seedLiveContest registers a two-stage contest: a jury round at position 1
// (weight 1) followed by a quiz at position 2 (weight 2). Participant alice
// owns the only submission and starts at zero points.
func seedLiveContest(module sessionorchestrator.Module) {
	juryStage := contestentities.Stage{
		StageID:   1,
		ContestID: 1,
		Name:      "Jury Round",
		Position:  1,
		Type:      contestentities.StageTypeJuryVote,
		JuryVote:  &contestentities.JuryVoteSettings{Weight: 1, MaxScore: 10, RevealMode: contestentities.JuryRevealImmediate},
	}
	quizStage := contestentities.Stage{
		StageID:   2,
		ContestID: 1,
		Name:      "Final Quiz",
		Position:  2,
		Type:      contestentities.StageTypeQuiz,
		Quiz:      &contestentities.QuizSettings{QuizFormID: 7, Weight: 2, MaxParticipants: 50, TimePerQuestion: 30},
	}
	module.Stages.Put(juryStage)
	module.Stages.Put(quizStage)
	module.Store.SetContest(contestentities.Contest{
		ContestID:   1,
		Name:        "City Music Contest",
		OrganizerID: "org-1",
		Status:      contestentities.ContestStatusCreated,
		Stages:      []contestentities.Stage{juryStage, quizStage},
	})
	module.Store.SetParticipantScore(1, "alice", 0)
	module.Owners["sub-1"] = "alice"
}

func TestOpenRoomActivatesContestAndReplays(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)

	resp, err := module.Handler.OpenRoomHandler(context.Background(), 1, "org-1")
	if err != nil {
		t.Fatalf("open room: %v", err)
	}
	if resp.RoomID == "" || len(resp.RoomKey) != 6 {
		t.Fatalf("unexpected room identity: %+v", resp)
	}
	if !resp.Active || resp.CurrentStagePosition != 0 || resp.Replayed {
		t.Fatalf("unexpected fresh room state: %+v", resp)
	}
	contest, err := module.Store.GetContest(context.Background(), 1)
	if err != nil {
		t.Fatalf("get contest: %v", err)
	}
	if contest.Status != contestentities.ContestStatusActive {
		t.Fatalf("contest status = %s, want ACTIVE", contest.Status)
	}

	replay, err := module.Handler.OpenRoomHandler(context.Background(), 1, "org-1")
	if err != nil {
		t.Fatalf("replay open room: %v", err)
	}
	if !replay.Replayed || replay.RoomID != resp.RoomID || replay.RoomKey != resp.RoomKey {
		t.Fatalf("replay returned a different room: first %+v, second %+v", resp, replay)
	}
}

func TestOpenRoomRequiresOrganizer(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)

	_, err := module.Handler.OpenRoomHandler(context.Background(), 1, "mallory")
	if !errors.Is(err, domainerrors.ErrNotOrganizer) {
		t.Fatalf("err = %v, want ErrNotOrganizer", err)
	}

	contest, err := module.Store.GetContest(context.Background(), 1)
	if err != nil {
		t.Fatalf("get contest: %v", err)
	}
	if contest.Status != contestentities.ContestStatusCreated {
		t.Fatalf("rejected open room mutated contest status to %s", contest.Status)
	}
	if _, found, _ := module.Store.GetRoomByContest(context.Background(), 1); found {
		t.Fatal("rejected open room created a room")
	}
}

func TestStartStageRejectsPositionLag(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("advance to quiz stage: %v", err)
	}
	_, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1")
	if !errors.Is(err, domainerrors.ErrStagePositionLag) {
		t.Fatalf("err = %v, want ErrStagePositionLag", err)
	}
}

func TestStartStageRejectsSkippingAhead(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	// The lobby enters through the first stage only.
	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 2, "org-1"); !errors.Is(err, domainerrors.ErrStageSkip) {
		t.Fatalf("err = %v, want ErrStageSkip", err)
	}

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	module.Tally.Totals[1] = []stageports.SubmissionTotal{{SubmissionID: "sub-1", Total: 9}}

	// Jumping past the running jury round would drop its votes on the floor.
	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 2, "org-1"); !errors.Is(err, domainerrors.ErrStageSkip) {
		t.Fatalf("err = %v, want ErrStageSkip", err)
	}
	room, _, _ := module.Store.GetRoomByContest(context.Background(), 1)
	if room.CurrentStagePosition != 1 {
		t.Fatalf("rejected skip moved the room to position %d", room.CurrentStagePosition)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 0 {
		t.Fatalf("rejected skip applied scores: %d", got)
	}

	// The proper advance reconciles the jury round before moving on.
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 9 {
		t.Fatalf("score after advance = %d, want 9", got)
	}
}

func TestStartStageReplayKeepsRemoteRoom(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	first, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1")
	if err != nil {
		t.Fatalf("advance to quiz stage: %v", err)
	}
	second, err := module.Handler.StartStageHandler(context.Background(), 1, 2, "org-1")
	if err != nil {
		t.Fatalf("replay quiz stage: %v", err)
	}
	if first.Settings.RemoteRoomID == "" || first.Settings.RemoteRoomID != second.Settings.RemoteRoomID {
		t.Fatalf("replay changed the remote room: %q then %q", first.Settings.RemoteRoomID, second.Settings.RemoteRoomID)
	}
	if created := module.Quiz.CreatedRooms(); len(created) != 1 {
		t.Fatalf("remote rooms created = %d, want 1", len(created))
	}
}

func TestAdvanceStageFoldsWeightedScores(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	module.Tally.Totals[1] = []stageports.SubmissionTotal{{SubmissionID: "sub-1", Total: 1}}

	next, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1")
	if err != nil {
		t.Fatalf("advance past jury stage: %v", err)
	}
	if next.Finished || next.StageID != 2 || next.Position != 2 {
		t.Fatalf("unexpected transition: %+v", next)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 1 {
		t.Fatalf("score after jury stage = %d, want 1", got)
	}

	module.Quiz.Leaderboard = []stageports.QuizLeaderboardEntry{{UserID: "alice", Score: 8, Rank: 1}}

	// An advance issued against the already-passed position is rejected.
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); !errors.Is(err, domainerrors.ErrStalePosition) {
		t.Fatalf("err = %v, want ErrStalePosition", err)
	}

	final, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 2, "org-1")
	if err != nil {
		t.Fatalf("advance past final stage: %v", err)
	}
	if !final.Finished {
		t.Fatalf("expected finished transition, got %+v", final)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 17 {
		t.Fatalf("final score = %d, want 17", got)
	}

	contest, _ := module.Store.GetContest(context.Background(), 1)
	if contest.Status != contestentities.ContestStatusFinished {
		t.Fatalf("contest status = %s, want FINISHED", contest.Status)
	}
	room, found, _ := module.Store.GetRoomByContest(context.Background(), 1)
	if !found || room.Active || room.ClosedAt == nil {
		t.Fatalf("room not closed after final stage: %+v", room)
	}
	if created := module.Quiz.CreatedRooms(); len(created) != 1 || !module.Quiz.Closed(created[0]) {
		t.Fatalf("remote quiz room was not closed: %v", created)
	}
}

func TestAdvanceRollsBackScoresWhenNextStageFails(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	module.Tally.Totals[1] = []stageports.SubmissionTotal{{SubmissionID: "sub-1", Total: 1}}
	module.Quiz.Fail = true

	_, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1")
	if err == nil || !commands.IsUpstream(err) {
		t.Fatalf("err = %v, want wrapped upstream failure", err)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 0 {
		t.Fatalf("score after rolled-back advance = %d, want 0", got)
	}
	room, _, _ := module.Store.GetRoomByContest(context.Background(), 1)
	if room.CurrentStagePosition != 1 || !room.Active {
		t.Fatalf("room moved despite failed activation: %+v", room)
	}

	// Once the quiz service recovers the same advance goes through.
	module.Quiz.Fail = false
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("advance after recovery: %v", err)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 1 {
		t.Fatalf("score after recovered advance = %d, want 1", got)
	}
}

func TestAdvanceStageAfterContestFinishedConflicts(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("advance to quiz stage: %v", err)
	}
	final, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 2, "org-1")
	if err != nil {
		t.Fatalf("advance past final stage: %v", err)
	}
	if !final.Finished {
		t.Fatalf("expected finished transition, got %+v", final)
	}

	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 2, "org-1"); !errors.Is(err, domainerrors.ErrContestFinished) {
		t.Fatalf("err = %v, want ErrContestFinished", err)
	}
	if err := module.Handler.FinishCurrentStageHandler(context.Background(), 1, 2, "org-1"); !errors.Is(err, domainerrors.ErrContestFinished) {
		t.Fatalf("err = %v, want ErrContestFinished", err)
	}
}

func TestFinishCurrentStageKeepsSessionOpen(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	module.Tally.Totals[1] = []stageports.SubmissionTotal{{SubmissionID: "sub-1", Total: 5}}

	if err := module.Handler.FinishCurrentStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("finish current stage: %v", err)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 5 {
		t.Fatalf("score after in-place finish = %d, want 5", got)
	}

	room, _, _ := module.Store.GetRoomByContest(context.Background(), 1)
	if room.CurrentStagePosition != 1 || !room.Active {
		t.Fatalf("in-place finish moved or closed the room: %+v", room)
	}
	contest, _ := module.Store.GetContest(context.Background(), 1)
	if contest.Status != contestentities.ContestStatusActive {
		t.Fatalf("contest status = %s, want ACTIVE", contest.Status)
	}
}

func TestCloseContestSurvivesUnreachableQuizService(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start jury stage: %v", err)
	}
	if _, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("advance to quiz stage: %v", err)
	}
	module.Quiz.Fail = true

	if err := module.Handler.CloseContestHandler(context.Background(), 1, "org-1"); err != nil {
		t.Fatalf("close contest: %v", err)
	}
	contest, _ := module.Store.GetContest(context.Background(), 1)
	if contest.Status != contestentities.ContestStatusFinished {
		t.Fatalf("contest status = %s, want FINISHED", contest.Status)
	}
	room, _, _ := module.Store.GetRoomByContest(context.Background(), 1)
	if room.Active || room.ClosedAt == nil {
		t.Fatalf("room still open after close: %+v", room)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 0 {
		t.Fatalf("unreachable quiz still scored %d points", got)
	}
}

func TestCloseContestRequiresOrganizer(t *testing.T) {
	module := sessionorchestrator.NewInMemoryModule(nil, nil)
	seedLiveContest(module)
	openRoom(t, module)

	if err := module.Handler.CloseContestHandler(context.Background(), 1, "mallory"); !errors.Is(err, domainerrors.ErrNotOrganizer) {
		t.Fatalf("err = %v, want ErrNotOrganizer", err)
	}
}

func openRoom(t *testing.T, module sessionorchestrator.Module) {
	t.Helper()
	if _, err := module.Handler.OpenRoomHandler(context.Background(), 1, "org-1"); err != nil {
		t.Fatalf("open room: %v", err)
	}
}
