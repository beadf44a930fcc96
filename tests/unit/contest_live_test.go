package unit

import (
	"context"
	"testing"
	"time"

	contestservice "compezze/contexts/contest-live/contest-service"
	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	contesthttp "compezze/contexts/contest-live/contest-service/transport/http"
	sessionorchestrator "compezze/contexts/contest-live/session-orchestrator"
	stageports "compezze/contexts/contest-live/stage-registry/ports"
	votingengine "compezze/contexts/contest-live/voting-engine"
	votingports "compezze/contexts/contest-live/voting-engine/ports"
	votinghttp "compezze/contexts/contest-live/voting-engine/transport/http"
	"compezze/internal/platform/messaging"
	"compezze/internal/shared/events"
)

func subscribeEvents(t *testing.T, hub *messaging.Hub, eventType string) <-chan events.Envelope {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	received := make(chan events.Envelope, 16)
	err := hub.Subscribe(ctx, eventType, "unit-test", func(_ context.Context, envelope events.Envelope) error {
		received <- envelope
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe %s: %v", eventType, err)
	}
	return received
}

func waitForEvent(t *testing.T, received <-chan events.Envelope) events.Envelope {
	t.Helper()
	select {
	case envelope := <-received:
		return envelope
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Envelope{}
	}
}

func TestContestEntryFlowPublishesLiveEvents(t *testing.T) {
	hub := messaging.NewHub(nil)
	joined := subscribeEvents(t, hub, events.TypeParticipantJoined)
	presented := subscribeEvents(t, hub, events.TypeSubmissionPresented)
	reviewed := subscribeEvents(t, hub, events.TypeSubmissionReviewed)

	module := contestservice.NewInMemoryModule(hub, nil)
	contest, err := module.Handler.CreateContestHandler(context.Background(), "org-1", contesthttp.CreateContestRequest{
		Name:           "Street Art Contest",
		Category:       "ART",
		OpenForEntries: true,
	})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}

	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", contesthttp.JoinContestRequest{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	joinEvent := waitForEvent(t, joined)
	if joinEvent.ContestID != contest.ContestID || joinEvent.EventID == "" {
		t.Fatalf("unexpected join event: %+v", joinEvent)
	}

	submission, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", contesthttp.SubmitEntryRequest{
		ObjectKey: "uploads/mural.jpg",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if waitForEvent(t, presented).EventType != events.TypeSubmissionPresented {
		t.Fatal("expected a submission presented event")
	}

	if _, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "org-1", contesthttp.ReviewSubmissionRequest{
		Status: "APPROVED",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	reviewEvent := waitForEvent(t, reviewed)
	if reviewEvent.SourceService != "contest-service" {
		t.Fatalf("source service = %s", reviewEvent.SourceService)
	}
}

func TestLiveSessionStageCyclePublishesTransitions(t *testing.T) {
	hub := messaging.NewHub(nil)
	stageChanged := subscribeEvents(t, hub, events.TypeStageChanged)
	finished := subscribeEvents(t, hub, events.TypeContestFinished)

	module := sessionorchestrator.NewInMemoryModule(hub, nil)
	juryStage := contestentities.Stage{
		StageID:   1,
		ContestID: 1,
		Name:      "Jury Round",
		Position:  1,
		Type:      contestentities.StageTypeJuryVote,
		JuryVote:  &contestentities.JuryVoteSettings{Weight: 1, MaxScore: 10, RevealMode: contestentities.JuryRevealImmediate},
	}
	module.Stages.Put(juryStage)
	module.Store.SetContest(contestentities.Contest{
		ContestID:   1,
		Name:        "Final Night",
		OrganizerID: "org-1",
		Status:      contestentities.ContestStatusCreated,
		Stages:      []contestentities.Stage{juryStage},
	})
	module.Store.SetParticipantScore(1, "alice", 0)
	module.Owners["sub-1"] = "alice"

	if _, err := module.Handler.OpenRoomHandler(context.Background(), 1, "org-1"); err != nil {
		t.Fatalf("open room: %v", err)
	}
	if _, err := module.Handler.StartStageHandler(context.Background(), 1, 1, "org-1"); err != nil {
		t.Fatalf("start stage: %v", err)
	}
	changed := waitForEvent(t, stageChanged)
	if changed.EventType != events.TypeStageChanged || changed.ContestID != 1 {
		t.Fatalf("unexpected stage change event: %+v", changed)
	}

	module.Tally.Totals[1] = []stageports.SubmissionTotal{{SubmissionID: "sub-1", Total: 6}}
	transition, err := module.Handler.AdvanceStageHandler(context.Background(), 1, 1, "org-1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !transition.Finished {
		t.Fatalf("expected session to finish after the only stage, got %+v", transition)
	}
	if got := module.Store.ParticipantScore(1, "alice"); got != 6 {
		t.Fatalf("alice score = %d, want 6", got)
	}
	if waitForEvent(t, finished).EventType != events.TypeContestFinished {
		t.Fatal("expected a contest finished event")
	}
}

func TestJuryVotePublishesVoteRecorded(t *testing.T) {
	hub := messaging.NewHub(nil)
	recorded := subscribeEvents(t, hub, events.TypeVoteRecorded)

	module := votingengine.NewInMemoryModule(hub, nil)
	module.Store.SetContest(contestentities.Contest{ContestID: 1, Status: contestentities.ContestStatusActive})
	module.Store.SetStage(contestentities.Stage{
		StageID:   10,
		ContestID: 1,
		Position:  1,
		Type:      contestentities.StageTypeJuryVote,
		JuryVote:  &contestentities.JuryVoteSettings{Weight: 1, MaxScore: 10, RevealMode: contestentities.JuryRevealImmediate},
	})
	module.Store.SetRoom(votingports.RoomProjection{
		RoomID:               "room-1",
		ContestID:            1,
		RoomKey:              "XK42PM",
		CurrentStagePosition: 1,
		Active:               true,
	})
	module.Store.SetParticipant(contestentities.Participant{
		ParticipantID: 100,
		ContestID:     1,
		UserID:        "judge-1",
		Roles:         []contestentities.ContestRole{contestentities.RoleJury},
	})
	module.Store.SetSubmission(contestentities.Submission{
		SubmissionID:  "sub-1",
		ContestID:     1,
		ParticipantID: 200,
		Status:        contestentities.SubmissionStatusApproved,
	})

	resp, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", votinghttp.CastVoteRequest{
		ContestID:    1,
		StageID:      10,
		SubmissionID: "sub-1",
		Score:        9,
	})
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if resp.RunningTotal != 9 {
		t.Fatalf("running total = %f, want 9", resp.RunningTotal)
	}

	event := waitForEvent(t, recorded)
	if event.EventType != events.TypeVoteRecorded || event.ContestID != 1 {
		t.Fatalf("unexpected vote event: %+v", event)
	}
}
