package votingengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	votingengine "compezze/contexts/contest-live/voting-engine"
	domainerrors "compezze/contexts/contest-live/voting-engine/domain/errors"
	"compezze/contexts/contest-live/voting-engine/ports"
	httptransport "compezze/contexts/contest-live/voting-engine/transport/http"
)

func seedRunningJuryStage(module votingengine.Module) {
	module.Store.SetContest(contestentities.Contest{
		ContestID: 1,
		Status:    contestentities.ContestStatusActive,
	})
	module.Store.SetStage(contestentities.Stage{
		StageID:   10,
		ContestID: 1,
		Name:      "Jury Round",
		Position:  2,
		Type:      contestentities.StageTypeJuryVote,
		JuryVote:  &contestentities.JuryVoteSettings{Weight: 2, MaxScore: 10, RevealMode: contestentities.JuryRevealImmediate},
	})
	module.Store.SetRoom(ports.RoomProjection{
		RoomID:               "room-1",
		ContestID:            1,
		RoomKey:              "AB12CD",
		CurrentStagePosition: 2,
		Active:               true,
	})
	module.Store.SetParticipant(contestentities.Participant{
		ParticipantID: 100,
		ContestID:     1,
		UserID:        "judge-1",
		Roles:         []contestentities.ContestRole{contestentities.RoleJury},
	})
	module.Store.SetParticipant(contestentities.Participant{
		ParticipantID: 101,
		ContestID:     1,
		UserID:        "viewer-1",
		Roles:         []contestentities.ContestRole{contestentities.RoleCompetitor},
	})
	module.Store.SetSubmission(contestentities.Submission{
		SubmissionID:  "sub-1",
		ContestID:     1,
		ParticipantID: 200,
		Status:        contestentities.SubmissionStatusApproved,
	})
}

func TestJuryVoteRecordedAndTallied(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	seedRunningJuryStage(module)

	resp, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", httptransport.CastVoteRequest{
		ContestID:    1,
		StageID:      10,
		SubmissionID: "sub-1",
		Score:        7,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if resp.Score != 7 {
		t.Fatalf("expected score 7, got %d", resp.Score)
	}
	if resp.RunningTotal != 7 {
		t.Fatalf("expected running total 7, got %f", resp.RunningTotal)
	}

	board, err := module.Handler.StageLeaderboardHandler(context.Background(), 10)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board.Items) != 1 || board.Items[0].Total != 7 {
		t.Fatalf("unexpected leaderboard: %+v", board.Items)
	}
}

func TestVotePreconditionChain(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(module votingengine.Module)
		voter   string
		req     httptransport.CastVoteRequest
		wantErr error
	}{
		{
			name: "contest not active",
			mutate: func(module votingengine.Module) {
				module.Store.SetContest(contestentities.Contest{ContestID: 1, Status: contestentities.ContestStatusFinished})
			},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 5},
			wantErr: domainerrors.ErrContestNotActive,
		},
		{
			name: "stage from another contest",
			mutate: func(module votingengine.Module) {
				module.Store.SetStage(contestentities.Stage{StageID: 99, ContestID: 2, Position: 2, Type: contestentities.StageTypeJuryVote})
			},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 99, SubmissionID: "sub-1", Score: 5},
			wantErr: domainerrors.ErrStageNotFound,
		},
		{
			name: "stage not running",
			mutate: func(module votingengine.Module) {
				module.Store.SetRoom(ports.RoomProjection{RoomID: "room-1", ContestID: 1, CurrentStagePosition: 1, Active: true})
			},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 5},
			wantErr: domainerrors.ErrStageNotRunning,
		},
		{
			name:    "voter not a participant",
			mutate:  func(votingengine.Module) {},
			voter:   "stranger",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 5},
			wantErr: domainerrors.ErrNotParticipant,
		},
		{
			name: "submission from another contest",
			mutate: func(module votingengine.Module) {
				module.Store.SetSubmission(contestentities.Submission{SubmissionID: "sub-foreign", ContestID: 2, ParticipantID: 300})
			},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-foreign", Score: 5},
			wantErr: domainerrors.ErrSubmissionNotInContest,
		},
		{
			name:    "jury role required",
			mutate:  func(votingengine.Module) {},
			voter:   "viewer-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 5},
			wantErr: domainerrors.ErrJuryRoleRequired,
		},
		{
			name:    "score above scale",
			mutate:  func(votingengine.Module) {},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 11},
			wantErr: domainerrors.ErrScoreOutOfRange,
		},
		{
			name:    "score below scale",
			mutate:  func(votingengine.Module) {},
			voter:   "judge-1",
			req:     httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 0},
			wantErr: domainerrors.ErrScoreOutOfRange,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			module := votingengine.NewInMemoryModule(nil, nil)
			seedRunningJuryStage(module)
			tc.mutate(module)

			_, err := module.Handler.CastVoteHandler(context.Background(), tc.voter, tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPublicVoteForcesScoreOne(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	seedRunningJuryStage(module)
	module.Store.SetStage(contestentities.Stage{
		StageID:    11,
		ContestID:  1,
		Name:       "Audience Round",
		Position:   2,
		Type:       contestentities.StageTypePublicVote,
		PublicVote: &contestentities.PublicVoteSettings{Weight: 1, MaxScore: 1},
	})

	resp, err := module.Handler.CastVoteHandler(context.Background(), "viewer-1", httptransport.CastVoteRequest{
		ContestID:    1,
		StageID:      11,
		SubmissionID: "sub-1",
		Score:        42,
	})
	if err != nil {
		t.Fatalf("cast public vote failed: %v", err)
	}
	if resp.Score != 1 {
		t.Fatalf("expected audience score 1, got %d", resp.Score)
	}
}

func TestDuplicateVoteRejected(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	seedRunningJuryStage(module)

	req := httptransport.CastVoteRequest{ContestID: 1, StageID: 10, SubmissionID: "sub-1", Score: 5}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", req); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", req)
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote, got %v", err)
	}
}

func TestConcurrentDuplicateVotesAcceptExactlyOne(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	seedRunningJuryStage(module)

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", httptransport.CastVoteRequest{
				ContestID:    1,
				StageID:      10,
				SubmissionID: "sub-1",
				Score:        5,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		if !errors.Is(err, domainerrors.ErrDuplicateVote) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted vote, got %d", accepted)
	}

	markers, err := module.Store.ListMarkersByStage(context.Background(), 10)
	if err != nil {
		t.Fatalf("list markers failed: %v", err)
	}
	if len(markers) != 1 {
		t.Fatalf("expected one durable marker, got %d", len(markers))
	}
}

func TestVoteSurvivesTallyOutage(t *testing.T) {
	module := votingengine.NewInMemoryModule(nil, nil)
	seedRunningJuryStage(module)
	module.Tally.Down = true

	resp, err := module.Handler.CastVoteHandler(context.Background(), "judge-1", httptransport.CastVoteRequest{
		ContestID:    1,
		StageID:      10,
		SubmissionID: "sub-1",
		Score:        6,
	})
	if err != nil {
		t.Fatalf("cast vote failed during outage: %v", err)
	}
	if resp.RunningTotal != 0 {
		t.Fatalf("expected zero running total during outage, got %f", resp.RunningTotal)
	}

	// Leaderboard falls back to the durable markers.
	board, err := module.Handler.StageLeaderboardHandler(context.Background(), 10)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board.Items) != 1 || board.Items[0].Total != 6 || board.Items[0].Votes != 1 {
		t.Fatalf("unexpected fallback leaderboard: %+v", board.Items)
	}
}
