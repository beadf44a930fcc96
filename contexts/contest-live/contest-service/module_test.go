package contestservice_test

import (
	"context"
	"errors"
	"testing"

	contestservice "compezze/contexts/contest-live/contest-service"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	httptransport "compezze/contexts/contest-live/contest-service/transport/http"
	stageregistry "compezze/contexts/contest-live/stage-registry"
)

func newContest(t *testing.T, module contestservice.Module) httptransport.ContestResponse {
	t.Helper()
	contest, err := module.Handler.CreateContestHandler(context.Background(), "org-1", httptransport.CreateContestRequest{
		Name:           "City Music Contest",
		Category:       "MUSIC",
		OpenForEntries: true,
	})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}
	return contest
}

func juryStageRequest(name string) httptransport.CreateStageRequest {
	return httptransport.CreateStageRequest{
		Type: "JURY_VOTE",
		Name: name,
		JuryVote: &httptransport.JuryVoteSettingsRequest{
			Weight:     1,
			MaxScore:   10,
			RevealMode: "IMMEDIATE",
		},
	}
}

func TestCreateContestEnrollsOrganizer(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	if contest.Status != "CREATED" || contest.OrganizerID != "org-1" {
		t.Fatalf("unexpected contest: %+v", contest)
	}
	organizer, found, err := module.Store.GetParticipantByUser(context.Background(), contest.ContestID, "org-1")
	if err != nil || !found {
		t.Fatalf("organizer not enrolled: found=%v err=%v", found, err)
	}
	if !organizer.HasRole("ORGANIZER") {
		t.Fatalf("organizer roles = %v", organizer.Roles)
	}
}

func TestCreateContestValidatesInput(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	cases := []struct {
		name string
		req  httptransport.CreateContestRequest
	}{
		{"empty name", httptransport.CreateContestRequest{Name: "   "}},
		{"unknown category", httptransport.CreateContestRequest{Name: "x", Category: "KNITTING"}},
		{"negative limit", httptransport.CreateContestRequest{Name: "x", ParticipantLimit: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := module.Handler.CreateContestHandler(context.Background(), "org-1", tc.req); !errors.Is(err, domainerrors.ErrInvalidContestInput) {
				t.Fatalf("err = %v, want ErrInvalidContestInput", err)
			}
		})
	}
}

func TestAddStageAssignsDensePositions(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	first, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("Semifinal"))
	if err != nil {
		t.Fatalf("add first stage: %v", err)
	}
	second, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", httptransport.CreateStageRequest{
		Type: "QUIZ",
		Name: "Trivia",
		Quiz: &httptransport.QuizSettingsRequest{QuizFormID: 7, Weight: 2, MaxParticipants: 50, TimePerQuestion: 30},
	})
	if err != nil {
		t.Fatalf("add second stage: %v", err)
	}
	if first.Position != 1 || second.Position != 2 {
		t.Fatalf("positions = %d, %d; want 1, 2", first.Position, second.Position)
	}
}

func TestAddStageAuthorizationAndEditWindow(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	if _, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "mallory", juryStageRequest("x")); !errors.Is(err, domainerrors.ErrNotOrganizer) {
		t.Fatalf("err = %v, want ErrNotOrganizer", err)
	}

	module.Store.SetContestStatus(contest.ContestID, "ACTIVE")
	if _, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("x")); !errors.Is(err, domainerrors.ErrContestNotEditable) {
		t.Fatalf("err = %v, want ErrContestNotEditable", err)
	}
}

func TestAddStageRejectsInvalidSettings(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	req := httptransport.CreateStageRequest{
		Type:     "JURY_VOTE",
		Name:     "Broken",
		JuryVote: &httptransport.JuryVoteSettingsRequest{Weight: 0, MaxScore: 10, RevealMode: "IMMEDIATE"},
	}
	if _, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", req); !errors.Is(err, stageregistry.ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}
}

func TestUpdateStagePatchesOnlyProvidedFields(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	stage, err := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("Semifinal"))
	if err != nil {
		t.Fatalf("add stage: %v", err)
	}

	weight := 3.0
	updated, err := module.Handler.UpdateStageHandler(context.Background(), contest.ContestID, stage.StageID, "org-1", httptransport.UpdateStageRequest{
		JuryVote: &httptransport.JuryVotePatchRequest{Weight: &weight},
	})
	if err != nil {
		t.Fatalf("update stage: %v", err)
	}
	if updated.Settings.Weight != 3 {
		t.Fatalf("weight = %v, want 3", updated.Settings.Weight)
	}
	if updated.Name != "Semifinal" || updated.Settings.MaxScore != 10 {
		t.Fatalf("unrelated fields changed: %+v", updated)
	}
}

func TestReorderStagesRequiresFullPermutation(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	first, _ := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("A"))
	second, _ := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("B"))
	third, _ := module.Handler.AddStageHandler(context.Background(), contest.ContestID, "org-1", juryStageRequest("C"))

	cases := []struct {
		name  string
		order []int64
	}{
		{"missing stage", []int64{first.StageID, second.StageID}},
		{"unknown stage", []int64{first.StageID, second.StageID, 999}},
		{"duplicated stage", []int64{first.StageID, second.StageID, second.StageID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := module.Handler.ReorderStagesHandler(context.Background(), contest.ContestID, "org-1", httptransport.ReorderStagesRequest{OrderedStageIDs: tc.order})
			if !errors.Is(err, domainerrors.ErrStagePermutation) {
				t.Fatalf("err = %v, want ErrStagePermutation", err)
			}
		})
	}

	err := module.Handler.ReorderStagesHandler(context.Background(), contest.ContestID, "org-1", httptransport.ReorderStagesRequest{
		OrderedStageIDs: []int64{third.StageID, first.StageID, second.StageID},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	details, err := module.Handler.GetContestDetailsHandler(context.Background(), contest.ContestID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	got := make([]int64, 0, len(details.Stages))
	for _, settings := range details.Stages {
		got = append(got, settings.StageID)
	}
	want := []int64{third.StageID, first.StageID, second.StageID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage order = %v, want %v", got, want)
		}
	}
}

func TestJoinContestIsIdempotent(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	first, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if first.Replayed || len(first.Roles) != 1 || first.Roles[0] != "COMPETITOR" {
		t.Fatalf("unexpected first join: %+v", first)
	}

	second, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{})
	if err != nil {
		t.Fatalf("replay join: %v", err)
	}
	if !second.Replayed || second.ParticipantID != first.ParticipantID {
		t.Fatalf("replay created a new participant: %+v vs %+v", first, second)
	}
}

func TestJoinContestLimits(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest, err := module.Handler.CreateContestHandler(context.Background(), "org-1", httptransport.CreateContestRequest{
		Name:             "Small Contest",
		OpenForEntries:   true,
		ParticipantLimit: 2,
	})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}

	// The organizer's own membership occupies one slot.
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); err != nil {
		t.Fatalf("join within limit: %v", err)
	}
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "bob", httptransport.JoinContestRequest{}); !errors.Is(err, domainerrors.ErrParticipantLimit) {
		t.Fatalf("err = %v, want ErrParticipantLimit", err)
	}
}

func TestJoinContestClosedForEntries(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest, err := module.Handler.CreateContestHandler(context.Background(), "org-1", httptransport.CreateContestRequest{Name: "Closed"})
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); !errors.Is(err, domainerrors.ErrContestClosedToEntry) {
		t.Fatalf("err = %v, want ErrContestClosedToEntry", err)
	}
}

func TestManageRoles(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	joined, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	promoted, err := module.Handler.ManageRolesHandler(context.Background(), contest.ContestID, joined.ParticipantID, "org-1", httptransport.ManageRolesRequest{
		Roles: []string{"COMPETITOR", "JURY"},
	})
	if err != nil {
		t.Fatalf("manage roles: %v", err)
	}
	if len(promoted.Roles) != 2 {
		t.Fatalf("roles = %v", promoted.Roles)
	}

	if _, err := module.Handler.ManageRolesHandler(context.Background(), contest.ContestID, joined.ParticipantID, "alice", httptransport.ManageRolesRequest{
		Roles: []string{"JURY"},
	}); !errors.Is(err, domainerrors.ErrNotOrganizer) {
		t.Fatalf("err = %v, want ErrNotOrganizer", err)
	}
	if _, err := module.Handler.ManageRolesHandler(context.Background(), contest.ContestID, joined.ParticipantID, "org-1", httptransport.ManageRolesRequest{
		Roles: []string{"WIZARD"},
	}); !errors.Is(err, domainerrors.ErrInvalidContestInput) {
		t.Fatalf("err = %v, want ErrInvalidContestInput", err)
	}
}

func TestSubmitEntryLifecycle(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)

	// Submitting without joining first is rejected.
	entry := httptransport.SubmitEntryRequest{ObjectKey: "uploads/song.mp3", ContentType: "audio/mpeg"}
	if _, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", entry); !errors.Is(err, domainerrors.ErrParticipantNotFound) {
		t.Fatalf("err = %v, want ErrParticipantNotFound", err)
	}

	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	submission, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", entry)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.Status != "PENDING" || submission.SubmissionID == "" {
		t.Fatalf("unexpected submission: %+v", submission)
	}

	if _, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", entry); !errors.Is(err, domainerrors.ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}
}

func TestReviewSubmissionRules(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	submission, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", httptransport.SubmitEntryRequest{ObjectKey: "uploads/photo.jpg"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "alice", httptransport.ReviewSubmissionRequest{Status: "APPROVED"}); !errors.Is(err, domainerrors.ErrReviewForbidden) {
		t.Fatalf("err = %v, want ErrReviewForbidden", err)
	}
	if _, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "org-1", httptransport.ReviewSubmissionRequest{Status: "PENDING"}); !errors.Is(err, domainerrors.ErrReviewToPending) {
		t.Fatalf("err = %v, want ErrReviewToPending", err)
	}
	if _, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "org-1", httptransport.ReviewSubmissionRequest{Status: "REJECTED"}); !errors.Is(err, domainerrors.ErrRejectionComment) {
		t.Fatalf("err = %v, want ErrRejectionComment", err)
	}

	rejected, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "org-1", httptransport.ReviewSubmissionRequest{
		Status:  "REJECTED",
		Comment: "out of focus",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != "REJECTED" || rejected.Comment != "out of focus" {
		t.Fatalf("unexpected rejection: %+v", rejected)
	}

	// Approval discards the rejection note.
	approved, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "org-1", httptransport.ReviewSubmissionRequest{
		Status:  "APPROVED",
		Comment: "fine after second look",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != "APPROVED" || approved.Comment != "" {
		t.Fatalf("unexpected approval: %+v", approved)
	}
}

func TestModeratorCanReview(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	mod, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "mia", httptransport.JoinContestRequest{})
	if err != nil {
		t.Fatalf("join moderator: %v", err)
	}
	if _, err := module.Handler.ManageRolesHandler(context.Background(), contest.ContestID, mod.ParticipantID, "org-1", httptransport.ManageRolesRequest{
		Roles: []string{"MODERATOR"},
	}); err != nil {
		t.Fatalf("promote moderator: %v", err)
	}
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	submission, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", httptransport.SubmitEntryRequest{ObjectKey: "uploads/clip.mp4"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, submission.SubmissionID, "mia", httptransport.ReviewSubmissionRequest{Status: "APPROVED"})
	if err != nil {
		t.Fatalf("moderator review: %v", err)
	}
	if approved.Status != "APPROVED" {
		t.Fatalf("status = %s", approved.Status)
	}

	listed, err := module.Handler.ListSubmissionsForReviewHandler(context.Background(), contest.ContestID, "mia", "")
	if err != nil {
		t.Fatalf("list for review: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d submissions, want 1", len(listed))
	}
}

func TestWithdrawSubmission(t *testing.T) {
	module := contestservice.NewInMemoryModule(nil, nil)
	contest := newContest(t, module)
	if _, err := module.Handler.JoinContestHandler(context.Background(), contest.ContestID, "alice", httptransport.JoinContestRequest{}); err != nil {
		t.Fatalf("join: %v", err)
	}
	submission, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", httptransport.SubmitEntryRequest{ObjectKey: "uploads/demo.wav"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submission.Status != "PENDING" {
		t.Fatalf("submission status = %s, want PENDING", submission.Status)
	}

	if err := module.Handler.WithdrawSubmissionHandler(context.Background(), contest.ContestID, "alice"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := module.Handler.WithdrawSubmissionHandler(context.Background(), contest.ContestID, "alice"); !errors.Is(err, domainerrors.ErrSubmissionNotFound) {
		t.Fatalf("err = %v, want ErrSubmissionNotFound", err)
	}

	// A reviewed entry can no longer be withdrawn.
	resubmitted, err := module.Handler.SubmitEntryHandler(context.Background(), contest.ContestID, "alice", httptransport.SubmitEntryRequest{ObjectKey: "uploads/demo2.wav"})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if _, err := module.Handler.ReviewSubmissionHandler(context.Background(), contest.ContestID, resubmitted.SubmissionID, "org-1", httptransport.ReviewSubmissionRequest{Status: "APPROVED"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := module.Handler.WithdrawSubmissionHandler(context.Background(), contest.ContestID, "alice"); !errors.Is(err, domainerrors.ErrSubmissionNotPending) {
		t.Fatalf("err = %v, want ErrSubmissionNotPending", err)
	}
}
