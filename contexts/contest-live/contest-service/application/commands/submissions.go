package commands

import (
	"context"
	"log/slog"
	"strings"

	application "compezze/contexts/contest-live/contest-service/application"
	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
	"compezze/internal/shared/events"
)

type SubmitEntryCommand struct {
	ContestID        int64
	UserID           string
	File             entities.FileRef
	OriginalFilename string
}

type ReviewSubmissionCommand struct {
	ContestID    int64
	SubmissionID string
	ReviewerID   string
	Status       entities.SubmissionStatus
	Comment      string
}

// SubmissionUseCase owns the entry lifecycle: submit, review, withdraw. The
// file itself lives in object storage; only the reference is carried here.
type SubmissionUseCase struct {
	Contests     ports.ContestRepository
	Participants ports.ParticipantRepository
	Submissions  ports.SubmissionRepository
	Sink         ports.NotificationSink
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// SubmitEntry records a participant's single entry as PENDING. The unique
// (contest, participant) constraint rejects a second entry.
func (uc SubmissionUseCase) SubmitEntry(ctx context.Context, cmd SubmitEntryCommand) (entities.Submission, error) {
	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return entities.Submission{}, err
	}
	if contest.Status == entities.ContestStatusFinished || !contest.OpenForEntries {
		return entities.Submission{}, domainerrors.ErrContestClosedToEntry
	}
	if strings.TrimSpace(cmd.File.ObjectKey) == "" {
		return entities.Submission{}, domainerrors.ErrInvalidContestInput
	}

	participant, found, err := uc.Participants.GetParticipantByUser(ctx, cmd.ContestID, strings.TrimSpace(cmd.UserID))
	if err != nil {
		return entities.Submission{}, err
	}
	if !found {
		return entities.Submission{}, domainerrors.ErrParticipantNotFound
	}

	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	now := uc.Clock.Now().UTC()
	submission := entities.Submission{
		SubmissionID:     submissionID,
		ContestID:        cmd.ContestID,
		ParticipantID:    participant.ParticipantID,
		Status:           entities.SubmissionStatusPending,
		File:             cmd.File,
		OriginalFilename: strings.TrimSpace(cmd.OriginalFilename),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.Submissions.CreateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	uc.publish(ctx, cmd.ContestID, events.TypeSubmissionPresented, events.SubmissionPresentedPayload{
		SubmissionID: submission.SubmissionID,
	})
	application.ResolveLogger(uc.Logger).Info("entry submitted",
		"event", "contest_entry_submitted",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"submission_id", submission.SubmissionID,
		"participant_id", participant.ParticipantID,
	)
	return submission, nil
}

// ReviewSubmission moves an entry to APPROVED or REJECTED. Reviewers are the
// organizer or a MODERATOR participant. A submission never goes back to
// PENDING; rejection demands a comment, approval discards any previous one.
func (uc SubmissionUseCase) ReviewSubmission(ctx context.Context, cmd ReviewSubmissionCommand) (entities.Submission, error) {
	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return entities.Submission{}, err
	}
	if err := uc.authorizeReviewer(ctx, contest, cmd.ReviewerID); err != nil {
		return entities.Submission{}, err
	}

	switch cmd.Status {
	case entities.SubmissionStatusPending:
		return entities.Submission{}, domainerrors.ErrReviewToPending
	case entities.SubmissionStatusApproved, entities.SubmissionStatusRejected:
	default:
		return entities.Submission{}, domainerrors.ErrInvalidContestInput
	}
	comment := strings.TrimSpace(cmd.Comment)
	if cmd.Status == entities.SubmissionStatusRejected && comment == "" {
		return entities.Submission{}, domainerrors.ErrRejectionComment
	}

	submission, err := uc.Submissions.GetSubmission(ctx, cmd.ContestID, cmd.SubmissionID)
	if err != nil {
		return entities.Submission{}, err
	}
	submission.Status = cmd.Status
	if cmd.Status == entities.SubmissionStatusApproved {
		comment = ""
	}
	submission.Comment = comment
	submission.UpdatedAt = uc.Clock.Now().UTC()

	if err := uc.Submissions.UpdateSubmission(ctx, submission); err != nil {
		return entities.Submission{}, err
	}

	uc.publish(ctx, cmd.ContestID, events.TypeSubmissionReviewed, events.SubmissionReviewedPayload{
		SubmissionID: submission.SubmissionID,
		Status:       string(submission.Status),
	})
	application.ResolveLogger(uc.Logger).Info("submission reviewed",
		"event", "contest_submission_reviewed",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"submission_id", submission.SubmissionID,
		"status", string(submission.Status),
	)
	return submission, nil
}

// WithdrawSubmission deletes the caller's own entry while it is still PENDING.
// Reviewed entries stay: scores may already reference them.
func (uc SubmissionUseCase) WithdrawSubmission(ctx context.Context, contestID int64, userID string) error {
	participant, found, err := uc.Participants.GetParticipantByUser(ctx, contestID, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrParticipantNotFound
	}

	submission, found, err := uc.Submissions.GetSubmissionByParticipant(ctx, contestID, participant.ParticipantID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrSubmissionNotFound
	}
	if submission.Status != entities.SubmissionStatusPending {
		return domainerrors.ErrSubmissionNotPending
	}

	if err := uc.Submissions.DeleteSubmission(ctx, contestID, submission.SubmissionID); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("submission withdrawn",
		"event", "contest_submission_withdrawn",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"submission_id", submission.SubmissionID,
	)
	return nil
}

func (uc SubmissionUseCase) authorizeReviewer(ctx context.Context, contest entities.Contest, reviewerID string) error {
	if isOrganizer(contest, reviewerID) {
		return nil
	}
	reviewer, found, err := uc.Participants.GetParticipantByUser(ctx, contest.ContestID, strings.TrimSpace(reviewerID))
	if err != nil {
		return err
	}
	if !found || !reviewer.HasRole(entities.RoleModerator) {
		return domainerrors.ErrReviewForbidden
	}
	return nil
}

func (uc SubmissionUseCase) publish(ctx context.Context, contestID int64, eventType string, payload any) {
	if uc.Sink == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "contest-service",
		OccurredAtUTC: uc.Clock.Now().UTC(),
		ContestID:     contestID,
		Payload:       payload,
	}
	if err := uc.Sink.Publish(ctx, envelope); err != nil {
		application.ResolveLogger(uc.Logger).Warn("submission notification dropped",
			"event", "contest_notification_dropped",
			"module", "contest-live/contest-service",
			"layer", "application",
			"contest_id", contestID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
