package queries

import (
	"context"
	"log/slog"
	"strings"

	application "compezze/contexts/contest-live/contest-service/application"
	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
	stageregistry "compezze/contexts/contest-live/stage-registry"
)

// ContestDetails is the full read model for one contest.
type ContestDetails struct {
	Contest          entities.Contest
	StageSettings    []stageregistry.StageSettings
	ParticipantCount int
}

type ContestQueries struct {
	Contests     ports.ContestRepository
	Participants ports.ParticipantRepository
	Submissions  ports.SubmissionRepository
	Registry     *stageregistry.Registry
	Logger       *slog.Logger
}

func (q ContestQueries) GetContestDetails(ctx context.Context, contestID int64) (ContestDetails, error) {
	contest, err := q.Contests.GetContest(ctx, contestID)
	if err != nil {
		return ContestDetails{}, err
	}
	count, err := q.Participants.CountParticipants(ctx, contestID)
	if err != nil {
		return ContestDetails{}, err
	}

	settings := make([]stageregistry.StageSettings, 0, len(contest.Stages))
	for _, stage := range contest.Stages {
		settings = append(settings, q.Registry.Settings(stage))
	}
	return ContestDetails{
		Contest:          contest,
		StageSettings:    settings,
		ParticipantCount: count,
	}, nil
}

func (q ContestQueries) ListContests(ctx context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	return q.Contests.ListContests(ctx, filter)
}

// ListSubmissionsForReview returns the contest's submissions, optionally
// filtered by status. Organizer or MODERATOR only.
func (q ContestQueries) ListSubmissionsForReview(
	ctx context.Context,
	contestID int64,
	actorUserID string,
	status entities.SubmissionStatus,
) ([]entities.Submission, error) {
	contest, err := q.Contests.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(contest.OrganizerID), strings.TrimSpace(actorUserID)) {
		actor, found, err := q.Participants.GetParticipantByUser(ctx, contestID, strings.TrimSpace(actorUserID))
		if err != nil {
			return nil, err
		}
		if !found || !actor.HasRole(entities.RoleModerator) {
			return nil, domainerrors.ErrReviewForbidden
		}
	}

	submissions, err := q.Submissions.ListSubmissions(ctx, contestID, status)
	if err != nil {
		return nil, err
	}
	application.ResolveLogger(q.Logger).Debug("submissions listed for review",
		"event", "contest_submissions_listed",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"count", len(submissions),
	)
	return submissions, nil
}

func (q ContestQueries) GetStageSettings(ctx context.Context, contestID, stageID int64) (stageregistry.StageSettings, error) {
	contest, err := q.Contests.GetContest(ctx, contestID)
	if err != nil {
		return stageregistry.StageSettings{}, err
	}
	for _, stage := range contest.Stages {
		if stage.StageID == stageID {
			return q.Registry.Settings(stage), nil
		}
	}
	return stageregistry.StageSettings{}, domainerrors.ErrStageNotFound
}
