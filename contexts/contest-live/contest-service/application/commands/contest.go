package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "compezze/contexts/contest-live/contest-service/application"
	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
)

type CreateContestCommand struct {
	OrganizerID      string
	Name             string
	Description      string
	Location         string
	Category         string
	ParticipantLimit int
	StartDate        time.Time
	EndDate          time.Time
	Private          bool
	OpenForEntries   bool
	CoverImageKey    string
	DisplayName      string
}

// UpdateContestCommand is a field-level patch; nil fields are no-ops.
type UpdateContestCommand struct {
	Name             *string
	Description      *string
	Location         *string
	ParticipantLimit *int
	StartDate        *time.Time
	EndDate          *time.Time
	Private          *bool
	OpenForEntries   *bool
	CoverImageKey    *string
}

// ContestUseCase owns contest creation and organizer-side edits. The creating
// organizer is enrolled as a participant immediately so role checks and
// submissions have one lookup path for every user.
type ContestUseCase struct {
	Contests     ports.ContestRepository
	Participants ports.ParticipantRepository
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc ContestUseCase) CreateContest(ctx context.Context, cmd CreateContestCommand) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	contest := entities.Contest{
		Name:             strings.TrimSpace(cmd.Name),
		Description:      strings.TrimSpace(cmd.Description),
		Location:         strings.TrimSpace(cmd.Location),
		Category:         entities.ContestCategory(strings.TrimSpace(cmd.Category)),
		ParticipantLimit: cmd.ParticipantLimit,
		StartDate:        cmd.StartDate,
		EndDate:          cmd.EndDate,
		Private:          cmd.Private,
		OpenForEntries:   cmd.OpenForEntries,
		OrganizerID:      strings.TrimSpace(cmd.OrganizerID),
		Status:           entities.ContestStatusCreated,
		CoverImageKey:    strings.TrimSpace(cmd.CoverImageKey),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if contest.Category == "" {
		contest.Category = entities.CategoryOther
	}
	if err := validateContestBasics(contest); err != nil {
		return entities.Contest{}, err
	}

	contest, err := uc.Contests.CreateContest(ctx, contest)
	if err != nil {
		return entities.Contest{}, err
	}

	organizer := entities.Participant{
		ContestID:   contest.ContestID,
		UserID:      contest.OrganizerID,
		Roles:       []entities.ContestRole{entities.RoleOrganizer},
		DisplayName: strings.TrimSpace(cmd.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := uc.Participants.AddParticipant(ctx, organizer); err != nil {
		return entities.Contest{}, err
	}

	logger.Info("contest created",
		"event", "contest_created",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contest.ContestID,
		"organizer_id", contest.OrganizerID,
		"category", string(contest.Category),
	)
	return contest, nil
}

func (uc ContestUseCase) UpdateContest(ctx context.Context, contestID int64, actorUserID string, cmd UpdateContestCommand) (entities.Contest, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return entities.Contest{}, err
	}
	if !isOrganizer(contest, actorUserID) {
		return entities.Contest{}, domainerrors.ErrNotOrganizer
	}
	if contest.Status == entities.ContestStatusFinished {
		return entities.Contest{}, domainerrors.ErrContestNotEditable
	}

	if cmd.Name != nil {
		contest.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil {
		contest.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Location != nil {
		contest.Location = strings.TrimSpace(*cmd.Location)
	}
	if cmd.ParticipantLimit != nil {
		contest.ParticipantLimit = *cmd.ParticipantLimit
	}
	if cmd.StartDate != nil {
		contest.StartDate = *cmd.StartDate
	}
	if cmd.EndDate != nil {
		contest.EndDate = *cmd.EndDate
	}
	if cmd.Private != nil {
		contest.Private = *cmd.Private
	}
	if cmd.OpenForEntries != nil {
		contest.OpenForEntries = *cmd.OpenForEntries
	}
	if cmd.CoverImageKey != nil {
		contest.CoverImageKey = strings.TrimSpace(*cmd.CoverImageKey)
	}
	if err := validateContestBasics(contest); err != nil {
		return entities.Contest{}, err
	}
	contest.UpdatedAt = uc.Clock.Now().UTC()

	if err := uc.Contests.UpdateContest(ctx, contest); err != nil {
		return entities.Contest{}, err
	}
	application.ResolveLogger(uc.Logger).Info("contest updated",
		"event", "contest_updated",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contest.ContestID,
	)
	return contest, nil
}

func validateContestBasics(contest entities.Contest) error {
	if contest.Name == "" || contest.OrganizerID == "" {
		return domainerrors.ErrInvalidContestInput
	}
	if contest.ParticipantLimit < 0 {
		return domainerrors.ErrInvalidContestInput
	}
	if !contest.StartDate.IsZero() && !contest.EndDate.IsZero() && !contest.EndDate.After(contest.StartDate) {
		return domainerrors.ErrInvalidContestInput
	}
	switch contest.Category {
	case entities.CategoryMusic, entities.CategoryPhotography, entities.CategoryArt, entities.CategoryFilm, entities.CategoryOther:
		return nil
	default:
		return domainerrors.ErrInvalidContestInput
	}
}

func isOrganizer(contest entities.Contest, actorUserID string) bool {
	return strings.EqualFold(strings.TrimSpace(contest.OrganizerID), strings.TrimSpace(actorUserID))
}
