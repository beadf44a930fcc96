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

type JoinContestCommand struct {
	ContestID   int64
	UserID      string
	DisplayName string
	Bio         string
	AvatarKey   string
}

type JoinContestResult struct {
	Participant entities.Participant
	Replayed    bool
}

// MembershipUseCase owns contest membership: joining and role management.
type MembershipUseCase struct {
	Contests     ports.ContestRepository
	Participants ports.ParticipantRepository
	Sink         ports.NotificationSink
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// JoinContest enrolls a user as COMPETITOR. Joining twice is a replay and
// returns the existing membership; the unique (contest, user) constraint
// settles concurrent joins.
func (uc MembershipUseCase) JoinContest(ctx context.Context, cmd JoinContestCommand) (JoinContestResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return JoinContestResult{}, domainerrors.ErrInvalidContestInput
	}

	contest, err := uc.Contests.GetContest(ctx, cmd.ContestID)
	if err != nil {
		return JoinContestResult{}, err
	}

	if existing, found, err := uc.Participants.GetParticipantByUser(ctx, cmd.ContestID, userID); err != nil {
		return JoinContestResult{}, err
	} else if found {
		return JoinContestResult{Participant: existing, Replayed: true}, nil
	}

	if contest.Status == entities.ContestStatusFinished || !contest.OpenForEntries {
		return JoinContestResult{}, domainerrors.ErrContestClosedToEntry
	}
	if contest.ParticipantLimit > 0 {
		count, err := uc.Participants.CountParticipants(ctx, cmd.ContestID)
		if err != nil {
			return JoinContestResult{}, err
		}
		if count >= contest.ParticipantLimit {
			return JoinContestResult{}, domainerrors.ErrParticipantLimit
		}
	}

	now := uc.Clock.Now().UTC()
	participant, err := uc.Participants.AddParticipant(ctx, entities.Participant{
		ContestID:   cmd.ContestID,
		UserID:      userID,
		Roles:       []entities.ContestRole{entities.RoleCompetitor},
		DisplayName: strings.TrimSpace(cmd.DisplayName),
		Bio:         strings.TrimSpace(cmd.Bio),
		AvatarKey:   strings.TrimSpace(cmd.AvatarKey),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return JoinContestResult{}, err
	}

	uc.notifyJoined(ctx, cmd.ContestID, participant)
	logger.Info("participant joined",
		"event", "contest_participant_joined",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", cmd.ContestID,
		"participant_id", participant.ParticipantID,
	)
	return JoinContestResult{Participant: participant}, nil
}

// ManageRoles replaces a participant's role set. Organizer only; the organizer
// cannot strip their own ORGANIZER role.
func (uc MembershipUseCase) ManageRoles(
	ctx context.Context,
	contestID, participantID int64,
	actorUserID string,
	roles []entities.ContestRole,
) (entities.Participant, error) {
	contest, err := uc.Contests.GetContest(ctx, contestID)
	if err != nil {
		return entities.Participant{}, err
	}
	if !isOrganizer(contest, actorUserID) {
		return entities.Participant{}, domainerrors.ErrNotOrganizer
	}
	if len(roles) == 0 {
		return entities.Participant{}, domainerrors.ErrInvalidContestInput
	}
	seen := make(map[entities.ContestRole]bool, len(roles))
	for _, role := range roles {
		switch role {
		case entities.RoleOrganizer, entities.RoleJury, entities.RoleModerator, entities.RoleCompetitor:
		default:
			return entities.Participant{}, domainerrors.ErrInvalidContestInput
		}
		if seen[role] {
			return entities.Participant{}, domainerrors.ErrInvalidContestInput
		}
		seen[role] = true
	}

	participant, err := uc.Participants.GetParticipant(ctx, contestID, participantID)
	if err != nil {
		return entities.Participant{}, err
	}
	if strings.EqualFold(participant.UserID, contest.OrganizerID) && !seen[entities.RoleOrganizer] {
		return entities.Participant{}, domainerrors.ErrInvalidContestInput
	}

	participant.Roles = append([]entities.ContestRole(nil), roles...)
	participant.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Participants.UpdateParticipant(ctx, participant); err != nil {
		return entities.Participant{}, err
	}

	application.ResolveLogger(uc.Logger).Info("participant roles changed",
		"event", "contest_roles_changed",
		"module", "contest-live/contest-service",
		"layer", "application",
		"contest_id", contestID,
		"participant_id", participantID,
	)
	return participant, nil
}

func (uc MembershipUseCase) notifyJoined(ctx context.Context, contestID int64, participant entities.Participant) {
	if uc.Sink == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     events.TypeParticipantJoined,
		SourceService: "contest-service",
		OccurredAtUTC: uc.Clock.Now().UTC(),
		ContestID:     contestID,
		Payload: events.ParticipantJoinedPayload{
			ParticipantID: participant.ParticipantID,
			UserID:        participant.UserID,
		},
	}
	if err := uc.Sink.Publish(ctx, envelope); err != nil {
		application.ResolveLogger(uc.Logger).Warn("membership notification dropped",
			"event", "contest_notification_dropped",
			"module", "contest-live/contest-service",
			"layer", "application",
			"contest_id", contestID,
			"error", err.Error(),
		)
	}
}
