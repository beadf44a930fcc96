package entities

import "time"

type ContestRole string

const (
	RoleOrganizer  ContestRole = "ORGANIZER"
	RoleJury       ContestRole = "JURY"
	RoleModerator  ContestRole = "MODERATOR"
	RoleCompetitor ContestRole = "COMPETITOR"
)

// Participant is a user's membership in one contest. TotalScore is mutated
// exclusively by stage-finish reconciliation.
type Participant struct {
	ParticipantID int64
	ContestID     int64
	UserID        string
	Roles         []ContestRole
	TotalScore    int64
	DisplayName   string
	Bio           string
	AvatarKey     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Participant) HasRole(role ContestRole) bool {
	for _, held := range p.Roles {
		if held == role {
			return true
		}
	}
	return false
}
