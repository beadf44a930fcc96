package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/voting-engine/domain/entities"
	domainerrors "compezze/contexts/contest-live/voting-engine/domain/errors"
	"compezze/contexts/contest-live/voting-engine/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveMarker inserts the durable vote record. The unique key on
// (stage_id, participant_id, submission_id) decides duplicate races.
func (r *Repository) SaveMarker(ctx context.Context, marker entities.VoteMarker) error {
	row := markerModelFromEntity(marker)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("voting_repo_save_marker_failed", err,
			"marker_id", strings.TrimSpace(marker.MarkerID),
			"stage_id", marker.StageID,
			"submission_id", strings.TrimSpace(marker.SubmissionID),
		)
	}
	return nil
}

func (r *Repository) ListMarkersByStage(ctx context.Context, stageID int64) ([]entities.VoteMarker, error) {
	var rows []voteMarkerModel
	if err := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_markers_failed", err, "stage_id", stageID)
	}
	items := make([]entities.VoteMarker, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetContest(ctx context.Context, contestID int64) (contestentities.Contest, error) {
	var row contestProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Contest{}, domainerrors.ErrContestNotFound
		}
		return contestentities.Contest{}, r.logError("voting_repo_get_contest_failed", err, "contest_id", contestID)
	}
	return contestentities.Contest{
		ContestID: row.ID,
		Status:    contestentities.ContestStatus(row.Status),
	}, nil
}

func (r *Repository) GetStage(ctx context.Context, stageID int64) (contestentities.Stage, error) {
	var row stageProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", stageID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Stage{}, domainerrors.ErrStageNotFound
		}
		return contestentities.Stage{}, r.logError("voting_repo_get_stage_failed", err, "stage_id", stageID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetRoomByContest(ctx context.Context, contestID int64) (ports.RoomProjection, bool, error) {
	var row roomProjectionModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RoomProjection{}, false, nil
		}
		return ports.RoomProjection{}, false, r.logError("voting_repo_get_room_failed", err, "contest_id", contestID)
	}
	return ports.RoomProjection{
		RoomID:               row.ID,
		ContestID:            row.ContestID,
		RoomKey:              row.RoomKey,
		CurrentStagePosition: row.CurrentStagePosition,
		Active:               row.Active,
	}, true, nil
}

func (r *Repository) GetParticipantByUser(
	ctx context.Context,
	contestID int64,
	userID string,
) (contestentities.Participant, bool, error) {
	var row participantProjectionModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Participant{}, false, nil
		}
		return contestentities.Participant{}, false, r.logError("voting_repo_get_participant_failed", err,
			"contest_id", contestID,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return contestentities.Participant{
		ParticipantID: row.ID,
		ContestID:     row.ContestID,
		UserID:        row.UserID,
		Roles:         splitRoles(row.Roles),
		TotalScore:    row.TotalScore,
	}, true, nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (contestentities.Submission, error) {
	var row submissionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return contestentities.Submission{}, r.logError("voting_repo_get_submission_failed", err,
			"submission_id", strings.TrimSpace(submissionID),
		)
	}
	return contestentities.Submission{
		SubmissionID:  row.ID,
		ContestID:     row.ContestID,
		ParticipantID: row.ParticipantID,
		Status:        contestentities.SubmissionStatus(row.Status),
	}, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-live/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
	return err
}

type voteMarkerModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	StageID       int64     `gorm:"column:stage_id;uniqueIndex:ux_vote_markers_identity"`
	ContestID     int64     `gorm:"column:contest_id"`
	ParticipantID int64     `gorm:"column:participant_id;uniqueIndex:ux_vote_markers_identity"`
	VoterUserID   string    `gorm:"column:voter_user_id"`
	SubmissionID  string    `gorm:"column:submission_id;uniqueIndex:ux_vote_markers_identity"`
	Score         int       `gorm:"column:score"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (voteMarkerModel) TableName() string {
	return "vote_markers"
}

func markerModelFromEntity(marker entities.VoteMarker) voteMarkerModel {
	row := voteMarkerModel{
		ID:            strings.TrimSpace(marker.MarkerID),
		StageID:       marker.StageID,
		ContestID:     marker.ContestID,
		ParticipantID: marker.ParticipantID,
		VoterUserID:   strings.TrimSpace(marker.VoterUserID),
		SubmissionID:  strings.TrimSpace(marker.SubmissionID),
		Score:         marker.Score,
		CreatedAt:     marker.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m voteMarkerModel) toEntity() entities.VoteMarker {
	return entities.VoteMarker{
		MarkerID:      m.ID,
		StageID:       m.StageID,
		ContestID:     m.ContestID,
		ParticipantID: m.ParticipantID,
		VoterUserID:   m.VoterUserID,
		SubmissionID:  m.SubmissionID,
		Score:         m.Score,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

type contestProjectionModel struct {
	ID     int64  `gorm:"column:id;primaryKey"`
	Status string `gorm:"column:status"`
}

func (contestProjectionModel) TableName() string {
	return "contests"
}

type stageProjectionModel struct {
	ID              int64   `gorm:"column:id;primaryKey"`
	ContestID       int64   `gorm:"column:contest_id"`
	Name            string  `gorm:"column:name"`
	DurationMinutes int     `gorm:"column:duration_minutes"`
	Position        int     `gorm:"column:position"`
	StageType       string  `gorm:"column:stage_type"`
	Weight          float64 `gorm:"column:weight"`
	MaxScore        int     `gorm:"column:max_score"`
}

func (stageProjectionModel) TableName() string {
	return "contest_stages"
}

func (m stageProjectionModel) toEntity() contestentities.Stage {
	stage := contestentities.Stage{
		StageID:         m.ID,
		ContestID:       m.ContestID,
		Name:            m.Name,
		DurationMinutes: m.DurationMinutes,
		Position:        m.Position,
		Type:            contestentities.StageType(m.StageType),
	}
	switch stage.Type {
	case contestentities.StageTypeJuryVote:
		stage.JuryVote = &contestentities.JuryVoteSettings{
			Weight:   m.Weight,
			MaxScore: m.MaxScore,
		}
	case contestentities.StageTypePublicVote:
		stage.PublicVote = &contestentities.PublicVoteSettings{
			Weight:   m.Weight,
			MaxScore: m.MaxScore,
		}
	}
	return stage
}

type roomProjectionModel struct {
	ID                   string `gorm:"column:id;primaryKey"`
	ContestID            int64  `gorm:"column:contest_id"`
	RoomKey              string `gorm:"column:room_key"`
	CurrentStagePosition int    `gorm:"column:current_stage_position"`
	Active               bool   `gorm:"column:active"`
}

func (roomProjectionModel) TableName() string {
	return "contest_rooms"
}

type participantProjectionModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	ContestID  int64  `gorm:"column:contest_id"`
	UserID     string `gorm:"column:user_id"`
	Roles      string `gorm:"column:roles"`
	TotalScore int64  `gorm:"column:total_score"`
}

func (participantProjectionModel) TableName() string {
	return "contest_participants"
}

type submissionProjectionModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	ContestID     int64  `gorm:"column:contest_id"`
	ParticipantID int64  `gorm:"column:participant_id"`
	Status        string `gorm:"column:status"`
}

func (submissionProjectionModel) TableName() string {
	return "submissions"
}

func splitRoles(raw string) []contestentities.ContestRole {
	parts := strings.Split(raw, ",")
	roles := make([]contestentities.ContestRole, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roles = append(roles, contestentities.ContestRole(part))
	}
	return roles
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoteRepository = (*Repository)(nil)
