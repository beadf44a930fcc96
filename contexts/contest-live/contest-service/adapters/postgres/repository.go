package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
)

// Repository owns the contest aggregate tables: contests, contest_stages,
// contest_participants, and submissions. Other modules read the same tables
// through their own projection models.
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

func (r *Repository) CreateContest(ctx context.Context, contest entities.Contest) (entities.Contest, error) {
	row := contestModelFromEntity(contest)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Contest{}, r.logError("contest_repo_create_failed", err, "organizer_id", contest.OrganizerID)
	}
	contest.ContestID = row.ID
	return contest, nil
}

func (r *Repository) UpdateContest(ctx context.Context, contest entities.Contest) error {
	row := contestModelFromEntity(contest)
	result := r.db.WithContext(ctx).
		Model(&contestModel{}).
		Where("id = ?", contest.ContestID).
		Updates(map[string]any{
			"name":              row.Name,
			"description":       row.Description,
			"location":          row.Location,
			"category":          row.Category,
			"participant_limit": row.ParticipantLimit,
			"start_date":        row.StartDate,
			"end_date":          row.EndDate,
			"private":           row.Private,
			"open_for_entries":  row.OpenForEntries,
			"cover_image_key":   row.CoverImageKey,
			"updated_at":        row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("contest_repo_update_failed", result.Error, "contest_id", contest.ContestID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContestNotFound
	}
	return nil
}

func (r *Repository) GetContest(ctx context.Context, contestID int64) (entities.Contest, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, domainerrors.ErrContestNotFound
		}
		return entities.Contest{}, r.logError("contest_repo_get_failed", err, "contest_id", contestID)
	}

	var stageRows []stageModel
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("position ASC").
		Find(&stageRows).Error; err != nil {
		return entities.Contest{}, r.logError("contest_repo_list_stages_failed", err, "contest_id", contestID)
	}

	contest := row.toEntity()
	contest.Stages = make([]entities.Stage, 0, len(stageRows))
	for _, stageRow := range stageRows {
		contest.Stages = append(contest.Stages, stageRow.toEntity())
	}
	return contest, nil
}

func (r *Repository) ListContests(ctx context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	query := r.db.WithContext(ctx).Model(&contestModel{})
	if organizerID := strings.TrimSpace(filter.OrganizerID); organizerID != "" {
		query = query.Where("organizer_id = ?", organizerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var rows []contestModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_failed", err)
	}
	contests := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		contests = append(contests, row.toEntity())
	}
	return contests, nil
}

func (r *Repository) AddStage(ctx context.Context, stage entities.Stage) (entities.Stage, error) {
	row := stageModelFromEntity(stage)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Stage{}, r.logError("contest_repo_add_stage_failed", err, "contest_id", stage.ContestID)
	}
	stage.StageID = row.ID
	return stage, nil
}

func (r *Repository) UpdateStage(ctx context.Context, stage entities.Stage) error {
	row := stageModelFromEntity(stage)
	result := r.db.WithContext(ctx).
		Where("id = ? AND contest_id = ?", stage.StageID, stage.ContestID).
		Save(&row)
	if result.Error != nil {
		return r.logError("contest_repo_update_stage_failed", result.Error, "stage_id", stage.StageID)
	}
	return nil
}

func (r *Repository) ReplacePositions(ctx context.Context, contestID int64, positions map[int64]int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for stageID, position := range positions {
			result := tx.Model(&stageModel{}).
				Where("id = ? AND contest_id = ?", stageID, contestID).
				Update("position", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domainerrors.ErrStageNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrStageNotFound) {
			return err
		}
		return r.logError("contest_repo_reorder_failed", err, "contest_id", contestID)
	}
	return nil
}

func (r *Repository) AddParticipant(ctx context.Context, participant entities.Participant) (entities.Participant, error) {
	row := participantModelFromEntity(participant)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// Concurrent join lost the race; the caller re-reads the winner.
			existing, found, lookupErr := r.GetParticipantByUser(ctx, participant.ContestID, participant.UserID)
			if lookupErr == nil && found {
				return existing, nil
			}
		}
		return entities.Participant{}, r.logError("contest_repo_add_participant_failed", err,
			"contest_id", participant.ContestID,
			"user_id", participant.UserID,
		)
	}
	participant.ParticipantID = row.ID
	return participant, nil
}

func (r *Repository) UpdateParticipant(ctx context.Context, participant entities.Participant) error {
	result := r.db.WithContext(ctx).
		Model(&participantModel{}).
		Where("id = ? AND contest_id = ?", participant.ParticipantID, participant.ContestID).
		Updates(map[string]any{
			"roles":        joinRoles(participant.Roles),
			"display_name": participant.DisplayName,
			"bio":          participant.Bio,
			"avatar_key":   participant.AvatarKey,
			"updated_at":   participant.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_repo_update_participant_failed", result.Error, "participant_id", participant.ParticipantID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrParticipantNotFound
	}
	return nil
}

func (r *Repository) GetParticipant(ctx context.Context, contestID, participantID int64) (entities.Participant, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND contest_id = ?", participantID, contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, domainerrors.ErrParticipantNotFound
		}
		return entities.Participant{}, r.logError("contest_repo_get_participant_failed", err, "participant_id", participantID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetParticipantByUser(ctx context.Context, contestID int64, userID string) (entities.Participant, bool, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, false, nil
		}
		return entities.Participant{}, false, r.logError("contest_repo_get_participant_by_user_failed", err,
			"contest_id", contestID,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CountParticipants(ctx context.Context, contestID int64) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&participantModel{}).
		Where("contest_id = ?", contestID).
		Count(&count).Error; err != nil {
		return 0, r.logError("contest_repo_count_participants_failed", err, "contest_id", contestID)
	}
	return int(count), nil
}

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateSubmission
		}
		return r.logError("contest_repo_create_submission_failed", err,
			"contest_id", submission.ContestID,
			"participant_id", submission.ParticipantID,
		)
	}
	return nil
}

func (r *Repository) UpdateSubmission(ctx context.Context, submission entities.Submission) error {
	result := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("id = ? AND contest_id = ?", submission.SubmissionID, submission.ContestID).
		Updates(map[string]any{
			"status":     string(submission.Status),
			"comment":    submission.Comment,
			"updated_at": submission.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_repo_update_submission_failed", result.Error, "submission_id", submission.SubmissionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) DeleteSubmission(ctx context.Context, contestID int64, submissionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND contest_id = ?", strings.TrimSpace(submissionID), contestID).
		Delete(&submissionModel{})
	if result.Error != nil {
		return r.logError("contest_repo_delete_submission_failed", result.Error, "submission_id", submissionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, contestID int64, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND contest_id = ?", strings.TrimSpace(submissionID), contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("contest_repo_get_submission_failed", err, "submission_id", submissionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSubmissionByParticipant(ctx context.Context, contestID, participantID int64) (entities.Submission, bool, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Where("participant_id = ?", participantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, false, nil
		}
		return entities.Submission{}, false, r.logError("contest_repo_get_submission_by_participant_failed", err,
			"contest_id", contestID,
			"participant_id", participantID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListSubmissions(ctx context.Context, contestID int64, status entities.SubmissionStatus) ([]entities.Submission, error) {
	query := r.db.WithContext(ctx).
		Model(&submissionModel{}).
		Where("contest_id = ?", contestID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var rows []submissionModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_repo_list_submissions_failed", err, "contest_id", contestID)
	}
	submissions := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, row.toEntity())
	}
	return submissions, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-live/contest-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("contest repository operation failed", fields...)
	return err
}

type contestModel struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name             string    `gorm:"column:name"`
	Description      string    `gorm:"column:description"`
	Location         string    `gorm:"column:location"`
	Category         string    `gorm:"column:category"`
	ParticipantLimit int       `gorm:"column:participant_limit"`
	StartDate        time.Time `gorm:"column:start_date"`
	EndDate          time.Time `gorm:"column:end_date"`
	Private          bool      `gorm:"column:private"`
	OpenForEntries   bool      `gorm:"column:open_for_entries"`
	OrganizerID      string    `gorm:"column:organizer_id"`
	Status           string    `gorm:"column:status"`
	CoverImageKey    string    `gorm:"column:cover_image_key"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (contestModel) TableName() string {
	return "contests"
}

func contestModelFromEntity(contest entities.Contest) contestModel {
	return contestModel{
		ID:               contest.ContestID,
		Name:             contest.Name,
		Description:      contest.Description,
		Location:         contest.Location,
		Category:         string(contest.Category),
		ParticipantLimit: contest.ParticipantLimit,
		StartDate:        contest.StartDate.UTC(),
		EndDate:          contest.EndDate.UTC(),
		Private:          contest.Private,
		OpenForEntries:   contest.OpenForEntries,
		OrganizerID:      contest.OrganizerID,
		Status:           string(contest.Status),
		CoverImageKey:    contest.CoverImageKey,
		CreatedAt:        contest.CreatedAt.UTC(),
		UpdatedAt:        contest.UpdatedAt.UTC(),
	}
}

func (m contestModel) toEntity() entities.Contest {
	return entities.Contest{
		ContestID:        m.ID,
		Name:             m.Name,
		Description:      m.Description,
		Location:         m.Location,
		Category:         entities.ContestCategory(m.Category),
		ParticipantLimit: m.ParticipantLimit,
		StartDate:        m.StartDate.UTC(),
		EndDate:          m.EndDate.UTC(),
		Private:          m.Private,
		OpenForEntries:   m.OpenForEntries,
		OrganizerID:      m.OrganizerID,
		Status:           entities.ContestStatus(m.Status),
		CoverImageKey:    m.CoverImageKey,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type stageModel struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ContestID       int64   `gorm:"column:contest_id;index"`
	Name            string  `gorm:"column:name"`
	DurationMinutes int     `gorm:"column:duration_minutes"`
	Position        int     `gorm:"column:position"`
	StageType       string  `gorm:"column:stage_type"`
	Weight          float64 `gorm:"column:weight"`
	MaxScore        int     `gorm:"column:max_score"`
	RevealMode      string  `gorm:"column:reveal_mode"`
	ShowJudgeNames  bool    `gorm:"column:show_judge_names"`
	FormID          int64   `gorm:"column:form_id"`
	MaxParticipants int     `gorm:"column:max_participants"`
	TimePerQuestion int     `gorm:"column:time_per_question"`
	ActiveRoomID    string  `gorm:"column:active_room_id"`
}

func (stageModel) TableName() string {
	return "contest_stages"
}

func stageModelFromEntity(stage entities.Stage) stageModel {
	row := stageModel{
		ID:              stage.StageID,
		ContestID:       stage.ContestID,
		Name:            stage.Name,
		DurationMinutes: stage.DurationMinutes,
		Position:        stage.Position,
		StageType:       string(stage.Type),
	}
	switch stage.Type {
	case entities.StageTypeJuryVote:
		if stage.JuryVote != nil {
			row.Weight = stage.JuryVote.Weight
			row.MaxScore = stage.JuryVote.MaxScore
			row.RevealMode = string(stage.JuryVote.RevealMode)
			row.ShowJudgeNames = stage.JuryVote.ShowJudgeNames
		}
	case entities.StageTypePublicVote:
		if stage.PublicVote != nil {
			row.Weight = stage.PublicVote.Weight
			row.MaxScore = stage.PublicVote.MaxScore
		}
	case entities.StageTypeQuiz:
		if stage.Quiz != nil {
			row.Weight = stage.Quiz.Weight
			row.FormID = stage.Quiz.QuizFormID
			row.MaxParticipants = stage.Quiz.MaxParticipants
			row.TimePerQuestion = stage.Quiz.TimePerQuestion
			row.ActiveRoomID = stage.Quiz.ActiveRoomID
		}
	case entities.StageTypeSurvey:
		if stage.Survey != nil {
			row.FormID = stage.Survey.SurveyFormID
			row.MaxParticipants = stage.Survey.MaxParticipants
			row.ActiveRoomID = stage.Survey.ActiveRoomID
			// Surveys carry their own duration; it wins over the shared field
			// whenever set, matching the settings projection.
			if stage.Survey.DurationMinutes > 0 {
				row.DurationMinutes = stage.Survey.DurationMinutes
			}
		}
	}
	return row
}

func (m stageModel) toEntity() entities.Stage {
	stage := entities.Stage{
		StageID:         m.ID,
		ContestID:       m.ContestID,
		Name:            m.Name,
		DurationMinutes: m.DurationMinutes,
		Position:        m.Position,
		Type:            entities.StageType(m.StageType),
	}
	switch stage.Type {
	case entities.StageTypeJuryVote:
		stage.JuryVote = &entities.JuryVoteSettings{
			Weight:         m.Weight,
			MaxScore:       m.MaxScore,
			RevealMode:     entities.JuryRevealMode(m.RevealMode),
			ShowJudgeNames: m.ShowJudgeNames,
		}
	case entities.StageTypePublicVote:
		stage.PublicVote = &entities.PublicVoteSettings{
			Weight:   m.Weight,
			MaxScore: m.MaxScore,
		}
	case entities.StageTypeQuiz:
		stage.Quiz = &entities.QuizSettings{
			QuizFormID:      m.FormID,
			Weight:          m.Weight,
			MaxParticipants: m.MaxParticipants,
			TimePerQuestion: m.TimePerQuestion,
			ActiveRoomID:    m.ActiveRoomID,
		}
	case entities.StageTypeSurvey:
		stage.Survey = &entities.SurveySettings{
			SurveyFormID:    m.FormID,
			MaxParticipants: m.MaxParticipants,
			DurationMinutes: m.DurationMinutes,
			ActiveRoomID:    m.ActiveRoomID,
		}
	}
	return stage
}

type participantModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ContestID   int64     `gorm:"column:contest_id;uniqueIndex:ux_contest_participants_identity"`
	UserID      string    `gorm:"column:user_id;uniqueIndex:ux_contest_participants_identity"`
	Roles       string    `gorm:"column:roles"`
	TotalScore  int64     `gorm:"column:total_score"`
	DisplayName string    `gorm:"column:display_name"`
	Bio         string    `gorm:"column:bio"`
	AvatarKey   string    `gorm:"column:avatar_key"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (participantModel) TableName() string {
	return "contest_participants"
}

func participantModelFromEntity(participant entities.Participant) participantModel {
	return participantModel{
		ID:          participant.ParticipantID,
		ContestID:   participant.ContestID,
		UserID:      strings.TrimSpace(participant.UserID),
		Roles:       joinRoles(participant.Roles),
		TotalScore:  participant.TotalScore,
		DisplayName: participant.DisplayName,
		Bio:         participant.Bio,
		AvatarKey:   participant.AvatarKey,
		CreatedAt:   participant.CreatedAt.UTC(),
		UpdatedAt:   participant.UpdatedAt.UTC(),
	}
}

func (m participantModel) toEntity() entities.Participant {
	return entities.Participant{
		ParticipantID: m.ID,
		ContestID:     m.ContestID,
		UserID:        m.UserID,
		Roles:         splitRoles(m.Roles),
		TotalScore:    m.TotalScore,
		DisplayName:   m.DisplayName,
		Bio:           m.Bio,
		AvatarKey:     m.AvatarKey,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type submissionModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	ContestID        int64     `gorm:"column:contest_id;uniqueIndex:ux_submissions_participant"`
	ParticipantID    int64     `gorm:"column:participant_id;uniqueIndex:ux_submissions_participant"`
	Status           string    `gorm:"column:status"`
	ObjectKey        string    `gorm:"column:object_key"`
	Bucket           string    `gorm:"column:bucket"`
	ContentType      string    `gorm:"column:content_type"`
	SizeBytes        int64     `gorm:"column:size_bytes"`
	OriginalFilename string    `gorm:"column:original_filename"`
	Comment          string    `gorm:"column:comment"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	return submissionModel{
		ID:               strings.TrimSpace(submission.SubmissionID),
		ContestID:        submission.ContestID,
		ParticipantID:    submission.ParticipantID,
		Status:           string(submission.Status),
		ObjectKey:        submission.File.ObjectKey,
		Bucket:           submission.File.Bucket,
		ContentType:      submission.File.ContentType,
		SizeBytes:        submission.File.SizeBytes,
		OriginalFilename: submission.OriginalFilename,
		Comment:          submission.Comment,
		CreatedAt:        submission.CreatedAt.UTC(),
		UpdatedAt:        submission.UpdatedAt.UTC(),
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:  m.ID,
		ContestID:     m.ContestID,
		ParticipantID: m.ParticipantID,
		Status:        entities.SubmissionStatus(m.Status),
		File: entities.FileRef{
			ObjectKey:   m.ObjectKey,
			Bucket:      m.Bucket,
			ContentType: m.ContentType,
			SizeBytes:   m.SizeBytes,
		},
		OriginalFilename: m.OriginalFilename,
		Comment:          m.Comment,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

func joinRoles(roles []entities.ContestRole) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ",")
}

func splitRoles(raw string) []entities.ContestRole {
	parts := strings.Split(raw, ",")
	roles := make([]entities.ContestRole, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roles = append(roles, entities.ContestRole(part))
	}
	return roles
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.ContestRepository     = (*Repository)(nil)
	_ ports.StageRepository       = (*Repository)(nil)
	_ ports.ParticipantRepository = (*Repository)(nil)
	_ ports.SubmissionRepository  = (*Repository)(nil)
)
