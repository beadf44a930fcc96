package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/session-orchestrator/domain/entities"
	domainerrors "compezze/contexts/contest-live/session-orchestrator/domain/errors"
	"compezze/contexts/contest-live/session-orchestrator/ports"
	stageports "compezze/contexts/contest-live/stage-registry/ports"
)

type txContextKey struct{}

// Repository persists rooms and drives contest/stage state for the session
// orchestrator. It also serves the stage registry's storage ports so both
// modules observe the same rows inside one transaction.
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

// WithinTx opens one transaction and threads it through the context so every
// repository call inside fn shares it.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

func (r *Repository) handle(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *Repository) GetRoomByContest(ctx context.Context, contestID int64) (entities.Room, bool, error) {
	var row roomModel
	err := r.handle(ctx).
		Where("contest_id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Room{}, false, nil
		}
		return entities.Room{}, false, r.logError("session_repo_get_room_failed", err, "contest_id", contestID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveRoom(ctx context.Context, room entities.Room) error {
	row := roomModelFromEntity(room)
	if err := r.handle(ctx).Save(&row).Error; err != nil {
		return r.logError("session_repo_save_room_failed", err,
			"room_id", strings.TrimSpace(room.RoomID),
			"contest_id", room.ContestID,
		)
	}
	return nil
}

func (r *Repository) GetContest(ctx context.Context, contestID int64) (contestentities.Contest, error) {
	var row contestModel
	err := r.handle(ctx).
		Where("id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Contest{}, domainerrors.ErrContestNotFound
		}
		return contestentities.Contest{}, r.logError("session_repo_get_contest_failed", err, "contest_id", contestID)
	}

	var stageRows []stageModel
	if err := r.handle(ctx).
		Where("contest_id = ?", contestID).
		Order("position ASC").
		Find(&stageRows).Error; err != nil {
		return contestentities.Contest{}, r.logError("session_repo_list_stages_failed", err, "contest_id", contestID)
	}

	contest := contestentities.Contest{
		ContestID:   row.ID,
		Name:        row.Name,
		OrganizerID: row.OrganizerID,
		Status:      contestentities.ContestStatus(row.Status),
		Stages:      make([]contestentities.Stage, 0, len(stageRows)),
	}
	for _, stageRow := range stageRows {
		contest.Stages = append(contest.Stages, stageRow.toEntity())
	}
	return contest, nil
}

func (r *Repository) SetContestStatus(ctx context.Context, contestID int64, status contestentities.ContestStatus) error {
	result := r.handle(ctx).
		Model(&contestModel{}).
		Where("id = ?", contestID).
		Update("status", string(status))
	if result.Error != nil {
		return r.logError("session_repo_set_contest_status_failed", result.Error,
			"contest_id", contestID,
			"status", string(status),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContestNotFound
	}
	return nil
}

// ApplyScoreDeltas adds the weighted stage results to participant totals.
// Totals are integral; deltas are rounded half away from zero.
func (r *Repository) ApplyScoreDeltas(ctx context.Context, contestID int64, deltas map[string]float64) error {
	for userID, delta := range deltas {
		rounded := int64(math.Round(delta))
		if rounded == 0 {
			continue
		}
		if err := r.handle(ctx).
			Model(&participantModel{}).
			Where("contest_id = ?", contestID).
			Where("user_id = ?", strings.TrimSpace(userID)).
			Update("total_score", gorm.Expr("total_score + ?", rounded)).Error; err != nil {
			return r.logError("session_repo_apply_deltas_failed", err,
				"contest_id", contestID,
				"user_id", strings.TrimSpace(userID),
			)
		}
	}
	return nil
}

func (r *Repository) GetStage(ctx context.Context, stageID int64) (contestentities.Stage, error) {
	var row stageModel
	err := r.handle(ctx).
		Where("id = ?", stageID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contestentities.Stage{}, domainerrors.ErrStageNotFound
		}
		return contestentities.Stage{}, r.logError("session_repo_get_stage_failed", err, "stage_id", stageID)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveStage(ctx context.Context, stage contestentities.Stage) error {
	row := stageModelFromEntity(stage)
	if err := r.handle(ctx).Save(&row).Error; err != nil {
		return r.logError("session_repo_save_stage_failed", err, "stage_id", stage.StageID)
	}
	return nil
}

func (r *Repository) OwnersBySubmission(
	ctx context.Context,
	contestID int64,
	submissionIDs []string,
) (map[string]string, error) {
	if len(submissionIDs) == 0 {
		return map[string]string{}, nil
	}
	var rows []struct {
		SubmissionID string `gorm:"column:submission_id"`
		UserID       string `gorm:"column:user_id"`
	}
	err := r.handle(ctx).
		Table("submissions AS s").
		Select("s.id AS submission_id, p.user_id AS user_id").
		Joins("JOIN contest_participants AS p ON p.id = s.participant_id").
		Where("s.contest_id = ?", contestID).
		Where("s.id IN ?", submissionIDs).
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("session_repo_owners_by_submission_failed", err, "contest_id", contestID)
	}
	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		owners[row.SubmissionID] = row.UserID
	}
	return owners, nil
}

// ListStageVotes exposes the voting engine's durable markers to stage
// reconciliation without crossing module boundaries in code.
func (r *Repository) ListStageVotes(ctx context.Context, stageID int64) ([]stageports.StageVote, error) {
	var rows []struct {
		SubmissionID string `gorm:"column:submission_id"`
		VoterUserID  string `gorm:"column:voter_user_id"`
		Score        int    `gorm:"column:score"`
	}
	err := r.handle(ctx).
		Table("vote_markers").
		Select("submission_id, voter_user_id, score").
		Where("stage_id = ?", stageID).
		Order("created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("session_repo_list_stage_votes_failed", err, "stage_id", stageID)
	}
	votes := make([]stageports.StageVote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, stageports.StageVote{
			SubmissionID: row.SubmissionID,
			VoterUserID:  row.VoterUserID,
			Score:        row.Score,
		})
	}
	return votes, nil
}

// ListFinishedStageIDs returns stage ids of contests that have finished. The
// tally sweeper uses it to reclaim leftover live tallies.
func (r *Repository) ListFinishedStageIDs(ctx context.Context) ([]int64, error) {
	var stageIDs []int64
	err := r.handle(ctx).
		Table("contest_stages").
		Joins("JOIN contests ON contests.id = contest_stages.contest_id").
		Where("contests.status = ?", "FINISHED").
		Pluck("contest_stages.id", &stageIDs).
		Error
	if err != nil {
		return nil, r.logError("session_repo_list_finished_stages_failed", err)
	}
	return stageIDs, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "contest-live/session-orchestrator",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("session repository operation failed", fields...)
	return err
}

type roomModel struct {
	ID                   string     `gorm:"column:id;primaryKey"`
	ContestID            int64      `gorm:"column:contest_id;uniqueIndex"`
	RoomKey              string     `gorm:"column:room_key"`
	CurrentStagePosition int        `gorm:"column:current_stage_position"`
	Active               bool       `gorm:"column:active"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	ClosedAt             *time.Time `gorm:"column:closed_at"`
}

func (roomModel) TableName() string {
	return "contest_rooms"
}

func roomModelFromEntity(room entities.Room) roomModel {
	row := roomModel{
		ID:                   strings.TrimSpace(room.RoomID),
		ContestID:            room.ContestID,
		RoomKey:              strings.TrimSpace(room.RoomKey),
		CurrentStagePosition: room.CurrentStagePosition,
		Active:               room.Active,
		CreatedAt:            room.CreatedAt.UTC(),
	}
	if room.ClosedAt != nil {
		closedAt := room.ClosedAt.UTC()
		row.ClosedAt = &closedAt
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m roomModel) toEntity() entities.Room {
	room := entities.Room{
		RoomID:               m.ID,
		ContestID:            m.ContestID,
		RoomKey:              m.RoomKey,
		CurrentStagePosition: m.CurrentStagePosition,
		Active:               m.Active,
		CreatedAt:            m.CreatedAt.UTC(),
	}
	if m.ClosedAt != nil {
		closedAt := m.ClosedAt.UTC()
		room.ClosedAt = &closedAt
	}
	return room
}

type contestModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	OrganizerID string `gorm:"column:organizer_id"`
	Status      string `gorm:"column:status"`
}

func (contestModel) TableName() string {
	return "contests"
}

type stageModel struct {
	ID              int64   `gorm:"column:id;primaryKey"`
	ContestID       int64   `gorm:"column:contest_id"`
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

func stageModelFromEntity(stage contestentities.Stage) stageModel {
	row := stageModel{
		ID:              stage.StageID,
		ContestID:       stage.ContestID,
		Name:            strings.TrimSpace(stage.Name),
		DurationMinutes: stage.DurationMinutes,
		Position:        stage.Position,
		StageType:       string(stage.Type),
	}
	switch {
	case stage.JuryVote != nil:
		row.Weight = stage.JuryVote.Weight
		row.MaxScore = stage.JuryVote.MaxScore
		row.RevealMode = string(stage.JuryVote.RevealMode)
		row.ShowJudgeNames = stage.JuryVote.ShowJudgeNames
	case stage.PublicVote != nil:
		row.Weight = stage.PublicVote.Weight
		row.MaxScore = stage.PublicVote.MaxScore
	case stage.Quiz != nil:
		row.Weight = stage.Quiz.Weight
		row.FormID = stage.Quiz.QuizFormID
		row.MaxParticipants = stage.Quiz.MaxParticipants
		row.TimePerQuestion = stage.Quiz.TimePerQuestion
		row.ActiveRoomID = strings.TrimSpace(stage.Quiz.ActiveRoomID)
	case stage.Survey != nil:
		row.FormID = stage.Survey.SurveyFormID
		row.MaxParticipants = stage.Survey.MaxParticipants
		row.ActiveRoomID = strings.TrimSpace(stage.Survey.ActiveRoomID)
		if stage.Survey.DurationMinutes > 0 {
			row.DurationMinutes = stage.Survey.DurationMinutes
		}
	}
	return row
}

func (m stageModel) toEntity() contestentities.Stage {
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
			Weight:         m.Weight,
			MaxScore:       m.MaxScore,
			RevealMode:     contestentities.JuryRevealMode(m.RevealMode),
			ShowJudgeNames: m.ShowJudgeNames,
		}
	case contestentities.StageTypePublicVote:
		stage.PublicVote = &contestentities.PublicVoteSettings{
			Weight:   m.Weight,
			MaxScore: m.MaxScore,
		}
	case contestentities.StageTypeQuiz:
		stage.Quiz = &contestentities.QuizSettings{
			QuizFormID:      m.FormID,
			Weight:          m.Weight,
			MaxParticipants: m.MaxParticipants,
			TimePerQuestion: m.TimePerQuestion,
			ActiveRoomID:    m.ActiveRoomID,
		}
	case contestentities.StageTypeSurvey:
		stage.Survey = &contestentities.SurveySettings{
			SurveyFormID:    m.FormID,
			MaxParticipants: m.MaxParticipants,
			DurationMinutes: m.DurationMinutes,
			ActiveRoomID:    m.ActiveRoomID,
		}
	}
	return stage
}

type participantModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	ContestID  int64  `gorm:"column:contest_id"`
	UserID     string `gorm:"column:user_id"`
	TotalScore int64  `gorm:"column:total_score"`
}

func (participantModel) TableName() string {
	return "contest_participants"
}

var _ ports.RoomRepository = (*Repository)(nil)
var _ ports.ContestStore = (*Repository)(nil)
var _ ports.ScoreStore = (*Repository)(nil)
var _ ports.TxManager = (*Repository)(nil)
var _ stageports.StageStore = (*Repository)(nil)
var _ stageports.SubmissionOwners = (*Repository)(nil)
var _ stageports.StageVoteReader = (*Repository)(nil)
