package queries

import (
	"context"
	"log/slog"
	"sort"

	application "compezze/contexts/contest-live/voting-engine/application"
	"compezze/contexts/contest-live/voting-engine/domain/entities"
	"compezze/contexts/contest-live/voting-engine/ports"
)

// LeaderboardUseCase serves live per-stage standings. The tally store is the
// fast path; when it is empty or unreachable the durable markers answer
// instead. The two sources are never merged.
type LeaderboardUseCase struct {
	Votes  ports.VoteRepository
	Tally  ports.TallyStore
	Logger *slog.Logger
}

func (uc LeaderboardUseCase) StageLeaderboard(ctx context.Context, stageID int64) ([]entities.SubmissionScore, error) {
	totals, err := uc.readTally(ctx, stageID)
	if err == nil && len(totals) > 0 {
		scores := make([]entities.SubmissionScore, 0, len(totals))
		for _, row := range totals {
			scores = append(scores, entities.SubmissionScore{
				SubmissionID: row.SubmissionID,
				Total:        row.Total,
			})
		}
		sortScores(scores)
		return scores, nil
	}

	markers, err := uc.Votes.ListMarkersByStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	bySubmission := make(map[string]entities.SubmissionScore, len(markers))
	for _, marker := range markers {
		current := bySubmission[marker.SubmissionID]
		current.SubmissionID = marker.SubmissionID
		current.Votes++
		current.Total += float64(marker.Score)
		bySubmission[marker.SubmissionID] = current
	}
	scores := make([]entities.SubmissionScore, 0, len(bySubmission))
	for _, score := range bySubmission {
		scores = append(scores, score)
	}
	sortScores(scores)
	return scores, nil
}

func (uc LeaderboardUseCase) readTally(ctx context.Context, stageID int64) ([]ports.SubmissionTotal, error) {
	if uc.Tally == nil {
		return nil, nil
	}
	totals, err := uc.Tally.ReadAll(ctx, stageID)
	if err != nil {
		application.ResolveLogger(uc.Logger).Warn("tally read failed; serving durable markers",
			"event", "voting_leaderboard_tally_unavailable",
			"module", "contest-live/voting-engine",
			"layer", "application",
			"stage_id", stageID,
			"error", err.Error(),
		)
		return nil, err
	}
	return totals, nil
}

func sortScores(scores []entities.SubmissionScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total == scores[j].Total {
			return scores[i].SubmissionID < scores[j].SubmissionID
		}
		return scores[i].Total > scores[j].Total
	})
}
