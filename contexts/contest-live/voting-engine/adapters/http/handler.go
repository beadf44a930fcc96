package httpadapter

import (
	"context"
	"log/slog"

	"compezze/contexts/contest-live/voting-engine/application/commands"
	"compezze/contexts/contest-live/voting-engine/application/queries"
	httptransport "compezze/contexts/contest-live/voting-engine/transport/http"
)

type Handler struct {
	Votes        commands.VoteUseCase
	Leaderboards queries.LeaderboardUseCase
	Logger       *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterUserID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ContestID:    req.ContestID,
		StageID:      req.StageID,
		VoterUserID:  voterUserID,
		SubmissionID: req.SubmissionID,
		Score:        req.Score,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		MarkerID:     result.Marker.MarkerID,
		ContestID:    result.Marker.ContestID,
		StageID:      result.Marker.StageID,
		SubmissionID: result.Marker.SubmissionID,
		VoterUserID:  result.Marker.VoterUserID,
		Score:        result.Marker.Score,
		RunningTotal: result.RunningTotal,
	}, nil
}

func (h Handler) StageLeaderboardHandler(ctx context.Context, stageID int64) (httptransport.LeaderboardResponse, error) {
	scores, err := h.Leaderboards.StageLeaderboard(ctx, stageID)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(scores))
	for i, score := range scores {
		items = append(items, httptransport.LeaderboardItem{
			SubmissionID: score.SubmissionID,
			Votes:        score.Votes,
			Total:        score.Total,
			Rank:         i + 1,
		})
	}
	return httptransport.LeaderboardResponse{StageID: stageID, Items: items}, nil
}
