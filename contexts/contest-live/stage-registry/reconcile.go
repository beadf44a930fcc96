package stageregistry

import (
	"context"
	"log/slog"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// reconcileVoteStage turns the votes cast during a jury/public stage into
// weighted per-user deltas. The tally store is trusted exclusively when it
// holds any rows; otherwise the durable vote markers are re-aggregated from
// scratch. The two sources are never merged, so a tally that raced ahead of a
// rejected duplicate write cannot double-count.
func reconcileVoteStage(
	ctx context.Context,
	stage entities.Stage,
	weight float64,
	tally ports.TallyReader,
	votes ports.StageVoteReader,
	owners ports.SubmissionOwners,
	logger *slog.Logger,
) (map[string]float64, error) {
	totals, err := readTally(ctx, stage, tally, logger)
	if err != nil || len(totals) == 0 {
		return reconcileFromMarkers(ctx, stage, weight, votes, owners)
	}

	submissionIDs := make([]string, 0, len(totals))
	for _, row := range totals {
		submissionIDs = append(submissionIDs, row.SubmissionID)
	}
	ownerByID, err := owners.OwnersBySubmission(ctx, stage.ContestID, submissionIDs)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]float64, len(totals))
	for _, row := range totals {
		ownerID, ok := ownerByID[row.SubmissionID]
		if !ok {
			// Submission withdrawn mid-stage; its votes no longer score.
			continue
		}
		deltas[ownerID] += row.Total * weight
	}
	return deltas, nil
}

func readTally(
	ctx context.Context,
	stage entities.Stage,
	tally ports.TallyReader,
	logger *slog.Logger,
) ([]ports.SubmissionTotal, error) {
	if tally == nil {
		return nil, nil
	}
	totals, err := tally.ReadAll(ctx, stage.StageID)
	if err != nil {
		if logger != nil {
			logger.Warn("tally store read failed; falling back to vote markers",
				"event", "stage_reconcile_tally_unavailable",
				"module", "contest-live/stage-registry",
				"layer", "application",
				"stage_id", stage.StageID,
				"error", err.Error(),
			)
		}
		return nil, err
	}
	return totals, nil
}

func reconcileFromMarkers(
	ctx context.Context,
	stage entities.Stage,
	weight float64,
	votes ports.StageVoteReader,
	owners ports.SubmissionOwners,
) (map[string]float64, error) {
	rows, err := votes.ListStageVotes(ctx, stage.StageID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	rawBySubmission := make(map[string]float64, len(rows))
	submissionIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, seen := rawBySubmission[row.SubmissionID]; !seen {
			submissionIDs = append(submissionIDs, row.SubmissionID)
		}
		rawBySubmission[row.SubmissionID] += float64(row.Score)
	}

	ownerByID, err := owners.OwnersBySubmission(ctx, stage.ContestID, submissionIDs)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]float64, len(rawBySubmission))
	for submissionID, raw := range rawBySubmission {
		ownerID, ok := ownerByID[submissionID]
		if !ok {
			continue
		}
		deltas[ownerID] += raw * weight
	}
	return deltas, nil
}
