package httpadapter

import (
	"context"
	"log/slog"

	"compezze/contexts/contest-live/contest-service/application/commands"
	"compezze/contexts/contest-live/contest-service/application/queries"
	"compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/contest-service/ports"
	httptransport "compezze/contexts/contest-live/contest-service/transport/http"
	stageregistry "compezze/contexts/contest-live/stage-registry"
)

// Handler is the context-based façade the platform HTTP server calls into.
type Handler struct {
	Contests    commands.ContestUseCase
	Stages      commands.StageUseCase
	Membership  commands.MembershipUseCase
	Submissions commands.SubmissionUseCase
	Queries     queries.ContestQueries
	Logger      *slog.Logger
}

func (h Handler) CreateContestHandler(ctx context.Context, actorUserID string, req httptransport.CreateContestRequest) (httptransport.ContestResponse, error) {
	contest, err := h.Contests.CreateContest(ctx, commands.CreateContestCommand{
		OrganizerID:      actorUserID,
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		Category:         req.Category,
		ParticipantLimit: req.ParticipantLimit,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Private:          req.Private,
		OpenForEntries:   req.OpenForEntries,
		CoverImageKey:    req.CoverImageKey,
		DisplayName:      req.DisplayName,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) UpdateContestHandler(
	ctx context.Context,
	contestID int64,
	actorUserID string,
	req httptransport.UpdateContestRequest,
) (httptransport.ContestResponse, error) {
	contest, err := h.Contests.UpdateContest(ctx, contestID, actorUserID, commands.UpdateContestCommand{
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		ParticipantLimit: req.ParticipantLimit,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Private:          req.Private,
		OpenForEntries:   req.OpenForEntries,
		CoverImageKey:    req.CoverImageKey,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) AddStageHandler(
	ctx context.Context,
	contestID int64,
	actorUserID string,
	req httptransport.CreateStageRequest,
) (httptransport.StageResponse, error) {
	stage, err := h.Stages.AddStage(ctx, contestID, actorUserID, mapCreateStageRequest(req))
	if err != nil {
		return httptransport.StageResponse{}, err
	}
	return h.mapStage(stage), nil
}

func (h Handler) UpdateStageHandler(
	ctx context.Context,
	contestID, stageID int64,
	actorUserID string,
	req httptransport.UpdateStageRequest,
) (httptransport.StageResponse, error) {
	stage, err := h.Stages.UpdateStage(ctx, contestID, stageID, actorUserID, mapUpdateStageRequest(req))
	if err != nil {
		return httptransport.StageResponse{}, err
	}
	return h.mapStage(stage), nil
}

func (h Handler) ReorderStagesHandler(ctx context.Context, contestID int64, actorUserID string, req httptransport.ReorderStagesRequest) error {
	return h.Stages.ReorderStages(ctx, contestID, actorUserID, req.OrderedStageIDs)
}

func (h Handler) JoinContestHandler(
	ctx context.Context,
	contestID int64,
	userID string,
	req httptransport.JoinContestRequest,
) (httptransport.ParticipantResponse, error) {
	result, err := h.Membership.JoinContest(ctx, commands.JoinContestCommand{
		ContestID:   contestID,
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarKey:   req.AvatarKey,
	})
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	resp := mapParticipant(result.Participant)
	resp.Replayed = result.Replayed
	return resp, nil
}

func (h Handler) ManageRolesHandler(
	ctx context.Context,
	contestID, participantID int64,
	actorUserID string,
	req httptransport.ManageRolesRequest,
) (httptransport.ParticipantResponse, error) {
	roles := make([]entities.ContestRole, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, entities.ContestRole(role))
	}
	participant, err := h.Membership.ManageRoles(ctx, contestID, participantID, actorUserID, roles)
	if err != nil {
		return httptransport.ParticipantResponse{}, err
	}
	return mapParticipant(participant), nil
}

func (h Handler) SubmitEntryHandler(
	ctx context.Context,
	contestID int64,
	userID string,
	req httptransport.SubmitEntryRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Submissions.SubmitEntry(ctx, commands.SubmitEntryCommand{
		ContestID: contestID,
		UserID:    userID,
		File: entities.FileRef{
			ObjectKey:   req.ObjectKey,
			Bucket:      req.Bucket,
			ContentType: req.ContentType,
			SizeBytes:   req.SizeBytes,
		},
		OriginalFilename: req.OriginalFilename,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) ReviewSubmissionHandler(
	ctx context.Context,
	contestID int64,
	submissionID string,
	actorUserID string,
	req httptransport.ReviewSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Submissions.ReviewSubmission(ctx, commands.ReviewSubmissionCommand{
		ContestID:    contestID,
		SubmissionID: submissionID,
		ReviewerID:   actorUserID,
		Status:       entities.SubmissionStatus(req.Status),
		Comment:      req.Comment,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) WithdrawSubmissionHandler(ctx context.Context, contestID int64, userID string) error {
	return h.Submissions.WithdrawSubmission(ctx, contestID, userID)
}

func (h Handler) GetContestDetailsHandler(ctx context.Context, contestID int64) (httptransport.ContestDetailsResponse, error) {
	details, err := h.Queries.GetContestDetails(ctx, contestID)
	if err != nil {
		return httptransport.ContestDetailsResponse{}, err
	}
	return httptransport.ContestDetailsResponse{
		Contest:          mapContest(details.Contest),
		Stages:           details.StageSettings,
		ParticipantCount: details.ParticipantCount,
	}, nil
}

func (h Handler) ListContestsHandler(ctx context.Context, organizerID, status string) ([]httptransport.ContestResponse, error) {
	contests, err := h.Queries.ListContests(ctx, ports.ContestFilter{
		OrganizerID: organizerID,
		Status:      entities.ContestStatus(status),
	})
	if err != nil {
		return nil, err
	}
	out := make([]httptransport.ContestResponse, 0, len(contests))
	for _, contest := range contests {
		out = append(out, mapContest(contest))
	}
	return out, nil
}

func (h Handler) ListSubmissionsForReviewHandler(
	ctx context.Context,
	contestID int64,
	actorUserID string,
	status string,
) ([]httptransport.SubmissionResponse, error) {
	submissions, err := h.Queries.ListSubmissionsForReview(ctx, contestID, actorUserID, entities.SubmissionStatus(status))
	if err != nil {
		return nil, err
	}
	out := make([]httptransport.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, mapSubmission(submission))
	}
	return out, nil
}

func (h Handler) GetStageSettingsHandler(ctx context.Context, contestID, stageID int64) (stageregistry.StageSettings, error) {
	return h.Queries.GetStageSettings(ctx, contestID, stageID)
}

func (h Handler) mapStage(stage entities.Stage) httptransport.StageResponse {
	return httptransport.StageResponse{
		StageID:  stage.StageID,
		Name:     stage.Name,
		Position: stage.Position,
		Type:     string(stage.Type),
		Settings: h.Queries.Registry.Settings(stage),
	}
}

func mapContest(contest entities.Contest) httptransport.ContestResponse {
	return httptransport.ContestResponse{
		ContestID:        contest.ContestID,
		Name:             contest.Name,
		Description:      contest.Description,
		Location:         contest.Location,
		Category:         string(contest.Category),
		ParticipantLimit: contest.ParticipantLimit,
		StartDate:        contest.StartDate,
		EndDate:          contest.EndDate,
		Private:          contest.Private,
		OpenForEntries:   contest.OpenForEntries,
		OrganizerID:      contest.OrganizerID,
		Status:           string(contest.Status),
		CoverImageKey:    contest.CoverImageKey,
	}
}

func mapParticipant(participant entities.Participant) httptransport.ParticipantResponse {
	roles := make([]string, 0, len(participant.Roles))
	for _, role := range participant.Roles {
		roles = append(roles, string(role))
	}
	return httptransport.ParticipantResponse{
		ParticipantID: participant.ParticipantID,
		ContestID:     participant.ContestID,
		UserID:        participant.UserID,
		Roles:         roles,
		TotalScore:    participant.TotalScore,
		DisplayName:   participant.DisplayName,
	}
}

func mapSubmission(submission entities.Submission) httptransport.SubmissionResponse {
	return httptransport.SubmissionResponse{
		SubmissionID:     submission.SubmissionID,
		ContestID:        submission.ContestID,
		ParticipantID:    submission.ParticipantID,
		Status:           string(submission.Status),
		ObjectKey:        submission.File.ObjectKey,
		OriginalFilename: submission.OriginalFilename,
		Comment:          submission.Comment,
	}
}

func mapCreateStageRequest(req httptransport.CreateStageRequest) stageregistry.CreateStageRequest {
	out := stageregistry.CreateStageRequest{
		Type:            entities.StageType(req.Type),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
	}
	if req.JuryVote != nil {
		out.JuryVote = &entities.JuryVoteSettings{
			Weight:         req.JuryVote.Weight,
			MaxScore:       req.JuryVote.MaxScore,
			RevealMode:     entities.JuryRevealMode(req.JuryVote.RevealMode),
			ShowJudgeNames: req.JuryVote.ShowJudgeNames,
		}
	}
	if req.PublicVote != nil {
		out.PublicVote = &entities.PublicVoteSettings{
			Weight: req.PublicVote.Weight,
		}
	}
	if req.Quiz != nil {
		out.Quiz = &entities.QuizSettings{
			QuizFormID:      req.Quiz.QuizFormID,
			Weight:          req.Quiz.Weight,
			MaxParticipants: req.Quiz.MaxParticipants,
			TimePerQuestion: req.Quiz.TimePerQuestion,
		}
	}
	if req.Survey != nil {
		out.Survey = &entities.SurveySettings{
			SurveyFormID:    req.Survey.SurveyFormID,
			MaxParticipants: req.Survey.MaxParticipants,
			DurationMinutes: req.Survey.DurationMinutes,
		}
	}
	return out
}

func mapUpdateStageRequest(req httptransport.UpdateStageRequest) stageregistry.UpdateStageRequest {
	out := stageregistry.UpdateStageRequest{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
	}
	if req.JuryVote != nil {
		patch := &stageregistry.JuryVotePatch{
			Weight:         req.JuryVote.Weight,
			MaxScore:       req.JuryVote.MaxScore,
			ShowJudgeNames: req.JuryVote.ShowJudgeNames,
		}
		if req.JuryVote.RevealMode != nil {
			mode := entities.JuryRevealMode(*req.JuryVote.RevealMode)
			patch.RevealMode = &mode
		}
		out.JuryVote = patch
	}
	if req.PublicVote != nil {
		out.PublicVote = &stageregistry.PublicVotePatch{
			Weight: req.PublicVote.Weight,
		}
	}
	if req.Quiz != nil {
		out.Quiz = &stageregistry.QuizPatch{
			QuizFormID:      req.Quiz.QuizFormID,
			Weight:          req.Quiz.Weight,
			MaxParticipants: req.Quiz.MaxParticipants,
			TimePerQuestion: req.Quiz.TimePerQuestion,
		}
	}
	if req.Survey != nil {
		out.Survey = &stageregistry.SurveyPatch{
			SurveyFormID:    req.Survey.SurveyFormID,
			MaxParticipants: req.Survey.MaxParticipants,
			DurationMinutes: req.Survey.DurationMinutes,
		}
	}
	return out
}
