package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	contestservice "compezze/contexts/contest-live/contest-service"
	contesterrors "compezze/contexts/contest-live/contest-service/domain/errors"
	contesthttp "compezze/contexts/contest-live/contest-service/transport/http"
	sessionorchestrator "compezze/contexts/contest-live/session-orchestrator"
	sessionerrors "compezze/contexts/contest-live/session-orchestrator/domain/errors"
	sessionhttp "compezze/contexts/contest-live/session-orchestrator/transport/http"
	stageregistry "compezze/contexts/contest-live/stage-registry"
	votingengine "compezze/contexts/contest-live/voting-engine"
	votingerrors "compezze/contexts/contest-live/voting-engine/domain/errors"
	votinghttp "compezze/contexts/contest-live/voting-engine/transport/http"

	_ "compezze/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	srv      *http.Server
	logger   *slog.Logger
	addr     string
	contests contestservice.Module
	voting   votingengine.Module
	sessions sessionorchestrator.Module
}

func New(
	contests contestservice.Module,
	voting votingengine.Module,
	sessions sessionorchestrator.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		contests: contests,
		voting:   voting,
		sessions: sessions,
	}
	s.registerRoutes()
	s.srv = &http.Server{Addr: s.addr, Handler: s.mux}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/contests", s.handleCreateContest)
	s.mux.HandleFunc("GET /api/contests", s.handleListContests)
	s.mux.HandleFunc("GET /api/contests/{contest_id}", s.handleGetContest)
	s.mux.HandleFunc("PATCH /api/contests/{contest_id}", s.handleUpdateContest)

	s.mux.HandleFunc("POST /api/contests/{contest_id}/stages", s.handleAddStage)
	s.mux.HandleFunc("PUT /api/contests/{contest_id}/stages/order", s.handleReorderStages)
	s.mux.HandleFunc("GET /api/contests/{contest_id}/stages/{stage_id}", s.handleGetStageSettings)
	s.mux.HandleFunc("PATCH /api/contests/{contest_id}/stages/{stage_id}", s.handleUpdateStage)

	s.mux.HandleFunc("POST /api/contests/{contest_id}/participants", s.handleJoinContest)
	s.mux.HandleFunc("PUT /api/contests/{contest_id}/participants/{participant_id}/roles", s.handleManageRoles)

	s.mux.HandleFunc("POST /api/contests/{contest_id}/submissions", s.handleSubmitEntry)
	s.mux.HandleFunc("GET /api/contests/{contest_id}/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("POST /api/contests/{contest_id}/submissions/{submission_id}/review", s.handleReviewSubmission)
	s.mux.HandleFunc("DELETE /api/contests/{contest_id}/submissions/mine", s.handleWithdrawSubmission)

	s.mux.HandleFunc("POST /api/contests/{contest_id}/session", s.handleOpenRoom)
	s.mux.HandleFunc("POST /api/contests/{contest_id}/session/stages/{stage_id}/start", s.handleStartStage)
	s.mux.HandleFunc("POST /api/contests/{contest_id}/session/advance", s.handleAdvanceStage)
	s.mux.HandleFunc("POST /api/contests/{contest_id}/session/finish-stage", s.handleFinishCurrentStage)
	s.mux.HandleFunc("POST /api/contests/{contest_id}/session/close", s.handleCloseContest)

	s.mux.HandleFunc("POST /api/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/stages/{stage_id}/leaderboard", s.handleStageLeaderboard)
}

func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.CreateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.CreateContestHandler(r.Context(), userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.contests.Handler.ListContestsHandler(r.Context(), query.Get("organizer_id"), query.Get("status"))
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	resp, err := s.contests.Handler.GetContestDetailsHandler(r.Context(), contestID)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.UpdateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.UpdateContestHandler(r.Context(), contestID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.AddStageHandler(r.Context(), contestID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	stageID, ok := pathID(w, r, "stage_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.UpdateStageHandler(r.Context(), contestID, stageID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReorderStages(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.ReorderStagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.contests.Handler.ReorderStagesHandler(r.Context(), contestID, userID, req); err != nil {
		writeContestDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStageSettings(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	stageID, ok := pathID(w, r, "stage_id")
	if !ok {
		return
	}
	resp, err := s.contests.Handler.GetStageSettingsHandler(r.Context(), contestID, stageID)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoinContest(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.JoinContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.JoinContestHandler(r.Context(), contestID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManageRoles(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	participantID, ok := pathID(w, r, "participant_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.ManageRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.ManageRolesHandler(r.Context(), contestID, participantID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.SubmitEntryHandler(r.Context(), contestID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.contests.Handler.ListSubmissionsForReviewHandler(r.Context(), contestID, userID, r.URL.Query().Get("status"))
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	submissionID := r.PathValue("submission_id")
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req contesthttp.ReviewSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contests.Handler.ReviewSubmissionHandler(r.Context(), contestID, submissionID, userID, req)
	if err != nil {
		writeContestDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawSubmission(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathID(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeContestError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.contests.Handler.WithdrawSubmissionHandler(r.Context(), contestID, userID); err != nil {
		writeContestDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenRoom(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathIDSession(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.sessions.Handler.OpenRoomHandler(r.Context(), contestID, userID)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartStage(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathIDSession(w, r, "contest_id")
	if !ok {
		return
	}
	stageID, ok := pathIDSession(w, r, "stage_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.sessions.Handler.StartStageHandler(r.Context(), contestID, stageID, userID)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceStage(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathIDSession(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req sessionhttp.StageTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.sessions.Handler.AdvanceStageHandler(r.Context(), contestID, req.ExpectedPosition, userID)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinishCurrentStage(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathIDSession(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req sessionhttp.StageTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.sessions.Handler.FinishCurrentStageHandler(r.Context(), contestID, req.ExpectedPosition, userID); err != nil {
		writeSessionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseContest(w http.ResponseWriter, r *http.Request) {
	contestID, ok := pathIDSession(w, r, "contest_id")
	if !ok {
		return
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.sessions.Handler.CloseContestHandler(r.Context(), contestID, userID); err != nil {
		writeSessionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req votinghttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), userID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleStageLeaderboard(w http.ResponseWriter, r *http.Request) {
	stageRaw := r.PathValue("stage_id")
	stageID, err := strconv.ParseInt(stageRaw, 10, 64)
	if err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_stage_id", "stage_id must be an integer")
		return
	}

	resp, err := s.voting.Handler.StageLeaderboardHandler(r.Context(), stageID)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeContestDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contesterrors.ErrContestNotFound):
		writeContestError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrStageNotFound):
		writeContestError(w, http.StatusNotFound, "stage_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrParticipantNotFound):
		writeContestError(w, http.StatusNotFound, "participant_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrSubmissionNotFound):
		writeContestError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, contesterrors.ErrNotOrganizer):
		writeContestError(w, http.StatusForbidden, "not_organizer", err.Error())
	case errors.Is(err, contesterrors.ErrReviewForbidden):
		writeContestError(w, http.StatusForbidden, "review_forbidden", err.Error())
	case errors.Is(err, contesterrors.ErrNotSubmissionOwner):
		writeContestError(w, http.StatusForbidden, "not_submission_owner", err.Error())
	case errors.Is(err, contesterrors.ErrContestNotEditable):
		writeContestError(w, http.StatusConflict, "contest_not_editable", err.Error())
	case errors.Is(err, contesterrors.ErrContestClosedToEntry):
		writeContestError(w, http.StatusConflict, "contest_closed_to_entry", err.Error())
	case errors.Is(err, contesterrors.ErrParticipantLimit):
		writeContestError(w, http.StatusConflict, "participant_limit_reached", err.Error())
	case errors.Is(err, contesterrors.ErrDuplicateSubmission):
		writeContestError(w, http.StatusConflict, "duplicate_submission", err.Error())
	case errors.Is(err, contesterrors.ErrSubmissionNotPending):
		writeContestError(w, http.StatusConflict, "submission_not_pending", err.Error())
	case errors.Is(err, contesterrors.ErrReviewToPending):
		writeContestError(w, http.StatusConflict, "review_to_pending", err.Error())
	case errors.Is(err, contesterrors.ErrInvalidContestInput),
		errors.Is(err, contesterrors.ErrInvalidStageInput),
		errors.Is(err, contesterrors.ErrStagePermutation),
		errors.Is(err, contesterrors.ErrRejectionComment),
		errors.Is(err, stageregistry.ErrInvalidSettings),
		errors.Is(err, stageregistry.ErrUnknownStageType),
		errors.Is(err, stageregistry.ErrStrategyMismatch):
		writeContestError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	default:
		writeContestError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSessionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionerrors.ErrContestNotFound),
		errors.Is(err, sessionerrors.ErrRoomNotFound),
		errors.Is(err, sessionerrors.ErrStageNotFound):
		writeSessionError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, sessionerrors.ErrNotOrganizer):
		writeSessionError(w, http.StatusForbidden, "not_organizer", err.Error())
	case errors.Is(err, sessionerrors.ErrContestFinished),
		errors.Is(err, sessionerrors.ErrRoomClosed),
		errors.Is(err, sessionerrors.ErrNoStages),
		errors.Is(err, sessionerrors.ErrNoStageRunning),
		errors.Is(err, sessionerrors.ErrStalePosition),
		errors.Is(err, sessionerrors.ErrStagePositionLag),
		errors.Is(err, sessionerrors.ErrStageSkip):
		writeSessionError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, stageregistry.ErrUpstream):
		writeSessionError(w, http.StatusBadGateway, "upstream_failure", err.Error())
	default:
		writeSessionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, votingerrors.ErrContestNotFound),
		errors.Is(err, votingerrors.ErrStageNotFound),
		errors.Is(err, votingerrors.ErrRoomNotFound),
		errors.Is(err, votingerrors.ErrSubmissionNotFound):
		writeVotingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, votingerrors.ErrNotParticipant),
		errors.Is(err, votingerrors.ErrJuryRoleRequired):
		writeVotingError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, votingerrors.ErrContestNotActive),
		errors.Is(err, votingerrors.ErrStageNotRunning),
		errors.Is(err, votingerrors.ErrStageNotVotable),
		errors.Is(err, votingerrors.ErrSubmissionNotInContest),
		errors.Is(err, votingerrors.ErrDuplicateVote):
		writeVotingError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, votingerrors.ErrInvalidVoteInput),
		errors.Is(err, votingerrors.ErrScoreOutOfRange):
		writeVotingError(w, http.StatusUnprocessableEntity, "invalid_vote", err.Error())
	default:
		writeVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeContestError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, contesthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSessionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, sessionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeContestError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return value, true
}

func pathIDSession(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeSessionError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return value, true
}
