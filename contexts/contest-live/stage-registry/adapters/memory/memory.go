// Package memory provides in-process stand-ins for the stage registry's
// ports, used by unit tests and the in-memory module wiring.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/stage-registry/ports"
)

// StageStore keeps stages in a mutex-guarded map keyed by stage id.
type StageStore struct {
	mu     sync.RWMutex
	stages map[int64]entities.Stage
	nextID int64
}

func NewStageStore() *StageStore {
	return &StageStore{stages: make(map[int64]entities.Stage), nextID: 1}
}

// Put inserts a stage, assigning an id when it has none. Test setup helper.
func (s *StageStore) Put(stage entities.Stage) entities.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stage.StageID == 0 {
		stage.StageID = s.nextID
		s.nextID++
	} else if stage.StageID >= s.nextID {
		s.nextID = stage.StageID + 1
	}
	s.stages[stage.StageID] = cloneStage(stage)
	return stage
}

func (s *StageStore) GetStage(_ context.Context, stageID int64) (entities.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stage, ok := s.stages[stageID]
	if !ok {
		return entities.Stage{}, domainerrors.ErrStageNotFound
	}
	return cloneStage(stage), nil
}

func (s *StageStore) SaveStage(_ context.Context, stage entities.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[stage.StageID]; !ok {
		return domainerrors.ErrStageNotFound
	}
	s.stages[stage.StageID] = cloneStage(stage)
	return nil
}

func cloneStage(stage entities.Stage) entities.Stage {
	out := stage
	if stage.JuryVote != nil {
		v := *stage.JuryVote
		out.JuryVote = &v
	}
	if stage.PublicVote != nil {
		v := *stage.PublicVote
		out.PublicVote = &v
	}
	if stage.Quiz != nil {
		v := *stage.Quiz
		out.Quiz = &v
	}
	if stage.Survey != nil {
		v := *stage.Survey
		out.Survey = &v
	}
	return out
}

// QuizRoomClient is a fake remote quiz service. Rooms are tracked so tests can
// assert create/close ordering; Fail switches every call to an error.
type QuizRoomClient struct {
	mu          sync.Mutex
	Fail        bool
	Leaderboard []ports.QuizLeaderboardEntry
	created     []string
	closed      map[string]bool
}

func NewQuizRoomClient() *QuizRoomClient {
	return &QuizRoomClient{closed: make(map[string]bool)}
}

func (c *QuizRoomClient) CreateRoom(_ context.Context, req ports.CreateQuizRoomRequest) (ports.CreateQuizRoomResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ports.CreateQuizRoomResponse{}, errors.New("quiz service unavailable")
	}
	roomID := uuid.NewString()
	c.created = append(c.created, roomID)
	return ports.CreateQuizRoomResponse{RoomID: roomID, QuizFormID: req.QuizFormID}, nil
}

func (c *QuizRoomClient) CloseRoom(_ context.Context, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return errors.New("quiz service unavailable")
	}
	c.closed[roomID] = true
	return nil
}

func (c *QuizRoomClient) GetRoomDetails(_ context.Context, roomID string) (ports.QuizRoomDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ports.QuizRoomDetails{}, errors.New("quiz service unavailable")
	}
	status := "ACTIVE"
	if c.closed[roomID] {
		status = "CLOSED"
	}
	return ports.QuizRoomDetails{Status: status, Leaderboard: c.Leaderboard}, nil
}

// CreatedRooms returns the room ids handed out so far, in order.
func (c *QuizRoomClient) CreatedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.created))
	copy(out, c.created)
	return out
}

func (c *QuizRoomClient) Closed(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[roomID]
}

// SurveyRoomClient is a fake remote survey service.
type SurveyRoomClient struct {
	mu      sync.Mutex
	Fail    bool
	created []string
	closed  map[string]bool
}

func NewSurveyRoomClient() *SurveyRoomClient {
	return &SurveyRoomClient{closed: make(map[string]bool)}
}

func (c *SurveyRoomClient) CreateRoom(_ context.Context, _ ports.CreateSurveyRoomRequest) (ports.CreateSurveyRoomResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ports.CreateSurveyRoomResponse{}, errors.New("survey service unavailable")
	}
	roomID := uuid.NewString()
	c.created = append(c.created, roomID)
	return ports.CreateSurveyRoomResponse{RoomID: roomID}, nil
}

func (c *SurveyRoomClient) CloseRoom(_ context.Context, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return errors.New("survey service unavailable")
	}
	c.closed[roomID] = true
	return nil
}

func (c *SurveyRoomClient) GetRoomDetails(_ context.Context, roomID string) (ports.SurveyRoomDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return ports.SurveyRoomDetails{}, errors.New("survey service unavailable")
	}
	status := "ACTIVE"
	if c.closed[roomID] {
		status = "CLOSED"
	}
	return ports.SurveyRoomDetails{Status: status}, nil
}

func (c *SurveyRoomClient) Closed(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[roomID]
}

// SubmissionOwners resolves owners from a fixed map of submission id to user
// id, ignoring contest scoping.
type SubmissionOwners struct {
	Owners map[string]string
}

func (s SubmissionOwners) OwnersBySubmission(_ context.Context, _ int64, submissionIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(submissionIDs))
	for _, id := range submissionIDs {
		if owner, ok := s.Owners[id]; ok {
			out[id] = owner
		}
	}
	return out, nil
}

// TallyReader serves fixed totals per stage. Err forces the durable fallback.
type TallyReader struct {
	Totals map[int64][]ports.SubmissionTotal
	Err    error
}

func (t TallyReader) ReadAll(_ context.Context, stageID int64) ([]ports.SubmissionTotal, error) {
	if t.Err != nil {
		return nil, fmt.Errorf("tally read: %w", t.Err)
	}
	return t.Totals[stageID], nil
}

// StageVoteReader serves fixed durable votes per stage.
type StageVoteReader struct {
	Votes map[int64][]ports.StageVote
}

func (r StageVoteReader) ListStageVotes(_ context.Context, stageID int64) ([]ports.StageVote, error) {
	return r.Votes[stageID], nil
}
