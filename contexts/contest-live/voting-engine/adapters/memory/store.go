package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/voting-engine/domain/entities"
	domainerrors "compezze/contexts/contest-live/voting-engine/domain/errors"
	"compezze/contexts/contest-live/voting-engine/ports"
)

// Store backs the vote path in memory. Marker identity uniqueness is checked
// and inserted under one lock, matching the database's unique-key behaviour.
type Store struct {
	mu sync.RWMutex

	markers        map[string]entities.VoteMarker
	markerIdentity map[string]string

	contests     map[int64]contestentities.Contest
	stages       map[int64]contestentities.Stage
	rooms        map[int64]ports.RoomProjection
	participants map[string]contestentities.Participant
	submissions  map[string]contestentities.Submission
}

func NewStore() *Store {
	return &Store{
		markers:        make(map[string]entities.VoteMarker),
		markerIdentity: make(map[string]string),
		contests:       make(map[int64]contestentities.Contest),
		stages:         make(map[int64]contestentities.Stage),
		rooms:          make(map[int64]ports.RoomProjection),
		participants:   make(map[string]contestentities.Participant),
		submissions:    make(map[string]contestentities.Submission),
	}
}

func (s *Store) SetContest(contest contestentities.Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[contest.ContestID] = contest
}

func (s *Store) SetStage(stage contestentities.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[stage.StageID] = stage
}

func (s *Store) SetRoom(room ports.RoomProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ContestID] = room
}

func (s *Store) SetParticipant(participant contestentities.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participantKey(participant.ContestID, participant.UserID)] = participant
}

func (s *Store) SetSubmission(submission contestentities.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
}

func (s *Store) SaveMarker(_ context.Context, marker entities.VoteMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := markerIdentityKey(marker.StageID, marker.ParticipantID, marker.SubmissionID)
	if _, exists := s.markerIdentity[identity]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.markers[marker.MarkerID] = marker
	s.markerIdentity[identity] = marker.MarkerID
	return nil
}

func (s *Store) ListMarkersByStage(_ context.Context, stageID int64) ([]entities.VoteMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoteMarker, 0)
	for _, marker := range s.markers {
		if marker.StageID == stageID {
			items = append(items, marker)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetContest(_ context.Context, contestID int64) (contestentities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[contestID]
	if !ok {
		return contestentities.Contest{}, domainerrors.ErrContestNotFound
	}
	return contest, nil
}

func (s *Store) GetStage(_ context.Context, stageID int64) (contestentities.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stage, ok := s.stages[stageID]
	if !ok {
		return contestentities.Stage{}, domainerrors.ErrStageNotFound
	}
	return stage, nil
}

func (s *Store) GetRoomByContest(_ context.Context, contestID int64) (ports.RoomProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[contestID]
	return room, ok, nil
}

func (s *Store) GetParticipantByUser(
	_ context.Context,
	contestID int64,
	userID string,
) (contestentities.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[participantKey(contestID, userID)]
	return participant, ok, nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (contestentities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[strings.TrimSpace(submissionID)]
	if !ok {
		return contestentities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func participantKey(contestID int64, userID string) string {
	return fmt.Sprintf("%d/%s", contestID, strings.TrimSpace(userID))
}

func markerIdentityKey(stageID, participantID int64, submissionID string) string {
	return fmt.Sprintf("%d/%d/%s", stageID, participantID, strings.TrimSpace(submissionID))
}

var _ ports.VoteRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
