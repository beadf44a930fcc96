package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contestentities "compezze/contexts/contest-live/contest-service/domain/entities"
	"compezze/contexts/contest-live/session-orchestrator/domain/entities"
	domainerrors "compezze/contexts/contest-live/session-orchestrator/domain/errors"
	"compezze/contexts/contest-live/session-orchestrator/ports"
)

// Store backs the orchestrator in memory. WithinTx snapshots the mutable
// state and restores it when fn fails, mirroring a database rollback closely
// enough for transition tests.
type Store struct {
	mu sync.RWMutex

	contests map[int64]contestentities.Contest
	rooms    map[int64]entities.Room
	scores   map[int64]map[string]int64
}

func NewStore() *Store {
	return &Store{
		contests: make(map[int64]contestentities.Contest),
		rooms:    make(map[int64]entities.Room),
		scores:   make(map[int64]map[string]int64),
	}
}

func (s *Store) SetContest(contest contestentities.Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[contest.ContestID] = contest
}

func (s *Store) SetParticipantScore(contestID int64, userID string, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.scores[contestID]
	if !ok {
		byUser = make(map[string]int64)
		s.scores[contestID] = byUser
	}
	byUser[strings.TrimSpace(userID)] = total
}

// ParticipantScore reads a participant's running total. Test helper.
func (s *Store) ParticipantScore(contestID int64, userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[contestID][strings.TrimSpace(userID)]
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

func (s *Store) SetContestStatus(_ context.Context, contestID int64, status contestentities.ContestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[contestID]
	if !ok {
		return domainerrors.ErrContestNotFound
	}
	contest.Status = status
	s.contests[contestID] = contest
	return nil
}

func (s *Store) GetRoomByContest(_ context.Context, contestID int64) (entities.Room, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[contestID]
	return room, ok, nil
}

func (s *Store) SaveRoom(_ context.Context, room entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ContestID] = room
	return nil
}

func (s *Store) ApplyScoreDeltas(_ context.Context, contestID int64, deltas map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.scores[contestID]
	if !ok {
		byUser = make(map[string]int64)
		s.scores[contestID] = byUser
	}
	for userID, delta := range deltas {
		key := strings.TrimSpace(userID)
		if _, known := byUser[key]; !known {
			continue
		}
		byUser[key] += roundScore(delta)
	}
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type storeSnapshot struct {
	contests map[int64]contestentities.Contest
	rooms    map[int64]entities.Room
	scores   map[int64]map[string]int64
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		contests: make(map[int64]contestentities.Contest, len(s.contests)),
		rooms:    make(map[int64]entities.Room, len(s.rooms)),
		scores:   make(map[int64]map[string]int64, len(s.scores)),
	}
	for id, contest := range s.contests {
		snap.contests[id] = contest
	}
	for id, room := range s.rooms {
		snap.rooms[id] = room
	}
	for id, byUser := range s.scores {
		copied := make(map[string]int64, len(byUser))
		for user, total := range byUser {
			copied[user] = total
		}
		snap.scores[id] = copied
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests = snap.contests
	s.rooms = snap.rooms
	s.scores = snap.scores
}

func roundScore(delta float64) int64 {
	if delta >= 0 {
		return int64(delta + 0.5)
	}
	return int64(delta - 0.5)
}

var _ ports.RoomRepository = (*Store)(nil)
var _ ports.ContestStore = (*Store)(nil)
var _ ports.ScoreStore = (*Store)(nil)
var _ ports.TxManager = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
