package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"compezze/contexts/contest-live/contest-service/domain/entities"
	domainerrors "compezze/contexts/contest-live/contest-service/domain/errors"
	"compezze/contexts/contest-live/contest-service/ports"
)

// Store is the in-memory test double for every contest-service port. The
// duplicate checks inside AddParticipant and CreateSubmission stand in for
// the unique indexes of the postgres schema.
type Store struct {
	mu sync.RWMutex

	contests     map[int64]entities.Contest
	stages       map[int64]entities.Stage
	participants map[int64]entities.Participant
	submissions  map[string]entities.Submission

	nextContestID     int64
	nextStageID       int64
	nextParticipantID int64
}

func NewStore() *Store {
	return &Store{
		contests:          make(map[int64]entities.Contest),
		stages:            make(map[int64]entities.Stage),
		participants:      make(map[int64]entities.Participant),
		submissions:       make(map[string]entities.Submission),
		nextContestID:     1,
		nextStageID:       1,
		nextParticipantID: 1,
	}
}

func (s *Store) CreateContest(_ context.Context, contest entities.Contest) (entities.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest.ContestID = s.nextContestID
	s.nextContestID++
	stored := contest
	stored.Stages = nil
	s.contests[contest.ContestID] = stored
	return contest, nil
}

func (s *Store) UpdateContest(_ context.Context, contest entities.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[contest.ContestID]; !ok {
		return domainerrors.ErrContestNotFound
	}
	stored := contest
	stored.Stages = nil
	s.contests[contest.ContestID] = stored
	return nil
}

func (s *Store) GetContest(_ context.Context, contestID int64) (entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[contestID]
	if !ok {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	for _, stage := range s.stages {
		if stage.ContestID == contestID {
			contest.Stages = append(contest.Stages, cloneStage(stage))
		}
	}
	sort.Slice(contest.Stages, func(i, j int) bool {
		return contest.Stages[i].Position < contest.Stages[j].Position
	})
	return contest, nil
}

func (s *Store) ListContests(_ context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Contest
	for _, contest := range s.contests {
		if filter.OrganizerID != "" && !strings.EqualFold(contest.OrganizerID, filter.OrganizerID) {
			continue
		}
		if filter.Status != "" && contest.Status != filter.Status {
			continue
		}
		out = append(out, contest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContestID < out[j].ContestID })
	return out, nil
}

// SetContestStatus is a test seeding helper; status transitions in production
// belong to the session orchestrator.
func (s *Store) SetContestStatus(contestID int64, status entities.ContestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contest, ok := s.contests[contestID]; ok {
		contest.Status = status
		s.contests[contestID] = contest
	}
}

func (s *Store) AddStage(_ context.Context, stage entities.Stage) (entities.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage.StageID = s.nextStageID
	s.nextStageID++
	s.stages[stage.StageID] = cloneStage(stage)
	return stage, nil
}

func (s *Store) UpdateStage(_ context.Context, stage entities.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[stage.StageID]; !ok {
		return domainerrors.ErrStageNotFound
	}
	s.stages[stage.StageID] = cloneStage(stage)
	return nil
}

func (s *Store) ReplacePositions(_ context.Context, contestID int64, positions map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for stageID, position := range positions {
		stage, ok := s.stages[stageID]
		if !ok || stage.ContestID != contestID {
			return domainerrors.ErrStageNotFound
		}
		stage.Position = position
		s.stages[stageID] = stage
	}
	return nil
}

func (s *Store) AddParticipant(_ context.Context, participant entities.Participant) (entities.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.ContestID == participant.ContestID && strings.EqualFold(existing.UserID, participant.UserID) {
			return existing, nil
		}
	}
	participant.ParticipantID = s.nextParticipantID
	s.nextParticipantID++
	s.participants[participant.ParticipantID] = cloneParticipant(participant)
	return participant, nil
}

func (s *Store) UpdateParticipant(_ context.Context, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.participants[participant.ParticipantID]
	if !ok || existing.ContestID != participant.ContestID {
		return domainerrors.ErrParticipantNotFound
	}
	s.participants[participant.ParticipantID] = cloneParticipant(participant)
	return nil
}

func (s *Store) GetParticipant(_ context.Context, contestID, participantID int64) (entities.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[participantID]
	if !ok || participant.ContestID != contestID {
		return entities.Participant{}, domainerrors.ErrParticipantNotFound
	}
	return cloneParticipant(participant), nil
}

func (s *Store) GetParticipantByUser(_ context.Context, contestID int64, userID string) (entities.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, participant := range s.participants {
		if participant.ContestID == contestID && strings.EqualFold(participant.UserID, userID) {
			return cloneParticipant(participant), true, nil
		}
	}
	return entities.Participant{}, false, nil
}

func (s *Store) CountParticipants(_ context.Context, contestID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, participant := range s.participants {
		if participant.ContestID == contestID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.submissions {
		if existing.ContestID == submission.ContestID && existing.ParticipantID == submission.ParticipantID {
			return domainerrors.ErrDuplicateSubmission
		}
	}
	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) UpdateSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.submissions[submission.SubmissionID]
	if !ok || existing.ContestID != submission.ContestID {
		return domainerrors.ErrSubmissionNotFound
	}
	s.submissions[submission.SubmissionID] = submission
	return nil
}

func (s *Store) DeleteSubmission(_ context.Context, contestID int64, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.submissions[submissionID]
	if !ok || existing.ContestID != contestID {
		return domainerrors.ErrSubmissionNotFound
	}
	delete(s.submissions, submissionID)
	return nil
}

func (s *Store) GetSubmission(_ context.Context, contestID int64, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[submissionID]
	if !ok || submission.ContestID != contestID {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *Store) GetSubmissionByParticipant(_ context.Context, contestID, participantID int64) (entities.Submission, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, submission := range s.submissions {
		if submission.ContestID == contestID && submission.ParticipantID == participantID {
			return submission, true, nil
		}
	}
	return entities.Submission{}, false, nil
}

func (s *Store) ListSubmissions(_ context.Context, contestID int64, status entities.SubmissionStatus) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Submission
	for _, submission := range s.submissions {
		if submission.ContestID != contestID {
			continue
		}
		if status != "" && submission.Status != status {
			continue
		}
		out = append(out, submission)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
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

func cloneParticipant(participant entities.Participant) entities.Participant {
	out := participant
	out.Roles = append([]entities.ContestRole(nil), participant.Roles...)
	return out
}

var (
	_ ports.ContestRepository     = (*Store)(nil)
	_ ports.StageRepository       = (*Store)(nil)
	_ ports.ParticipantRepository = (*Store)(nil)
	_ ports.SubmissionRepository  = (*Store)(nil)
	_ ports.Clock                 = (*Store)(nil)
	_ ports.IDGenerator           = (*Store)(nil)
)
