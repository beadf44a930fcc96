package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"compezze/contexts/contest-live/voting-engine/ports"
)

// Tally is the in-process tally store. Down simulates an unreachable backend.
type Tally struct {
	mu     sync.Mutex
	Down   bool
	totals map[int64]map[string]float64
}

func NewTally() *Tally {
	return &Tally{totals: make(map[int64]map[string]float64)}
}

func (t *Tally) Increment(_ context.Context, stageID int64, submissionID string, score float64) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Down {
		return 0, errors.New("tally store unavailable")
	}
	stage, ok := t.totals[stageID]
	if !ok {
		stage = make(map[string]float64)
		t.totals[stageID] = stage
	}
	stage[submissionID] += score
	return stage[submissionID], nil
}

func (t *Tally) ReadAll(_ context.Context, stageID int64) ([]ports.SubmissionTotal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Down {
		return nil, errors.New("tally store unavailable")
	}
	stage := t.totals[stageID]
	items := make([]ports.SubmissionTotal, 0, len(stage))
	for submissionID, total := range stage {
		items = append(items, ports.SubmissionTotal{SubmissionID: submissionID, Total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total == items[j].Total {
			return items[i].SubmissionID < items[j].SubmissionID
		}
		return items[i].Total > items[j].Total
	})
	return items, nil
}

// DropStage clears a stage's totals, mirroring the production store's cleanup.
func (t *Tally) DropStage(_ context.Context, stageID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Down {
		return errors.New("tally store unavailable")
	}
	delete(t.totals, stageID)
	return nil
}

var _ ports.TallyStore = (*Tally)(nil)
