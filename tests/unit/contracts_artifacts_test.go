package unit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"compezze/internal/shared/events"
)

func TestContestLiveOpenAPIContractIncludesImplementedRoutes(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "contracts", "api", "v1", "contest-live.openapi.json"))
	if err != nil {
		t.Fatalf("read contest-live openapi: %v", err)
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode contest-live openapi: %v", err)
	}

	expected := map[string][]string{
		"/api/contests":                                                  {"post", "get"},
		"/api/contests/{contest_id}":                                     {"get", "patch"},
		"/api/contests/{contest_id}/stages":                              {"post"},
		"/api/contests/{contest_id}/stages/order":                        {"put"},
		"/api/contests/{contest_id}/stages/{stage_id}":                   {"get", "patch"},
		"/api/contests/{contest_id}/participants":                        {"post"},
		"/api/contests/{contest_id}/participants/{participant_id}/roles": {"put"},
		"/api/contests/{contest_id}/submissions":                         {"post", "get"},
		"/api/contests/{contest_id}/submissions/{submission_id}/review":  {"post"},
		"/api/contests/{contest_id}/submissions/mine":                    {"delete"},
		"/api/contests/{contest_id}/session":                             {"post"},
		"/api/contests/{contest_id}/session/stages/{stage_id}/start":     {"post"},
		"/api/contests/{contest_id}/session/advance":                     {"post"},
		"/api/contests/{contest_id}/session/finish-stage":                {"post"},
		"/api/contests/{contest_id}/session/close":                       {"post"},
		"/api/votes":                         {"post"},
		"/api/stages/{stage_id}/leaderboard": {"get"},
	}
	for path, methods := range expected {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path in openapi contract: %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("missing method %s for path %s in openapi contract", method, path)
			}
		}
	}
}

// The envelope published in-process must serialize to the same field set the
// versioned cross-runtime contract declares.
func TestEventEnvelopeMatchesCrossRuntimeContract(t *testing.T) {
	envelope := events.Envelope{
		EventID:       "evt-1",
		EventType:     events.TypeStageChanged,
		SourceService: "session-orchestrator",
		OccurredAtUTC: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
		ContestID:     42,
		Payload:       events.StageChangedPayload{StageID: 7, StageName: "Jury Round", StageType: "JURY_VOTE", Position: 1},
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	for _, field := range []string{"event_id", "event_type", "source_service", "occurred_at_utc", "contest_id", "payload"} {
		if _, ok := decoded[field]; !ok {
			t.Fatalf("envelope is missing contract field %q", field)
		}
	}
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	current := wd
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		current = parent
	}
}
