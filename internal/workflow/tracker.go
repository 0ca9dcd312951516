// Package workflow tracks the in-process lifecycle of workflow runs.
// Runs live only as long as the process; durable storage is deliberately
// out of scope.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a run. A run transitions from running
// to exactly one terminal state, once.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var (
	// ErrNotFound is returned when an operation references an unknown run.
	ErrNotFound = errors.New("workflow not found")
	// ErrInvalidState is returned when a transition out of a terminal
	// state is attempted. That is a caller bug, never silently absorbed.
	ErrInvalidState = errors.New("workflow already in terminal state")
)

// Result is the structured outcome of a run. Transports format this into
// user-facing text; the tracker only stores it.
type Result struct {
	Success bool     `json:"success"`
	Summary string   `json:"summary"`
	Details string   `json:"details,omitempty"`
	Actions []string `json:"actions_taken,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Step is one informational pipeline step recorded against a run.
type Step struct {
	Name   string    `json:"name"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Run is one tracked invocation of the pipeline.
type Run struct {
	ID        string    `json:"workflow_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"start_time"`
	Result    *Result   `json:"result,omitempty"`
	Steps     []Step    `json:"steps,omitempty"`
}

// Summary is the per-run view returned by history queries.
type Summary struct {
	WorkflowID string    `json:"workflow_id"`
	Status     Status    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	Message    string    `json:"message"`
}

// DefaultHistoryLimit bounds history queries when the caller passes no
// explicit limit.
const DefaultHistoryLimit = 10

const summaryMessageChars = 100

// Tracker owns the run table. All methods are safe for concurrent use;
// a single mutex domain keeps status and result updates atomic from a
// reader's point of view.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*Run)}
}

// Create registers a new run in the running state and returns its
// identifier. A zero timestamp defaults to now.
func (t *Tracker) Create(userID, message string, ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	id := uuid.NewString()

	t.mu.Lock()
	t.runs[id] = &Run{
		ID:        id,
		UserID:    userID,
		Message:   message,
		Status:    StatusRunning,
		StartTime: ts,
	}
	t.mu.Unlock()

	slog.Info("Workflow started", "workflow_id", id, "user_id", userID, "status", "started")
	return id
}

// MarkCompleted transitions a running run to completed and attaches its
// result.
func (t *Tracker) MarkCompleted(id string, result *Result) error {
	run, err := t.finish(id, StatusCompleted, result)
	if err != nil {
		return err
	}
	slog.Info("Workflow completed",
		"workflow_id", id, "user_id", run.UserID, "status", "completed",
		"summary", summaryOf(result))
	return nil
}

// MarkFailed transitions a running run to failed with an error
// description.
func (t *Tracker) MarkFailed(id string, errDesc string) error {
	result := &Result{
		Success: false,
		Summary: "Workflow execution failed",
		Err:     errDesc,
	}
	run, err := t.finish(id, StatusFailed, result)
	if err != nil {
		return err
	}
	slog.Error("Workflow failed",
		"workflow_id", id, "user_id", run.UserID, "status", "failed",
		"error", errDesc)
	return nil
}

// finish applies the terminal transition. Status and result are set
// under the same lock so readers never see one without the other.
func (t *Tracker) finish(id string, status Status, result *Result) (*Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if run.Status != StatusRunning {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidState, id, run.Status)
	}
	run.Status = status
	run.Result = result
	return run, nil
}

// AppendStep records an informational step against a run.
func (t *Tracker) AppendStep(id, name, detail string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	run.Steps = append(run.Steps, Step{Name: name, Detail: detail, At: time.Now()})
	return nil
}

// Get returns a snapshot of a run.
func (t *Tracker) Get(id string) (Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	run, ok := t.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	snap := *run
	snap.Steps = append([]Step(nil), run.Steps...)
	if run.Result != nil {
		res := *run.Result
		snap.Result = &res
	}
	return snap, nil
}

// HistoryFor returns run summaries for a user, most recent first by
// start time. Messages are truncated for display. limit <= 0 applies
// the default.
func (t *Tracker) HistoryFor(userID string, limit int) []Summary {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	t.mu.RLock()
	var summaries []Summary
	for _, run := range t.runs {
		if run.UserID != userID {
			continue
		}
		summaries = append(summaries, Summary{
			WorkflowID: run.ID,
			Status:     run.Status,
			StartTime:  run.StartTime,
			Message:    truncate(run.Message, summaryMessageChars),
		})
	}
	t.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].StartTime.Equal(summaries[j].StartTime) {
			return summaries[i].WorkflowID < summaries[j].WorkflowID
		}
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// ActiveCount returns the number of runs still in the running state.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, run := range t.runs {
		if run.Status == StatusRunning {
			n++
		}
	}
	return n
}

func summaryOf(result *Result) string {
	if result == nil || result.Summary == "" {
		return "N/A"
	}
	return truncate(result.Summary, summaryMessageChars)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
