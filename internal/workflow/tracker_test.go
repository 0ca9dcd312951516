package workflow

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateAndComplete(t *testing.T) {
	tr := NewTracker()
	id := tr.Create("user-1", "Book a truck to Miami", time.Time{})
	if id == "" {
		t.Fatal("expected non-empty workflow id")
	}

	run, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != StatusRunning {
		t.Fatalf("status = %q, want %q", run.Status, StatusRunning)
	}
	if run.StartTime.IsZero() {
		t.Fatal("expected start time to default to now")
	}

	result := &Result{Success: true, Summary: "Trip booked", Actions: []string{"book_trip"}}
	if err := tr.MarkCompleted(id, result); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	run, err = tr.Get(id)
	if err != nil {
		t.Fatalf("Get after complete: %v", err)
	}
	if run.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", run.Status, StatusCompleted)
	}
	if run.Result == nil || !run.Result.Success {
		t.Fatalf("result = %+v, want success", run.Result)
	}
}

func TestMarkFailedStoresError(t *testing.T) {
	tr := NewTracker()
	id := tr.Create("user-1", "bad request", time.Time{})

	if err := tr.MarkFailed(id, "executor timed out"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	run, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", run.Status, StatusFailed)
	}
	if run.Result == nil || run.Result.Err != "executor timed out" {
		t.Fatalf("result = %+v, want error description preserved", run.Result)
	}
}

func TestTerminalTransitionsHappenOnce(t *testing.T) {
	tr := NewTracker()
	id := tr.Create("user-1", "hello", time.Time{})
	if err := tr.MarkCompleted(id, &Result{Success: true, Summary: "done"}); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	if err := tr.MarkCompleted(id, &Result{Success: true}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second MarkCompleted error = %v, want ErrInvalidState", err)
	}
	if err := tr.MarkFailed(id, "late failure"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("MarkFailed after complete error = %v, want ErrInvalidState", err)
	}

	run, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != StatusCompleted || run.Result.Summary != "done" {
		t.Fatalf("terminal state mutated: %+v", run)
	}
}

func TestUnknownRunReturnsNotFound(t *testing.T) {
	tr := NewTracker()
	missing := uuid.NewString()

	if _, err := tr.Get(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	if err := tr.MarkCompleted(missing, &Result{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkCompleted error = %v, want ErrNotFound", err)
	}
	if err := tr.MarkFailed(missing, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkFailed error = %v, want ErrNotFound", err)
	}
	if err := tr.AppendStep(missing, "plan", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AppendStep error = %v, want ErrNotFound", err)
	}
}

func TestHistoryForOrdersAndLimits(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, tr.Create("user-1", "run", base.Add(time.Duration(i)*time.Minute)))
	}
	tr.Create("user-2", "other user", base)

	history := tr.HistoryFor("user-1", 5)
	if len(history) != 5 {
		t.Fatalf("len(history) = %d, want 5", len(history))
	}
	if history[0].WorkflowID != ids[11] {
		t.Fatalf("history[0] = %s, want most recent run %s", history[0].WorkflowID, ids[11])
	}
	for i := 1; i < len(history); i++ {
		if history[i].StartTime.After(history[i-1].StartTime) {
			t.Fatalf("history not in descending start time order at index %d", i)
		}
	}

	history = tr.HistoryFor("user-1", 0)
	if len(history) != DefaultHistoryLimit {
		t.Fatalf("default limit gave %d entries, want %d", len(history), DefaultHistoryLimit)
	}
}

func TestHistoryTruncatesMessage(t *testing.T) {
	tr := NewTracker()
	long := strings.Repeat("m", 150)
	tr.Create("user-1", long, time.Time{})

	history := tr.HistoryFor("user-1", 1)
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if got := len(history[0].Message); got != 100 {
		t.Fatalf("message length = %d, want 100", got)
	}
}

func TestConcurrentCreatesAreDistinct(t *testing.T) {
	tr := NewTracker()
	const n = 64

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = tr.Create("user-1", "concurrent", time.Time{})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate workflow id %s", id)
		}
		seen[id] = true
	}
	if got := tr.ActiveCount(); got != n {
		t.Fatalf("ActiveCount = %d, want %d", got, n)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	tr := NewTracker()
	id := tr.Create("user-1", "steps", time.Time{})
	if err := tr.AppendStep(id, "interpret", "extracted destination"); err != nil {
		t.Fatalf("AppendStep: %v", err)
	}

	snap, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	snap.Steps[0].Name = "mutated"
	snap.Status = StatusFailed

	again, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Steps[0].Name != "interpret" || again.Status != StatusRunning {
		t.Fatalf("snapshot mutation leaked into tracker: %+v", again)
	}
}
