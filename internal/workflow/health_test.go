package workflow

import (
	"errors"
	"testing"
)

func TestHealthStatuses(t *testing.T) {
	probes := map[string]DescribeFunc{
		"interpreter": func() (string, string, error) {
			return "Request Interpreter", "Extract structured trip details", nil
		},
		"planner": func() (string, string, error) {
			return "Trip Planner", "", nil
		},
		"executor": func() (string, string, error) {
			return "", "", errors.New("not initialized")
		},
		"summarizer": nil,
	}

	got := Health(probes)

	want := map[string]string{
		"interpreter": "healthy",
		"planner":     "degraded",
		"executor":    "unhealthy",
		"summarizer":  "unhealthy",
	}
	for name, status := range want {
		if got[name] != status {
			t.Errorf("Health[%q] = %q, want %q", name, got[name], status)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("len(Health) = %d, want %d", len(got), len(want))
	}
}

func TestHealthEmpty(t *testing.T) {
	got := Health(nil)
	if len(got) != 0 {
		t.Fatalf("Health(nil) = %v, want empty map", got)
	}
}
