package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

// Summarizer folds the task state into the final workflow result.
type Summarizer struct{}

func NewSummarizer() *Summarizer { return &Summarizer{} }

func (s *Summarizer) Name() string { return "summarizer" }
func (s *Summarizer) Role() string { return "Result Summarizer" }
func (s *Summarizer) Goal() string {
	return "Produce the final structured outcome of a booking run"
}

func (s *Summarizer) Run(ctx context.Context, task *Task) error {
	details := strings.Join(task.Findings, "\n")

	if task.Failure != "" {
		task.Result = &workflow.Result{
			Success: false,
			Summary: task.Failure,
			Details: details,
			Actions: task.Actions,
		}
		return nil
	}

	summary := "Request processed"
	if task.Booking != nil && task.Request != nil {
		summary = fmt.Sprintf("Trip to %s booked with %s, confirmation %s",
			task.Request.Destination, task.Booking.TruckID, task.Booking.Confirmation)
	}
	task.Result = &workflow.Result{
		Success: true,
		Summary: summary,
		Details: details,
		Actions: task.Actions,
	}
	return nil
}
