package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Planner decides which tool steps the executor will run.
type Planner struct{}

func NewPlanner() *Planner { return &Planner{} }

func (s *Planner) Name() string { return "planner" }
func (s *Planner) Role() string { return "Trip Planner" }
func (s *Planner) Goal() string {
	return "Turn a trip request into an ordered execution plan"
}

func (s *Planner) Run(ctx context.Context, task *Task) error {
	if task.Request == nil || !task.Request.HasData() {
		task.Failure = "I couldn't find trip details in your message. " +
			"Tell me where you're going, e.g. \"Book a truck to Miami from 2026-09-01 to 2026-09-05\"."
		task.Findings = append(task.Findings, "Request has no extractable trip details")
		return nil
	}

	task.Plan = []string{
		"validate_data",
		"search_trucks",
		"contact_owner",
		"book_trip",
		"upload_document",
		"send_notification",
	}
	task.Findings = append(task.Findings, fmt.Sprintf("Planned %d steps: %s",
		len(task.Plan), strings.Join(task.Plan, ", ")))
	return nil
}
