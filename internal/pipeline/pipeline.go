// Package pipeline runs inbound requests through an ordered set of
// named stages: interpret, plan, execute, summarize. Each stage reads
// and extends the shared task; the first stage error aborts the run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/tools"
	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

// Stage is one named pipeline step. Role and Goal describe the stage
// for health reporting.
type Stage interface {
	Name() string
	Role() string
	Goal() string
	Run(ctx context.Context, task *Task) error
}

// Booking holds identifiers produced by a successful booking.
type Booking struct {
	TruckID      string
	TripID       string
	Confirmation string
	Reference    string
}

// Task is the mutable state threaded through the stages.
type Task struct {
	WorkflowID string
	UserID     string
	Message    string

	Request  *TripRequest
	Plan     []string
	Actions  []string
	Findings []string
	Booking  *Booking

	// Failure marks a run that cannot proceed but is not a stage
	// error, e.g. missing trip details. The summarizer turns it into
	// an unsuccessful result.
	Failure string

	Result *workflow.Result
}

// Pipeline executes stages in order.
type Pipeline struct {
	stages []Stage

	// OnStep, when set, observes each completed stage.
	OnStep func(name, detail string)
}

// New creates a pipeline from explicit stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Default wires the standard four-stage booking pipeline.
func Default(registry *tools.Registry, g *guard.Guard) *Pipeline {
	return New(
		NewInterpreter(),
		NewPlanner(),
		NewExecutor(registry, g),
		NewSummarizer(),
	)
}

// Execute runs the task through every stage and returns the final
// result. Context cancellation is checked between stages.
func (p *Pipeline) Execute(ctx context.Context, task *Task) (*workflow.Result, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stage.Run(ctx, task); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		if p.OnStep != nil {
			p.OnStep(stage.Name(), lastFinding(task))
		}
	}
	if task.Result == nil {
		return nil, fmt.Errorf("pipeline produced no result")
	}
	return task.Result, nil
}

// HealthProbes exposes each stage as a health probe.
func (p *Pipeline) HealthProbes() map[string]workflow.DescribeFunc {
	probes := make(map[string]workflow.DescribeFunc, len(p.stages))
	for _, stage := range p.stages {
		stage := stage
		probes[stage.Name()] = func() (string, string, error) {
			return stage.Role(), stage.Goal(), nil
		}
	}
	return probes
}

func lastFinding(task *Task) string {
	if len(task.Findings) == 0 {
		return ""
	}
	return task.Findings[len(task.Findings)-1]
}
