package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/tools"
)

// Executor drives the tool registry through the planned steps. Tool
// parameters pass the guard before every call.
type Executor struct {
	registry *tools.Registry
	guard    *guard.Guard
}

func NewExecutor(registry *tools.Registry, g *guard.Guard) *Executor {
	return &Executor{registry: registry, guard: g}
}

func (s *Executor) Name() string { return "executor" }
func (s *Executor) Role() string { return "Booking Executor" }
func (s *Executor) Goal() string {
	return "Run the booking tools and collect their results"
}

func (s *Executor) Run(ctx context.Context, task *Task) error {
	if task.Failure != "" || len(task.Plan) == 0 {
		return nil
	}
	request := task.Request

	// Step 1: confirm the request carries enough detail to book.
	// Blank fields stay out of the record so the required-field check
	// names them.
	record := map[string]any{
		"travelers": request.Travelers,
		"budget":    request.Budget,
	}
	for field, value := range map[string]string{
		"destination": request.Destination,
		"start_date":  request.StartDate,
		"end_date":    request.EndDate,
	} {
		if value != "" {
			record[field] = value
		}
	}
	validation, err := s.call(ctx, task, "validate_data", map[string]any{
		"data": record,
		"validation_rules": map[string]any{
			"required_fields": []any{"destination", "start_date", "end_date"},
			"business_rules": []any{
				map[string]any{"type": "min_value", "field": "budget", "value": 100},
			},
		},
	})
	if err != nil {
		return err
	}
	if validation["valid"] != true {
		task.Failure = "I need a few more details before booking: " +
			joinAny(validation["errors"])
		return nil
	}
	task.Findings = append(task.Findings, "Trip details validated")

	// Step 2: find candidate trucks.
	origin := request.Origin
	if origin == "" {
		origin = "current location"
	}
	search, err := s.call(ctx, task, "search_trucks", map[string]any{
		"pickup_location":   origin,
		"delivery_location": request.Destination,
		"date":              request.StartDate,
	})
	if err != nil {
		return err
	}
	trucks, _ := search["available_trucks"].([]any)
	if len(trucks) == 0 {
		task.Failure = fmt.Sprintf("No trucks available to %s on %s.", request.Destination, request.StartDate)
		return nil
	}
	task.Findings = append(task.Findings, fmt.Sprintf("Found %d trucks", len(trucks)))

	// Step 3: contact owners until one confirms.
	booking := s.confirmTruck(ctx, task, trucks)
	if booking == nil {
		task.Failure = "No truck owner confirmed availability. Please try different dates."
		return nil
	}
	task.Booking = booking

	// Step 4: create the trip.
	trip, err := s.call(ctx, task, "book_trip", map[string]any{
		"destination": request.Destination,
		"start_date":  request.StartDate,
		"end_date":    request.EndDate,
		"travelers":   max(request.Travelers, 1),
		"budget":      request.Budget,
		"user_id":     task.UserID,
	})
	if err != nil {
		return err
	}
	if trip["success"] != true {
		task.Failure = "Booking failed: " + stringOf(trip["error"])
		return nil
	}
	booking.TripID = stringOf(trip["trip_id"])
	booking.Confirmation = stringOf(trip["confirmation_code"])
	task.Findings = append(task.Findings, fmt.Sprintf("Trip %s created, confirmation %s",
		booking.TripID, booking.Confirmation))

	// Step 5: attach the booking confirmation document.
	document, err := s.call(ctx, task, "upload_document", map[string]any{
		"document_name": booking.TripID + "_confirmation.pdf",
		"document_type": "booking_confirmation",
		"trip_id":       booking.TripID,
	})
	if err != nil {
		return err
	}
	if stringOf(document["verification_status"]) == "failed" {
		task.Findings = append(task.Findings, "Confirmation document needs re-upload")
	} else {
		task.Findings = append(task.Findings, "Confirmation document verified")
	}

	// Step 6: notify the requester.
	if _, err := s.call(ctx, task, "send_notification", map[string]any{
		"channel":   "email",
		"recipient": task.UserID,
		"message":   fmt.Sprintf("Trip %s to %s confirmed (%s)", booking.TripID, request.Destination, booking.Confirmation),
		"subject":   "Trip booking confirmed",
	}); err != nil {
		return err
	}
	task.Findings = append(task.Findings, "Notification sent")
	return nil
}

// confirmTruck contacts owners in fleet order and returns the first
// confirmed booking, or nil when every owner declines.
func (s *Executor) confirmTruck(ctx context.Context, task *Task, trucks []any) *Booking {
	for _, raw := range trucks {
		truck, _ := raw.(map[string]any)
		if truck == nil {
			continue
		}
		contact, err := s.call(ctx, task, "contact_owner", map[string]any{
			"truck_id":      stringOf(truck["truck_id"]),
			"owner_contact": stringOf(truck["contact"]),
		})
		if err != nil {
			continue
		}
		if stringOf(contact["availability_status"]) == "available" {
			task.Findings = append(task.Findings, fmt.Sprintf("Owner confirmed %s (ref %s)",
				stringOf(truck["truck_id"]), stringOf(contact["booking_reference"])))
			return &Booking{
				TruckID:   stringOf(truck["truck_id"]),
				Reference: stringOf(contact["booking_reference"]),
			}
		}
	}
	return nil
}

// call guards the parameters, executes the tool, and records the action.
func (s *Executor) call(ctx context.Context, task *Task, name string, params map[string]any) (map[string]any, error) {
	if s.guard != nil && !s.guard.ValidateParams(params) {
		return nil, fmt.Errorf("parameters for %s rejected by security validation", name)
	}
	raw, err := s.registry.Execute(ctx, name, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	task.Actions = append(task.Actions, name)

	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%s returned malformed result: %w", name, err)
	}
	return result, nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func joinAny(v any) string {
	items, _ := v.([]any)
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprint(item))
	}
	return strings.Join(parts, "; ")
}
