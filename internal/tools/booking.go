package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/FreightFlow/FreightFlow/internal/config"
	"github.com/FreightFlow/FreightFlow/internal/guard"
)

// BookTripTool creates a trip booking. With a configured trip API the
// payload is posted there; otherwise the booking is simulated with
// deterministic identifiers derived from the payload.
type BookTripTool struct {
	cfg    config.BookingConfig
	client *http.Client
}

func NewBookTripTool(cfg config.BookingConfig) *BookTripTool {
	return &BookTripTool{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *BookTripTool) Name() string { return "book_trip" }

func (t *BookTripTool) Description() string {
	return "Create a trip booking with destination, dates, and traveler count"
}

func (t *BookTripTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"destination": map[string]any{"type": "string", "description": "Trip destination"},
			"start_date":  map[string]any{"type": "string", "description": "Start date (YYYY-MM-DD)"},
			"end_date":    map[string]any{"type": "string", "description": "End date (YYYY-MM-DD)"},
			"travelers":   map[string]any{"type": "integer", "description": "Number of travelers"},
			"budget":      map[string]any{"type": "number", "description": "Budget in dollars"},
			"user_id":     map[string]any{"type": "string", "description": "Requesting user"},
		},
		"required": []string{"destination", "start_date", "end_date", "travelers"},
	}
}

func (t *BookTripTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	for _, field := range []string{"destination", "start_date", "end_date", "travelers"} {
		if _, ok := params[field]; !ok {
			return errorResult(fmt.Sprintf("Missing required field: %s", field)), nil
		}
	}

	payload := map[string]any{
		"destination": GetString(params, "destination", ""),
		"start_date":  GetString(params, "start_date", ""),
		"end_date":    GetString(params, "end_date", ""),
		"travelers":   GetInt(params, "travelers", 1),
		"budget":      GetFloat(params, "budget", 0),
		"user_id":     GetString(params, "user_id", ""),
		"created_via": "agentic_workflow",
	}

	if t.cfg.TripAPIURL != "" {
		return t.post(ctx, payload)
	}

	h := payloadHash(payload)
	out, _ := json.Marshal(map[string]any{
		"success":           true,
		"trip_id":           fmt.Sprintf("trip_%d", h%100000),
		"message":           "Trip created successfully",
		"trip_details":      payload,
		"confirmation_code": fmt.Sprintf("CONF%d", h%10000),
		"estimated_total":   payload["budget"],
	})
	return string(out), nil
}

// post sends the booking to the configured trip API and relays its
// response.
func (t *BookTripTool) post(ctx context.Context, payload map[string]any) (string, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.TripAPIURL, bytes.NewReader(body))
	if err != nil {
		return errorResult(fmt.Sprintf("API call failed: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if t.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.AuthToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return errorResult(fmt.Sprintf("API call failed: %v", err)), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(fmt.Sprintf("API call failed: %v", err)), nil
	}
	var responseData any
	if err := json.Unmarshal(data, &responseData); err != nil {
		responseData = string(data)
	}

	out, _ := json.Marshal(map[string]any{
		"success":       resp.StatusCode < 400,
		"status_code":   resp.StatusCode,
		"response_data": responseData,
	})
	return string(out), nil
}

// payloadHash folds the payload into a stable number so repeat bookings
// of the same request get the same simulated identifiers.
func payloadHash(payload map[string]any) uint64 {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, payload[k])
	}
	return h.Sum64()
}

// ContactOwnerTool reaches out to a truck owner to confirm availability.
// The owner response is simulated through the injected decider.
type ContactOwnerTool struct {
	decide Decider
}

func NewContactOwnerTool(decide Decider) *ContactOwnerTool {
	if decide == nil {
		decide = DefaultDecider
	}
	return &ContactOwnerTool{decide: decide}
}

func (t *ContactOwnerTool) Name() string { return "contact_owner" }

func (t *ContactOwnerTool) Description() string {
	return "Contact a truck owner to confirm availability and obtain a booking reference"
}

func (t *ContactOwnerTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"truck_id":      map[string]any{"type": "string", "description": "Truck to book"},
			"owner_contact": map[string]any{"type": "string", "description": "Owner phone or email"},
		},
		"required": []string{"truck_id", "owner_contact"},
	}
}

func (t *ContactOwnerTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	truckID := GetString(params, "truck_id", "")
	ownerContact := GetString(params, "owner_contact", "")
	if truckID == "" {
		return errorResult("truck_id is required"), nil
	}

	available := t.decide() > 0.2

	result := map[string]any{
		"success":       true,
		"truck_id":      truckID,
		"owner_contact": guard.Mask(ownerContact),
		"contacted_at":  time.Now().Format(time.RFC3339),
		"response_time": fmt.Sprintf("%d seconds", 30+int(t.decide()*270)),
	}
	if available {
		result["availability_status"] = "available"
		result["owner_response"] = "Truck is available for the requested dates"
		result["booking_confirmed"] = true
		result["booking_reference"] = fmt.Sprintf("BK%05d", 10000+int(t.decide()*89999))
	} else {
		result["availability_status"] = "not_available"
		result["owner_response"] = "Truck is not available for the requested dates"
	}

	out, _ := json.Marshal(result)
	return string(out), nil
}
