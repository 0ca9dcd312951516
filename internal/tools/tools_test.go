package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FreightFlow/FreightFlow/internal/config"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v\n%s", err, raw)
	}
	return out
}

func fixedDecider(v float64) Decider {
	return func() float64 { return v }
}

func TestDefaultRegistryHasAllTools(t *testing.T) {
	r := NewDefaultRegistry(config.BookingConfig{}, nil)
	for _, name := range []string{
		"search_trucks", "book_trip", "contact_owner",
		"upload_document", "validate_data", "send_notification",
	} {
		if _, ok := r.Get(name); !ok {
			t.Errorf("registry missing tool %q", name)
		}
	}
	if len(r.List()) != 6 {
		t.Fatalf("len(List) = %d, want 6", len(r.List()))
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Execute(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestSearchTrucksReturnsFleet(t *testing.T) {
	tool := NewSearchTrucksTool()
	raw, err := tool.Execute(context.Background(), map[string]any{
		"pickup_location":   "Mumbai",
		"delivery_location": "Delhi",
		"date":              "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["success"] != true {
		t.Fatalf("success = %v", result["success"])
	}
	trucks, _ := result["available_trucks"].([]any)
	if len(trucks) != 2 {
		t.Fatalf("len(available_trucks) = %d, want 2", len(trucks))
	}
	first, _ := trucks[0].(map[string]any)
	if first["truck_id"] != "TRK001" || first["location"] != "Mumbai" {
		t.Fatalf("unexpected first truck: %v", first)
	}
}

func TestSearchTrucksRequiresLocations(t *testing.T) {
	tool := NewSearchTrucksTool()
	raw, err := tool.Execute(context.Background(), map[string]any{"date": "2026-09-01"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result := decode(t, raw); result["success"] != false {
		t.Fatalf("expected failure result, got %v", result)
	}
}

func TestBookTripSimulatesDeterministicIDs(t *testing.T) {
	tool := NewBookTripTool(config.BookingConfig{})
	params := map[string]any{
		"destination": "Miami",
		"start_date":  "2026-09-01",
		"end_date":    "2026-09-05",
		"travelers":   float64(3),
		"budget":      float64(2000),
	}

	first, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first != second {
		t.Fatal("identical bookings produced different results")
	}

	result := decode(t, first)
	tripID, _ := result["trip_id"].(string)
	conf, _ := result["confirmation_code"].(string)
	if !strings.HasPrefix(tripID, "trip_") {
		t.Fatalf("trip_id = %q", tripID)
	}
	if !strings.HasPrefix(conf, "CONF") {
		t.Fatalf("confirmation_code = %q", conf)
	}
}

func TestBookTripPostsToConfiguredAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["destination"] != "Miami" {
			t.Errorf("destination = %v", payload["destination"])
		}
		w.Write([]byte(`{"trip_id":"api-trip-1"}`))
	}))
	defer srv.Close()

	tool := NewBookTripTool(config.BookingConfig{TripAPIURL: srv.URL, AuthToken: "secret"})
	raw, err := tool.Execute(context.Background(), map[string]any{
		"destination": "Miami",
		"start_date":  "2026-09-01",
		"end_date":    "2026-09-05",
		"travelers":   float64(2),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["success"] != true || result["status_code"] != float64(200) {
		t.Fatalf("result = %v", result)
	}
	response, _ := result["response_data"].(map[string]any)
	if response["trip_id"] != "api-trip-1" {
		t.Fatalf("response_data = %v", response)
	}
}

func TestBookTripRequiresFields(t *testing.T) {
	tool := NewBookTripTool(config.BookingConfig{})
	raw, err := tool.Execute(context.Background(), map[string]any{"destination": "Miami"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["success"] != false {
		t.Fatal("expected failure when required fields are missing")
	}
	if msg, _ := result["error"].(string); !strings.Contains(msg, "start_date") {
		t.Fatalf("error = %q, want missing field named", msg)
	}
}

func TestContactOwnerAvailable(t *testing.T) {
	tool := NewContactOwnerTool(fixedDecider(0.5))
	raw, err := tool.Execute(context.Background(), map[string]any{
		"truck_id":      "TRK001",
		"owner_contact": "+91-9876543210",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["availability_status"] != "available" {
		t.Fatalf("availability_status = %v", result["availability_status"])
	}
	if ref, _ := result["booking_reference"].(string); !strings.HasPrefix(ref, "BK") {
		t.Fatalf("booking_reference = %q", ref)
	}
	if contact, _ := result["owner_contact"].(string); strings.Contains(contact, "9876543210") {
		t.Fatalf("owner contact not masked: %q", contact)
	}
}

func TestContactOwnerUnavailable(t *testing.T) {
	tool := NewContactOwnerTool(fixedDecider(0.1))
	raw, err := tool.Execute(context.Background(), map[string]any{
		"truck_id":      "TRK002",
		"owner_contact": "owner@example.com",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["availability_status"] != "not_available" {
		t.Fatalf("availability_status = %v", result["availability_status"])
	}
	if _, ok := result["booking_reference"]; ok {
		t.Fatal("unavailable truck should not carry a booking reference")
	}
}

func TestUploadDocumentOutcomes(t *testing.T) {
	params := map[string]any{
		"document_name": "invoice.pdf",
		"document_type": "invoice",
	}

	pass := NewUploadDocumentTool(fixedDecider(0.5))
	raw, err := pass.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result := decode(t, raw); result["verification_status"] != "passed" {
		t.Fatalf("verification_status = %v, want passed", result["verification_status"])
	}

	fail := NewUploadDocumentTool(fixedDecider(0.95))
	raw, err = fail.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result := decode(t, raw); result["verification_status"] != "failed" {
		t.Fatalf("verification_status = %v, want failed", result["verification_status"])
	}
}

func TestValidateData(t *testing.T) {
	tool := NewValidateDataTool()
	raw, err := tool.Execute(context.Background(), map[string]any{
		"data": map[string]any{
			"email":   "not-an-email",
			"phone":   "555-123-4567",
			"budget":  float64(50),
			"address": strings.Repeat("x", 300),
		},
		"validation_rules": map[string]any{
			"required_fields": []any{"email", "destination"},
			"field_types": map[string]any{
				"email": "email",
				"phone": "phone",
			},
			"business_rules": []any{
				map[string]any{"type": "min_value", "field": "budget", "value": float64(100)},
				map[string]any{"type": "max_length", "field": "address", "value": float64(255)},
			},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["valid"] != false {
		t.Fatal("expected invalid result")
	}
	errs, _ := result["errors"].([]any)
	if len(errs) != 3 {
		t.Fatalf("errors = %v, want missing destination, bad email, long address", errs)
	}
	warnings, _ := result["warnings"].([]any)
	if len(warnings) != 1 || !strings.Contains(warnings[0].(string), "budget") {
		t.Fatalf("warnings = %v, want one budget warning", warnings)
	}
}

func TestValidateDataAcceptsCleanRecord(t *testing.T) {
	tool := NewValidateDataTool()
	raw, err := tool.Execute(context.Background(), map[string]any{
		"data": map[string]any{
			"email": "ops@example.com",
			"phone": "5551234567",
			"count": "12",
		},
		"validation_rules": map[string]any{
			"required_fields": []any{"email"},
			"field_types": map[string]any{
				"email": "email",
				"phone": "phone",
				"count": "number",
			},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result := decode(t, raw); result["valid"] != true {
		t.Fatalf("expected valid, got %v", result)
	}
}

func TestSendNotificationMasksRecipient(t *testing.T) {
	tool := NewSendNotificationTool()
	raw, err := tool.Execute(context.Background(), map[string]any{
		"channel":   "email",
		"recipient": "driver@example.com",
		"message":   "Your trip is booked",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	result := decode(t, raw)
	if result["success"] != true {
		t.Fatalf("success = %v", result["success"])
	}
	if recipient, _ := result["recipient"].(string); strings.Contains(recipient, "example.com") {
		t.Fatalf("recipient not masked: %q", recipient)
	}
	if result["subject"] != "Workflow Notification" {
		t.Fatalf("subject = %v", result["subject"])
	}
}

func TestSendNotificationRejectsUnknownChannel(t *testing.T) {
	tool := NewSendNotificationTool()
	raw, err := tool.Execute(context.Background(), map[string]any{
		"channel":   "carrier-pigeon",
		"recipient": "r",
		"message":   "m",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result := decode(t, raw); result["success"] != false {
		t.Fatal("expected failure for unknown channel")
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"s": "text",
		"n": float64(7),
		"f": 2.5,
		"b": true,
	}
	if got := GetString(params, "s", "d"); got != "text" {
		t.Errorf("GetString = %q", got)
	}
	if got := GetString(params, "missing", "d"); got != "d" {
		t.Errorf("GetString default = %q", got)
	}
	if got := GetInt(params, "n", 0); got != 7 {
		t.Errorf("GetInt = %d", got)
	}
	if got := GetFloat(params, "f", 0); got != 2.5 {
		t.Errorf("GetFloat = %v", got)
	}
	if got := GetBool(params, "b", false); !got {
		t.Error("GetBool = false, want true")
	}
	if got := GetBool(params, "s", true); !got {
		t.Error("GetBool wrong type should return default")
	}
}
