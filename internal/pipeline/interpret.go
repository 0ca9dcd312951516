package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	datePattern      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	travelersPattern = regexp.MustCompile(`(\d+) (?:people|travelers|persons|guests)`)
	budgetPattern    = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)
	originPattern    = regexp.MustCompile(`(?i)\bfrom ([a-z]+)`)
)

// TripRequest is the structured form of a natural-language trip message.
type TripRequest struct {
	Intent      string  `json:"intent"`
	Origin      string  `json:"origin,omitempty"`
	Destination string  `json:"destination,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	EndDate     string  `json:"end_date,omitempty"`
	Travelers   int     `json:"travelers,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// HasData reports whether any trip field was extracted.
func (r *TripRequest) HasData() bool {
	return r.Destination != "" || r.StartDate != "" || r.Travelers > 0 || r.Budget > 0
}

// ParseTripRequest extracts trip details from free text with simple
// pattern matching. Destination is the first word after " to ", dates
// are ISO pairs, traveler counts and dollar budgets come from fixed
// patterns.
func ParseTripRequest(message string) *TripRequest {
	request := &TripRequest{Intent: "create_trip", Confidence: 0.8}
	lower := strings.ToLower(message)

	if idx := strings.Index(lower, " to "); idx >= 0 {
		rest := strings.Fields(lower[idx+len(" to "):])
		if len(rest) > 0 {
			request.Destination = title(strings.Trim(rest[0], ".,!?"))
		}
	}
	if m := originPattern.FindStringSubmatch(lower); m != nil && m[1] != "" {
		request.Origin = title(m[1])
	}

	dates := datePattern.FindAllString(message, -1)
	if len(dates) >= 2 {
		request.StartDate = dates[0]
		request.EndDate = dates[1]
	} else if len(dates) == 1 {
		request.StartDate = dates[0]
	}

	if m := travelersPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			request.Travelers = n
		}
	}
	if m := budgetPattern.FindStringSubmatch(message); m != nil {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			request.Budget = f
		}
	}
	return request
}

// Interpreter turns the raw message into a structured trip request.
type Interpreter struct{}

func NewInterpreter() *Interpreter { return &Interpreter{} }

func (s *Interpreter) Name() string { return "interpreter" }
func (s *Interpreter) Role() string { return "Request Interpreter" }
func (s *Interpreter) Goal() string {
	return "Extract structured trip details from a user message"
}

func (s *Interpreter) Run(ctx context.Context, task *Task) error {
	task.Request = ParseTripRequest(task.Message)
	if task.Request.Destination != "" {
		task.Findings = append(task.Findings, "Destination: "+task.Request.Destination)
	} else {
		task.Findings = append(task.Findings, "No destination found in message")
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
