package tools

import (
	"context"
	"encoding/json"
)

// truck is one entry in the simulated fleet table.
type truck struct {
	TruckID        string  `json:"truck_id"`
	OwnerName      string  `json:"owner_name"`
	Contact        string  `json:"contact"`
	TruckType      string  `json:"truck_type"`
	Capacity       string  `json:"capacity"`
	PricePerKm     float64 `json:"price_per_km"`
	EstimatedTotal float64 `json:"estimated_total"`
	Rating         float64 `json:"rating"`
	Location       string  `json:"location"`
	Availability   string  `json:"availability"`
}

var fleet = []truck{
	{
		TruckID:        "TRK001",
		OwnerName:      "ABC Transport",
		Contact:        "+91-9876543210",
		TruckType:      "Medium Truck",
		Capacity:       "5 tons",
		PricePerKm:     25,
		EstimatedTotal: 2500,
		Rating:         4.5,
		Availability:   "Available",
	},
	{
		TruckID:        "TRK002",
		OwnerName:      "XYZ Logistics",
		Contact:        "+91-9876543211",
		TruckType:      "Large Truck",
		Capacity:       "10 tons",
		PricePerKm:     35,
		EstimatedTotal: 3500,
		Rating:         4.2,
		Availability:   "Available",
	},
}

// SearchTrucksTool finds trucks available for a pickup/delivery pair.
// Results come from a fixed fleet table until a carrier API is wired in.
type SearchTrucksTool struct{}

func NewSearchTrucksTool() *SearchTrucksTool { return &SearchTrucksTool{} }

func (t *SearchTrucksTool) Name() string { return "search_trucks" }

func (t *SearchTrucksTool) Description() string {
	return "Search for available trucks between a pickup and delivery location on a given date"
}

func (t *SearchTrucksTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pickup_location":   map[string]any{"type": "string", "description": "City or address to pick up from"},
			"delivery_location": map[string]any{"type": "string", "description": "City or address to deliver to"},
			"date":              map[string]any{"type": "string", "description": "Pickup date (YYYY-MM-DD)"},
		},
		"required": []string{"pickup_location", "delivery_location", "date"},
	}
}

func (t *SearchTrucksTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	pickup := GetString(params, "pickup_location", "")
	delivery := GetString(params, "delivery_location", "")
	date := GetString(params, "date", "")

	if pickup == "" || delivery == "" {
		return errorResult("pickup_location and delivery_location are required"), nil
	}

	trucks := make([]truck, len(fleet))
	copy(trucks, fleet)
	for i := range trucks {
		trucks[i].Location = pickup
	}

	out, _ := json.Marshal(map[string]any{
		"success":           true,
		"pickup_location":   pickup,
		"delivery_location": delivery,
		"date":              date,
		"available_trucks":  trucks,
		"total_found":       len(trucks),
	})
	return string(out), nil
}

func errorResult(msg string) string {
	out, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   msg,
	})
	return string(out)
}
