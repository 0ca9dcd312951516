// Package mcpserver exposes the booking tools and workflow queries over
// the Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/FreightFlow/FreightFlow/internal/config"
	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/pipeline"
	"github.com/FreightFlow/FreightFlow/internal/tools"
	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

const serverName = "freightflow-booking"

// MCPServer bridges MCP tool calls into the registry and tracker.
type MCPServer struct {
	server   *server.MCPServer
	cfg      *config.Config
	registry *tools.Registry
	guard    *guard.Guard
	tracker  *workflow.Tracker
	probes   map[string]workflow.DescribeFunc
}

// NewMCPServer creates and configures the MCP server with all tools and
// resources registered.
func NewMCPServer(version string, cfg *config.Config, registry *tools.Registry, g *guard.Guard, tracker *workflow.Tracker) *MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ms := &MCPServer{
		server:   mcpServer,
		cfg:      cfg,
		registry: registry,
		guard:    g,
		tracker:  tracker,
		probes:   pipeline.Default(registry, g).HealthProbes(),
	}
	ms.registerTools()
	ms.registerResources()
	return ms
}

// Serve runs the server over stdio until the client disconnects.
func (ms *MCPServer) Serve() error {
	return server.ServeStdio(ms.server)
}

func (ms *MCPServer) registerTools() {
	ms.server.AddTool(mcp.NewTool("search_trucks",
		mcp.WithDescription("Search for available trucks between two locations"),
		mcp.WithString("pickup_location", mcp.Required(), mcp.Description("City or address to pick up from")),
		mcp.WithString("delivery_location", mcp.Required(), mcp.Description("City or address to deliver to")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Pickup date (YYYY-MM-DD)")),
	), ms.registryHandler("search_trucks"))

	ms.server.AddTool(mcp.NewTool("book_trip",
		mcp.WithDescription("Create a trip booking"),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Trip destination")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date (YYYY-MM-DD)")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("End date (YYYY-MM-DD)")),
		mcp.WithNumber("travelers", mcp.Required(), mcp.Description("Number of travelers")),
		mcp.WithNumber("budget", mcp.Description("Budget in dollars")),
		mcp.WithString("user_id", mcp.Description("Requesting user")),
	), ms.registryHandler("book_trip"))

	ms.server.AddTool(mcp.NewTool("upload_document",
		mcp.WithDescription("Upload a shipping document and verify it"),
		mcp.WithString("document_name", mcp.Required(), mcp.Description("File name of the document")),
		mcp.WithString("document_type", mcp.Required(), mcp.Description("Document kind (invoice, permit, insurance)")),
		mcp.WithString("trip_id", mcp.Description("Trip the document belongs to")),
	), ms.registryHandler("upload_document"))

	ms.server.AddTool(mcp.NewTool("send_notification",
		mcp.WithDescription("Send a notification via email, slack, sms, or webhook"),
		mcp.WithString("channel", mcp.Required(), mcp.Description("Notification channel")),
		mcp.WithString("recipient", mcp.Required(), mcp.Description("Recipient identifier")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Notification body")),
		mcp.WithString("subject", mcp.Description("Subject line for email")),
		mcp.WithString("priority", mcp.Description("Priority (low, normal, high, urgent)")),
	), ms.registryHandler("send_notification"))

	ms.server.AddTool(mcp.NewTool("validate_data",
		mcp.WithDescription("Validate data formats, types, and business rules"),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Record to validate")),
		mcp.WithObject("validation_rules", mcp.Required(), mcp.Description("Rules to apply")),
	), ms.registryHandler("validate_data"))

	ms.server.AddTool(mcp.NewTool("parse_trip_request",
		mcp.WithDescription("Parse a natural language trip request into structured fields"),
		mcp.WithString("user_message", mcp.Required(), mcp.Description("Free-text trip request")),
	), ms.handleParseTripRequest)

	ms.server.AddTool(mcp.NewTool("workflow_status",
		mcp.WithDescription("Look up the status and result of a workflow run"),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow identifier")),
	), ms.handleWorkflowStatus)

	ms.server.AddTool(mcp.NewTool("workflow_history",
		mcp.WithDescription("List a user's recent workflow runs"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User identifier")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return")),
	), ms.handleWorkflowHistory)
}

func (ms *MCPServer) registerResources() {
	ms.server.AddResource(mcp.NewResource("workflow://config",
		"Workflow Configuration",
		mcp.WithResourceDescription("Current workflow system configuration"),
		mcp.WithMIMEType("application/json"),
	), ms.readConfigResource)

	ms.server.AddResource(mcp.NewResource("workflow://status",
		"System Status",
		mcp.WithResourceDescription("Current system status and health"),
		mcp.WithMIMEType("application/json"),
	), ms.readStatusResource)

	ms.server.AddResource(mcp.NewResource("workflow://templates",
		"Trip Templates",
		mcp.WithResourceDescription("Reusable trip request templates"),
		mcp.WithMIMEType("application/json"),
	), ms.readTemplatesResource)
}

// readConfigResource exposes the non-secret configuration surface.
func (ms *MCPServer) readConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(request.Params.URI, map[string]any{
		"booking_config": map[string]any{
			"trip_api_configured": ms.cfg.Booking.TripAPIURL != "",
		},
		"security_config": map[string]any{
			"max_message_length":   ms.cfg.Guard.MaxMessageLength,
			"max_sanitized_length": ms.cfg.Guard.MaxSanitizedLength,
			"max_nesting_depth":    ms.cfg.Guard.MaxNestingDepth,
			"allowed_domains":      ms.cfg.Guard.AllowedDomains,
		},
		"workflow_config": map[string]any{
			"history_limit": ms.cfg.Workflow.HistoryLimit,
		},
	})
}

// readStatusResource reports component health and the live run count.
func (ms *MCPServer) readStatusResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	components := workflow.Health(ms.probes)
	overall := "healthy"
	for _, status := range components {
		if status != "healthy" {
			overall = status
			break
		}
	}
	return jsonResource(request.Params.URI, map[string]any{
		"system_health":    overall,
		"components":       components,
		"active_workflows": ms.tracker.ActiveCount(),
		"tools_available":  len(ms.registry.List()),
		"last_check":       time.Now().UTC().Format(time.RFC3339),
	})
}

// readTemplatesResource serves the fixed trip request templates.
func (ms *MCPServer) readTemplatesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(request.Params.URI, map[string]any{
		"trip_templates": []map[string]string{
			{
				"name":     "Business Trip",
				"template": "Create a business trip to {destination} from {start_date} to {end_date} for {travelers} people with budget {budget}",
			},
			{
				"name":     "Vacation",
				"template": "Plan a vacation to {destination} from {start_date} to {end_date} for {travelers} travelers, budget {budget}, preferences: {preferences}",
			},
			{
				"name":     "Weekend Getaway",
				"template": "Book a weekend trip to {destination} departing {start_date} returning {end_date} for {travelers} people",
			},
		},
	})
}

func jsonResource(uri string, payload map[string]any) ([]mcp.ResourceContents, error) {
	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}, nil
}

// registryHandler adapts a registry tool into an MCP handler. Arguments
// are guarded before dispatch; rejections come back as tool errors, not
// protocol errors.
func (ms *MCPServer) registryHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if !ms.guard.ValidateParams(args) {
			return mcp.NewToolResultError("arguments rejected by security validation"), nil
		}
		result, err := ms.registry.Execute(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

func (ms *MCPServer) handleParseTripRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("user_message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ms.guard.Validate(message) {
		return mcp.NewToolResultError("message rejected by security validation"), nil
	}

	parsed := pipeline.ParseTripRequest(ms.guard.Sanitize(message))
	nextAction := "request_more_info"
	if parsed.HasData() {
		nextAction = "create_trip"
	}
	out, _ := json.Marshal(map[string]any{
		"success":          true,
		"parsed_request":   parsed,
		"original_message": message,
		"next_action":      nextAction,
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (ms *MCPServer) handleWorkflowStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID, err := request.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	run, err := ms.tracker.Get(workflowID)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("workflow %s not found", workflowID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(run)
	return mcp.NewToolResultText(string(out)), nil
}

func (ms *MCPServer) handleWorkflowHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt("limit", workflow.DefaultHistoryLimit)
	out, _ := json.Marshal(map[string]any{
		"user_id":   userID,
		"workflows": ms.tracker.HistoryFor(userID, limit),
	})
	return mcp.NewToolResultText(string(out)), nil
}
