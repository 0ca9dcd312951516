package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

// FormatResult renders a workflow result as transport text.
func FormatResult(workflowID string, result *workflow.Result) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✅ ")
	} else {
		b.WriteString("⚠️ ")
	}
	b.WriteString(result.Summary)
	if result.Details != "" {
		b.WriteString("\n\n")
		b.WriteString(result.Details)
	}
	if len(result.Actions) > 0 {
		b.WriteString("\n\nActions: ")
		b.WriteString(strings.Join(result.Actions, ", "))
	}
	if result.Err != "" {
		b.WriteString("\nError: ")
		b.WriteString(result.Err)
	}
	b.WriteString(fmt.Sprintf("\nWorkflow: %s", workflowID))
	return b.String()
}

// FormatHistory renders recent workflow summaries.
func FormatHistory(summaries []workflow.Summary) string {
	if len(summaries) == 0 {
		return "No workflows yet. Send a booking request to get started."
	}
	var b strings.Builder
	b.WriteString("Your recent workflows:\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("• %s [%s] %s — %s\n",
			s.StartTime.Format("2006-01-02 15:04"), s.Status, s.WorkflowID, s.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStatus renders component health and the active run count.
func FormatStatus(health map[string]string, active int) string {
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Component health:\n")
	for _, name := range names {
		b.WriteString(fmt.Sprintf("• %s: %s\n", name, health[name]))
	}
	b.WriteString(fmt.Sprintf("Active workflows: %d", active))
	return b.String()
}
