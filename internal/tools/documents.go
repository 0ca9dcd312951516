package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UploadDocumentTool runs a simulated compliance check on a shipping
// document. Roughly one in ten uploads fails verification.
type UploadDocumentTool struct {
	decide Decider
}

func NewUploadDocumentTool(decide Decider) *UploadDocumentTool {
	if decide == nil {
		decide = DefaultDecider
	}
	return &UploadDocumentTool{decide: decide}
}

func (t *UploadDocumentTool) Name() string { return "upload_document" }

func (t *UploadDocumentTool) Description() string {
	return "Upload a shipping document and run a compliance verification check"
}

func (t *UploadDocumentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_name": map[string]any{"type": "string", "description": "File name of the document"},
			"document_type": map[string]any{"type": "string", "description": "Document kind (invoice, permit, insurance)"},
			"trip_id":       map[string]any{"type": "string", "description": "Trip the document belongs to"},
		},
		"required": []string{"document_name", "document_type"},
	}
}

func (t *UploadDocumentTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	name := GetString(params, "document_name", "")
	docType := GetString(params, "document_type", "")
	if name == "" || docType == "" {
		return errorResult("document_name and document_type are required"), nil
	}

	passed := t.decide() <= 0.9

	result := map[string]any{
		"success":       true,
		"document_name": name,
		"document_type": docType,
		"trip_id":       GetString(params, "trip_id", ""),
		"uploaded_at":   time.Now().Format(time.RFC3339),
	}
	if passed {
		result["verification_status"] = "passed"
		result["message"] = "Document verified successfully"
	} else {
		result["verification_status"] = "failed"
		result["message"] = fmt.Sprintf("Document %s failed verification, please re-upload", name)
	}

	out, _ := json.Marshal(result)
	return string(out), nil
}
