package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var (
	emailFormat = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

// ValidateDataTool checks a data record against declared rules:
// required fields, field formats, and business rules.
type ValidateDataTool struct{}

func NewValidateDataTool() *ValidateDataTool { return &ValidateDataTool{} }

func (t *ValidateDataTool) Name() string { return "validate_data" }

func (t *ValidateDataTool) Description() string {
	return "Validate data formats, types, and business rules"
}

func (t *ValidateDataTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data":             map[string]any{"type": "object", "description": "Record to validate"},
			"validation_rules": map[string]any{"type": "object", "description": "Rules to apply"},
		},
		"required": []string{"data", "validation_rules"},
	}
}

func (t *ValidateDataTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	data, _ := params["data"].(map[string]any)
	rules, _ := params["validation_rules"].(map[string]any)
	if data == nil || rules == nil {
		return errorResult("data and validation_rules are required"), nil
	}

	var errs, warnings []string

	if required, ok := rules["required_fields"].([]any); ok {
		for _, f := range required {
			field, _ := f.(string)
			if v, present := data[field]; !present || v == nil || v == "" {
				errs = append(errs, fmt.Sprintf("Required field '%s' is missing or empty", field))
			}
		}
	}

	if fieldTypes, ok := rules["field_types"].(map[string]any); ok {
		for field, wanted := range fieldTypes {
			v, present := data[field]
			if !present {
				continue
			}
			switch wanted {
			case "email":
				if s, _ := v.(string); !emailFormat.MatchString(s) {
					errs = append(errs, fmt.Sprintf("Invalid email format for field '%s'", field))
				}
			case "phone":
				if !validPhone(fmt.Sprint(v)) {
					errs = append(errs, fmt.Sprintf("Invalid phone format for field '%s'", field))
				}
			case "number":
				if !numeric(v) {
					errs = append(errs, fmt.Sprintf("Field '%s' must be a number", field))
				}
			}
		}
	}

	if businessRules, ok := rules["business_rules"].([]any); ok {
		for _, r := range businessRules {
			rule, _ := r.(map[string]any)
			if rule == nil {
				continue
			}
			field := GetString(rule, "field", "")
			v, present := data[field]
			if !present {
				continue
			}
			switch GetString(rule, "type", "") {
			case "min_value":
				value, vok := asFloat(v)
				min, mok := asFloat(rule["value"])
				if vok && mok && value < min {
					warnings = append(warnings, fmt.Sprintf("Field '%s' value is below recommended minimum of %v", field, min))
				}
			case "max_length":
				maxLen := GetInt(rule, "value", 255)
				if len(fmt.Sprint(v)) > maxLen {
					errs = append(errs, fmt.Sprintf("Field '%s' exceeds maximum length of %d", field, maxLen))
				}
			}
		}
	}

	out, _ := json.Marshal(map[string]any{
		"valid":    len(errs) == 0,
		"errors":   errs,
		"warnings": warnings,
	})
	return string(out), nil
}

// validPhone accepts 10 or 11 digit numbers, ignoring separators.
func validPhone(s string) bool {
	digits := nonDigits.ReplaceAllString(s, "")
	return len(digits) == 10 || len(digits) == 11
}

func numeric(v any) bool {
	_, ok := asFloat(v)
	return ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
