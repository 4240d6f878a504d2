package scam_detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrSchemaValidation matches every error produced while validating model output.
var ErrSchemaValidation = errors.New("LLM output failed schema validation")

// SchemaError names the fields of a payload that are missing or mistyped.
type SchemaError struct {
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSchemaValidation, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaValidation }

// fieldError records one problem with one field.
type fieldError struct {
	field  string
	reason string
}

func (e fieldError) Error() string { return e.field + ": " + e.reason }

// ParseOutput decodes raw model text into a map and validates it.
func ParseOutput(raw string) (*ScamDetectionOutput, error) {
	clean := extractJSONObject(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v (text: %s)", ErrSchemaValidation, err, clean)
	}

	return ValidateOutput(payload)
}

// ValidateOutput converts a loosely typed response into a ScamDetectionOutput.
// Every offending field is reported, not just the first one.
func ValidateOutput(payload map[string]any) (*ScamDetectionOutput, error) {
	var out ScamDetectionOutput
	var errs error
	var fields []string

	fail := func(field, reason string) {
		fields = append(fields, field)
		errs = multierr.Append(errs, fieldError{field: field, reason: reason})
	}

	if label, reason := stringField(payload, "label"); reason != "" {
		fail("label", reason)
	} else if !isValidLabel(Label(label)) {
		fail("label", fmt.Sprintf("must be one of %s, got %q", labelList(), label))
	} else {
		out.Label = Label(label)
	}

	if reasoning, reason := stringField(payload, "reasoning"); reason != "" {
		fail("reasoning", reason)
	} else {
		out.Reasoning = reasoning
	}

	if intent, reason := stringField(payload, "intent"); reason != "" {
		fail("intent", reason)
	} else {
		out.Intent = intent
	}

	if factors, reason := stringListField(payload, "risk_factors"); reason != "" {
		fail("risk_factors", reason)
	} else {
		out.RiskFactors = factors
	}

	if errs != nil {
		return nil, &SchemaError{Fields: fields, Err: errs}
	}

	return &out, nil
}

func stringField(payload map[string]any, key string) (string, string) {
	v, ok := payload[key]
	if !ok {
		return "", "field required"
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Sprintf("must be a string, got %s", typeName(v))
	}
	return s, ""
}

func stringListField(payload map[string]any, key string) ([]string, string) {
	v, ok := payload[key]
	if !ok {
		return nil, "field required"
	}

	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), ""
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Sprintf("item %d must be a string, got %s", i, typeName(item))
			}
			out = append(out, s)
		}
		return out, ""
	default:
		return nil, fmt.Sprintf("must be a list of strings, got %s", typeName(v))
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func isValidLabel(label Label) bool {
	for _, l := range validLabels {
		if l == label {
			return true
		}
	}
	return false
}

func labelList() string {
	names := make([]string, len(validLabels))
	for i, l := range validLabels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}
