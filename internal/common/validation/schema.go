// Package validation checks raw listing items against JSON schemas at the fetch boundary.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError describes one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationResult is the outcome of validating one document.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Error joins the violations into one message.
func (r *ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// ItemValidator validates raw items against a compiled schema.
type ItemValidator struct {
	schema *gojsonschema.Schema
}

// NewItemValidator compiles a JSON schema document.
func NewItemValidator(schemaJSON string) (*ItemValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile item schema: %w", err)
	}
	return &ItemValidator{schema: schema}, nil
}

// MustItemValidator is NewItemValidator for package-level schemas.
func MustItemValidator(schemaJSON string) *ItemValidator {
	v, err := NewItemValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks one raw JSON item.
func (v *ItemValidator) Validate(raw json.RawMessage) *ValidationResult {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"}},
		}
	}
	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out
}

// OfferSchema is the minimum shape of a job offer.
const OfferSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id":           {"type": "integer", "minimum": 1},
    "titre":        {"type": ["string", "null"]},
    "description":  {"type": ["string", "null"]},
    "company_name": {"type": ["string", "null"]},
    "sector_id":    {"type": ["integer", "string", "null"]},
    "job_id":       {"type": ["integer", "string", "null"]},
    "entreprise_id":{"type": ["integer", "string", "null"]},
    "location":     {"type": ["string", "null"]},
    "contractType": {"type": ["string", "null"]}
  }
}`

// CandidateSchema is the minimum shape of a published candidate.
const CandidateSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id":        {"type": "integer", "minimum": 1},
    "cv_id":     {"type": ["integer", "null"]},
    "city":      {"type": ["string", "null"]},
    "full_name": {"type": ["string", "null"]},
    "job":       {"type": ["object", "null"]}
  }
}`
