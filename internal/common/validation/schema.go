package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMalformedJSON  = errors.New("MALFORMED_JSON")
	ErrSchemaMismatch = errors.New("SCHEMA_MISMATCH")
)

// ValidationError describes one failed schema constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating a document.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Error joins the failures into a single line.
func (r *Result) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks an already decoded document against schema.
func Validate(schema map[string]interface{}, doc interface{}) (*Result, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// ValidateBody decodes a raw request body and validates it against schema.
// An empty body is treated as an empty object. On success the decoded
// object is returned.
func ValidateBody(schema map[string]interface{}, body []byte) (map[string]interface{}, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	result, err := Validate(schema, doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, result.Error())
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrSchemaMismatch)
	}
	return obj, nil
}
