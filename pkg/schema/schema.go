// Package schema validates decoded response bodies against a declarative
// shape description: required fields, primitive types, and string formats.
package schema

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schema describes the expected shape of a value.
type Schema struct {
	// Type is one of "string", "number", "integer", "boolean", "object", "array".
	Type string

	// Properties describes the fields of an object, keyed by field name.
	Properties map[string]*Schema

	// Required lists object fields that must be present.
	Required []string

	// AdditionalProperties, when explicitly false, rejects fields not
	// listed in Properties. Nil or true permits them.
	AdditionalProperties *bool

	// Format constrains a string value: "date-time", "date", "email", "uuid".
	Format string

	// Items describes every element of an array.
	Items *Schema
}

// ValidationError carries every constraint violated during a validation pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Violations, "; "))
}

// Bool returns a pointer to b, for use with AdditionalProperties.
func Bool(b bool) *bool {
	return &b
}

// Validate checks data against s. It returns nil when data conforms and a
// *ValidationError enumerating every violation otherwise.
func Validate(data any, s *Schema) error {
	if s == nil {
		return fmt.Errorf("schema must not be nil")
	}

	var violations []string
	walk(data, s, "$", &violations)

	if len(violations) > 0 {
		sort.Strings(violations)
		return &ValidationError{Violations: violations}
	}
	return nil
}

func walk(data any, s *Schema, path string, violations *[]string) {
	switch s.Type {
	case "object":
		obj, ok := data.(map[string]any)
		if !ok {
			*violations = append(*violations, fmt.Sprintf("%s: expected object, got %s", path, typeName(data)))
			return
		}
		for _, field := range s.Required {
			if _, present := obj[field]; !present {
				*violations = append(*violations, fmt.Sprintf("%s: missing required field %q", path, field))
			}
		}
		for name, value := range obj {
			prop, known := s.Properties[name]
			if !known {
				if s.AdditionalProperties != nil && !*s.AdditionalProperties {
					*violations = append(*violations, fmt.Sprintf("%s: unexpected field %q", path, name))
				}
				continue
			}
			walk(value, prop, path+"."+name, violations)
		}

	case "array":
		arr, ok := data.([]any)
		if !ok {
			*violations = append(*violations, fmt.Sprintf("%s: expected array, got %s", path, typeName(data)))
			return
		}
		if s.Items != nil {
			for i, elem := range arr {
				walk(elem, s.Items, fmt.Sprintf("%s[%d]", path, i), violations)
			}
		}

	case "string":
		str, ok := data.(string)
		if !ok {
			*violations = append(*violations, fmt.Sprintf("%s: expected string, got %s", path, typeName(data)))
			return
		}
		if s.Format != "" {
			if err := checkFormat(str, s.Format); err != nil {
				*violations = append(*violations, fmt.Sprintf("%s: %v", path, err))
			}
		}

	case "number":
		if !isNumber(data) {
			*violations = append(*violations, fmt.Sprintf("%s: expected number, got %s", path, typeName(data)))
		}

	case "integer":
		if !isInteger(data) {
			*violations = append(*violations, fmt.Sprintf("%s: expected integer, got %s", path, typeName(data)))
		}

	case "boolean":
		if _, ok := data.(bool); !ok {
			*violations = append(*violations, fmt.Sprintf("%s: expected boolean, got %s", path, typeName(data)))
		}

	default:
		*violations = append(*violations, fmt.Sprintf("%s: unknown schema type %q", path, s.Type))
	}
}

func checkFormat(str, format string) error {
	switch format {
	case "date-time":
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			return fmt.Errorf("value %q is not a valid date-time", str)
		}
	case "date":
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("value %q is not a valid date", str)
		}
	case "email":
		if _, err := mail.ParseAddress(str); err != nil {
			return fmt.Errorf("value %q is not a valid email", str)
		}
	case "uuid":
		if _, err := uuid.Parse(str); err != nil {
			return fmt.Errorf("value %q is not a valid uuid", str)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// isNumber reports whether v is any numeric value a JSON decoder may produce.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

// isInteger reports whether v is numeric with no fractional part. JSON
// decoding yields float64 for all numbers, so whole floats count.
func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return n == float32(int32(n))
	}
	return false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
