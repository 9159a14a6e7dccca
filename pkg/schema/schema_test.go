package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personSchema = &Schema{
	Type:     "object",
	Required: []string{"name", "age"},
	Properties: map[string]*Schema{
		"name": {Type: "string"},
		"age":  {Type: "number"},
	},
}

func TestRequiredFieldMissing(t *testing.T) {
	err := Validate(map[string]any{"name": "x"}, personSchema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Contains(t, verr.Violations[0], `"age"`)
}

func TestValidObjectPasses(t *testing.T) {
	err := Validate(map[string]any{"name": "x", "age": float64(5)}, personSchema)
	assert.NoError(t, err)
}

func TestExtraFieldsPermittedByDefault(t *testing.T) {
	err := Validate(map[string]any{"name": "x", "age": float64(5), "nickname": "ex"}, personSchema)
	assert.NoError(t, err)
}

func TestAdditionalPropertiesForbidden(t *testing.T) {
	s := &Schema{
		Type:                 "object",
		Required:             []string{"name"},
		Properties:           map[string]*Schema{"name": {Type: "string"}},
		AdditionalProperties: Bool(false),
	}
	err := Validate(map[string]any{"name": "x", "rogue": 1}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rogue"`)
}

func TestTypeMismatches(t *testing.T) {
	err := Validate(map[string]any{"name": 42, "age": "old"}, personSchema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)
}

func TestEveryViolationReported(t *testing.T) {
	s := &Schema{
		Type:     "object",
		Required: []string{"a", "b", "c"},
		Properties: map[string]*Schema{
			"a": {Type: "string"},
			"b": {Type: "number"},
			"c": {Type: "boolean"},
		},
	}
	err := Validate(map[string]any{}, s)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 3)
}

func TestFormats(t *testing.T) {
	cases := []struct {
		format string
		good   string
		bad    string
	}{
		{"date-time", "2026-08-29T10:30:00Z", "29/08/2026"},
		{"date", "2026-08-29", "2026-13-40"},
		{"email", "a@example.test", "not-an-email"},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "zzz"},
	}

	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			s := &Schema{Type: "string", Format: tc.format}
			assert.NoError(t, Validate(tc.good, s))
			assert.Error(t, Validate(tc.bad, s))
		})
	}
}

func TestIntegerAcceptsWholeFloats(t *testing.T) {
	s := &Schema{Type: "integer"}
	assert.NoError(t, Validate(float64(3), s))
	assert.Error(t, Validate(3.5, s))
}

func TestNestedObjectsAndArrays(t *testing.T) {
	s := &Schema{
		Type:     "object",
		Required: []string{"items"},
		Properties: map[string]*Schema{
			"items": {
				Type: "array",
				Items: &Schema{
					Type:     "object",
					Required: []string{"id"},
					Properties: map[string]*Schema{
						"id": {Type: "string"},
					},
				},
			},
		},
	}

	ok := map[string]any{"items": []any{map[string]any{"id": "a"}}}
	assert.NoError(t, Validate(ok, s))

	bad := map[string]any{"items": []any{map[string]any{"id": "a"}, map[string]any{}}}
	err := Validate(bad, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items[1]")
}

func TestWrongTopLevelShape(t *testing.T) {
	err := Validate([]any{"x"}, personSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected object")
}

func TestNilSchemaRejected(t *testing.T) {
	err := Validate(map[string]any{}, nil)
	assert.Error(t, err)
}
