package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"},
		"address": {
			"type": "object",
			"properties": {"city": {"type": "string"}}
		}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateRecordAgainst(t *testing.T) {
	schemaPath := writeFile(t, t.TempDir(), "strict.json", testSchema)

	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "valid", doc: `{"name": "Jane", "age": 30}`},
		{name: "missing required", doc: `{"age": 30}`, wantField: "(root)"},
		{name: "nested type", doc: `{"name": "Jane", "address": {"city": 7}}`, wantField: "address.city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecordAgainst(schemaPath, []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestValidateRecordAgainst_SchemaProblems(t *testing.T) {
	dir := t.TempDir()

	err := ValidateRecordAgainst(filepath.Join(dir, "missing.json"), []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	broken := writeFile(t, dir, "broken.json", `{"type": `)
	err = ValidateRecordAgainst(broken, []byte(`{}`))
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "age", Message: "Invalid type"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "1. name: name is required")
	assert.Contains(t, msg, "2. age: Invalid type")
}

func TestValidateRecord_AcceptsLegacyKeys(t *testing.T) {
	data := []byte(`{
		"Name": "Jane Roe",
		"Phone": 5551234,
		"Summary": "One line summary",
		"Experience": [{"Job Role": "Engineer", "what did user do": "Built things"}],
		"Skills": {"Languages": ["Go"], "Cloud": "AWS"}
	}`)

	assert.NoError(t, ValidateRecord(data))
}

func TestValidateRecord_EmptyObject(t *testing.T) {
	assert.NoError(t, ValidateRecord([]byte(`{}`)))
}

func TestValidateRecord_RejectsNonObject(t *testing.T) {
	err := ValidateRecord([]byte(`["not", "a", "record"]`))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateRecord_RejectsWrongEntryType(t *testing.T) {
	err := ValidateRecord([]byte(`{"Experience": "five years at Acme"}`))
	require.Error(t, err)

	_, ok := err.(*ValidationError)
	assert.True(t, ok)
}
