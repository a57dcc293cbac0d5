package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash", config.Model)
	assert.InDelta(t, 0.1, config.Temperature, 1e-6)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel("gemini-2.5-pro")

	// Original should be unchanged
	assert.Equal(t, DefaultModel, config.Model)
	assert.Equal(t, "gemini-2.5-pro", custom.Model)
	assert.Equal(t, DefaultModel, config.WithModel("").Model)
}

func TestMIMETypeFor(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"resume.pdf", "application/pdf", true},
		{"RESUME.PDF", "application/pdf", true},
		{"notes.txt", "text/plain", true},
		{"resume.docx", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MIMETypeFor(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
