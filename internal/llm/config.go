// Package llm extracts resume records from uploaded documents with a generative model.
package llm

import (
	"path/filepath"
	"strings"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the model settings for extraction.
type Config struct {
	Model       string
	Temperature float32
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{Model: DefaultModel, Temperature: 0.1}
}

// WithModel returns a copy of c using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model != "" {
		out.Model = model
	}
	return &out
}

var mimeTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
}

// MIMETypeFor maps an uploaded file name to the MIME type sent to the model. The second
// result is false for unsupported extensions.
func MIMETypeFor(name string) (string, bool) {
	mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}
