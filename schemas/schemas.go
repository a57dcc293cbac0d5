// Package schemas embeds the JSON Schemas shipped with the resume builder.
package schemas

import _ "embed"

// ResumeRecord is the schema for the structured resume produced by extraction.
//
//go:embed resume_record.schema.json
var ResumeRecord []byte
