package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/record"
)

// Document is an uploaded resume file.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Extractor turns an uploaded document into a raw resume record.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*record.Object, error)
}

// ExtractionSchema defines the structure the model is asked to produce.
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
	// Instructions are appended after the field list.
	Instructions []string
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Description string
}

// BuildExtractionPrompt constructs the prompt sent after the inline document.
func BuildExtractionPrompt(schema ExtractionSchema) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	for _, field := range schema.Fields {
		sb.WriteString(field.Name)
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", field.Description))
		}
		sb.WriteString("\n")
	}

	if len(schema.Instructions) > 0 {
		sb.WriteString("\n")
		for _, line := range schema.Instructions {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ResumeRecordSchema lists the record fields in the order the renderers expect.
func ResumeRecordSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResumeRecord",
		Description: "Extract the following information from the provided resume in this exact order " +
			"as JSON, enclosed in a markdown code block labeled json:",
		Fields: []SchemaField{
			{Name: "Name"},
			{Name: "Location"},
			{Name: "Email"},
			{Name: "Phone"},
			{Name: "LinkedIn"},
			{Name: "Portfolio"},
			{Name: "Objective"},
			{Name: "Summary", Description: "5 key points"},
			{Name: "Education", Description: "latest to oldest: Degree, University, Location, DurationOrYear, CGPA or Percentage, RelevantCoursework, HonorsAndQualifications"},
			{Name: "Experience", Description: "for each role: JobRole, CompanyName, Duration, Location, WhatHeDid, HowHeDidIt, ImpactMade"},
			{Name: "Projects", Description: "Title, Tools, Description, Link"},
			{Name: "Skills", Description: "properly divide with key pair"},
			{Name: "Certificates", Description: "Name, IssuingOrganization, Date"},
			{Name: "Languages"},
		},
		Instructions: []string{
			"If no objective is explicitly stated, create a concise and professional one based on the rest " +
				"of the resume content, reflecting career aspirations and value proposition.",
			"Omit any field that does not appear in the resume.",
		},
	}
}

// GeminiExtractor extracts records with a Client, usually a GeminiClient.
type GeminiExtractor struct {
	client Client
	prompt string
}

// NewGeminiExtractor returns an extractor using client.
func NewGeminiExtractor(client Client) *GeminiExtractor {
	return &GeminiExtractor{client: client, prompt: BuildExtractionPrompt(ResumeRecordSchema())}
}

// Extract sends doc to the model, takes the first ```json block of the answer and
// parses it leniently.
func (e *GeminiExtractor) Extract(ctx context.Context, doc Document) (*record.Object, error) {
	if len(doc.Data) == 0 {
		return nil, &ExtractionError{Message: "document is empty"}
	}
	if doc.MIMEType == "" {
		mt, ok := MIMETypeFor(doc.Name)
		if !ok {
			return nil, &ExtractionError{Message: fmt.Sprintf("unsupported document type %q", doc.Name)}
		}
		doc.MIMEType = mt
	}

	raw, err := e.client.Generate(ctx, doc, e.prompt)
	if err != nil {
		return nil, &ExtractionError{Message: "model request failed", Cause: err}
	}

	block, ok := FencedJSON(raw)
	if !ok {
		return nil, &ExtractionError{Message: "no JSON block found in model response", Raw: raw}
	}

	obj, err := record.ParseLenient(block)
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse JSON", Raw: block, Cause: err}
	}
	return obj, nil
}
