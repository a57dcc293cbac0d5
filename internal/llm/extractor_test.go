package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/record"
)

type fakeClient struct {
	response  string
	err       error
	gotDoc    Document
	gotPrompt string
}

func (f *fakeClient) Generate(_ context.Context, doc Document, prompt string) (string, error) {
	f.gotDoc, f.gotPrompt = doc, prompt
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestGeminiExtractor_ParsesFencedBlock(t *testing.T) {
	client := &fakeClient{response: "Sure!\n```json\n{\n  \"Name\": \"Ada Lovelace\",\n  \"Summary\": [\"Analytical\",],\n}\n```\n"}
	ex := NewGeminiExtractor(client)

	obj, err := ex.Extract(context.Background(), Document{Name: "cv.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Summary"}, obj.Keys())
	name, _ := obj.Get("Name")
	assert.Equal(t, "Ada Lovelace", name)

	assert.Equal(t, "application/pdf", client.gotDoc.MIMEType)
	assert.Contains(t, client.gotPrompt, "enclosed in a markdown code block labeled json")
	assert.Contains(t, client.gotPrompt, "Experience (for each role: JobRole, CompanyName")
}

func TestGeminiExtractor_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    Document
		client *fakeClient
		want   string
	}{
		{
			name:   "empty document",
			doc:    Document{Name: "cv.pdf"},
			client: &fakeClient{},
			want:   "document is empty",
		},
		{
			name:   "unsupported type",
			doc:    Document{Name: "cv.docx", Data: []byte("x")},
			client: &fakeClient{},
			want:   "unsupported document type",
		},
		{
			name:   "model failure",
			doc:    Document{Name: "cv.txt", Data: []byte("x")},
			client: &fakeClient{err: errors.New("quota exceeded")},
			want:   "quota exceeded",
		},
		{
			name:   "no block",
			doc:    Document{Name: "cv.txt", Data: []byte("x")},
			client: &fakeClient{response: `{"Name": "unfenced"}`},
			want:   "no JSON block",
		},
		{
			name:   "bad json",
			doc:    Document{Name: "cv.txt", Data: []byte("x")},
			client: &fakeClient{response: "```json\n{\"Name\": }\n```"},
			want:   "failed to parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeminiExtractor(tt.client).Extract(context.Background(), tt.doc)
			var exErr *ExtractionError
			require.ErrorAs(t, err, &exErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGeminiExtractor_NonObjectBlock(t *testing.T) {
	client := &fakeClient{response: "```json\n[1, 2]\n```"}
	_, err := NewGeminiExtractor(client).Extract(context.Background(), Document{Name: "cv.txt", Data: []byte("x")})

	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	var extractErr *record.ExtractError
	assert.ErrorAs(t, err, &extractErr)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(ExtractionSchema{
		Description:  "Extract:",
		Fields:       []SchemaField{{Name: "Name"}, {Name: "Skills", Description: "grouped"}},
		Instructions: []string{"Be brief."},
	})
	assert.Equal(t, "Extract:\n\nName\nSkills (grouped)\n\nBe brief.\n", prompt)
}
