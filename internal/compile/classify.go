package compile

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pdfMagic is the header every PDF document starts with.
var pdfMagic = []byte("%PDF")

// verdict is the interpretation of one backend response. Exactly one of pdf, jobID
// or err is set.
type verdict struct {
	pdf    []byte
	jobID  string
	err    error
	reason string
}

var (
	embeddedDocumentFields = []string{"pdf", "pdf_base64", "pdfBase64", "document", "data", "result"}
	jobIDFields            = []string{"id", "job_id", "jobId"}
	errorFields            = []string{"error", "message", "log"}
)

// classify decides whether a response carries a PDF, names an asynchronous job, or failed.
func classify(status int, contentType string, body []byte) verdict {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	mediaType = strings.ToLower(mediaType)

	if isHTML(mediaType, body) {
		reason := "HTML page returned"
		if title := htmlTitle(body); title != "" {
			reason = fmt.Sprintf("HTML page returned (%q)", title)
		}
		if status < 200 || status > 299 {
			reason = fmt.Sprintf("status %d: %s", status, reason)
		}
		return verdict{err: ErrHTMLResponse, reason: reason}
	}

	if status < 200 || status > 299 {
		reason := fmt.Sprintf("unexpected status %d", status)
		if msg := jsonErrorMessage(body); msg != "" {
			reason += ": " + msg
		}
		return verdict{err: ErrNotDocument, reason: reason}
	}

	if (mediaType == "application/pdf" || mediaType == "application/octet-stream") && len(body) > 0 {
		return verdict{pdf: body}
	}

	if mediaType == "application/json" || looksLikeJSON(body) {
		if v, ok := classifyJSON(body); ok {
			return v
		}
	}

	if bytes.HasPrefix(body, pdfMagic) {
		return verdict{pdf: body}
	}

	if len(body) == 0 {
		return verdict{err: ErrNotDocument, reason: "empty response body"}
	}
	return verdict{err: ErrNotDocument, reason: fmt.Sprintf("unrecognized %s response", displayType(mediaType))}
}

func classifyJSON(body []byte) (verdict, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return verdict{}, false
	}

	for _, field := range embeddedDocumentFields {
		raw, ok := payload[field].(string)
		if !ok || raw == "" {
			continue
		}
		if pdf, ok := decodeEmbedded(raw); ok {
			return verdict{pdf: pdf}, true
		}
	}

	status, _ := payload["status"].(string)
	status = strings.ToLower(status)
	for _, field := range jobIDFields {
		id := scalarString(payload[field])
		if id != "" && !terminalStatus(status) {
			return verdict{jobID: id}, true
		}
	}

	reason := "JSON response without an embedded document"
	if msg := messageFromMap(payload); msg != "" {
		reason = "service reported: " + msg
	} else if status != "" {
		reason = fmt.Sprintf("job finished with status %q and no document", status)
	}
	return verdict{err: ErrNotDocument, reason: reason}, true
}

// decodeEmbedded accepts raw base64 or a data URI whose payload decodes to a PDF.
func decodeEmbedded(raw string) ([]byte, bool) {
	if i := strings.Index(raw, ";base64,"); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+len(";base64,"):]
	}
	raw = strings.TrimSpace(raw)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		decoded, err := enc.DecodeString(raw)
		if err == nil && bytes.HasPrefix(decoded, pdfMagic) {
			return decoded, true
		}
	}
	return nil, false
}

func terminalStatus(status string) bool {
	switch status {
	case "failed", "failure", "error", "errored", "cancelled", "canceled",
		"done", "completed", "complete", "success", "succeeded", "finished":
		return true
	}
	return false
}

func jsonErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return messageFromMap(payload)
}

func messageFromMap(payload map[string]any) string {
	for _, field := range errorFields {
		if msg := scalarString(payload[field]); msg != "" {
			return truncate(msg, 200)
		}
		if nested, ok := payload[field].(map[string]any); ok {
			if msg := messageFromMap(nested); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

func isHTML(mediaType string, body []byte) bool {
	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return true
	}
	if bytes.HasPrefix(body, pdfMagic) {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(body), "text/html")
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// htmlTitle extracts the page title to make logs of error pages readable.
func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return truncate(strings.Join(strings.Fields(title), " "), 120)
}

func displayType(mediaType string) string {
	if mediaType == "" {
		return "untyped"
	}
	return mediaType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
