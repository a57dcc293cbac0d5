package server

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// TemplateResponse is one layout in a generation response.
type TemplateResponse struct {
	Layout      string `json:"layout"`
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	Latex       string `json:"latex,omitempty"`
	PDFBase64   string `json:"pdfBase64,omitempty"`
	Status      string `json:"status"`
	Placeholder bool   `json:"placeholder"`
	Service     string `json:"service,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
	DurationMs  int64  `json:"durationMs"`
	Error       string `json:"error,omitempty"`
}

// Substitution reports a default that replaced a missing field.
type Substitution struct {
	Path    string `json:"path"`
	Default string `json:"default"`
}

// GenerateResponse is returned by the render and upload endpoints. Templates are keyed
// by layout number and by layout name; both keys share one entry.
type GenerateResponse struct {
	RunID     string                       `json:"runId"`
	Data      *record.Object               `json:"data"`
	Record    *types.ResumeRecord          `json:"record,omitempty"`
	Defaults  []Substitution               `json:"defaults,omitempty"`
	Templates map[string]*TemplateResponse `json:"templates"`
}

// RunResponse is a ledger run with its layout outcomes.
type RunResponse struct {
	Run      *db.Run            `json:"run"`
	Outcomes []db.LayoutOutcome `json:"outcomes"`
}

type listRunsQuery struct {
	Limit int `validate:"gte=0,lte=100"`
}

// handleRender generates layouts from a JSON record body.
// Query: layouts=1,modern (default all) and compile=false for markup only.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		s.fail(w, r, badRequest("request body is empty"))
		return
	}
	obj, err := record.Parse(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.generateRequest(r, "render")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	compileDocs := true
	if v := r.URL.Query().Get("compile"); v != "" {
		if compileDocs, err = strconv.ParseBool(v); err != nil {
			s.fail(w, r, badRequest("invalid compile flag %q", v))
			return
		}
	}

	var res *pipeline.Result
	if compileDocs {
		res, err = s.generator.Generate(r.Context(), obj, req)
	} else {
		res, err = s.generator.Render(r.Context(), obj, req)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeResult(w, obj, res)
}

// handleUpload extracts a record from an uploaded .pdf or .txt resume and generates layouts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "document extraction is not configured")
		return
	}

	limit := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, badRequest("invalid multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("resume")
	if err != nil {
		s.fail(w, r, badRequest("no file uploaded in field \"resume\""))
		return
	}
	defer file.Close()

	mimeType, ok := llm.MIMETypeFor(header.Filename)
	if !ok {
		s.fail(w, r, &RequestError{
			Status:  http.StatusUnsupportedMediaType,
			Message: "invalid file type: only PDF and TXT files are allowed",
		})
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(content) == 0 {
		s.fail(w, r, badRequest("uploaded file is empty"))
		return
	}

	req, err := s.generateRequest(r, "upload")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	obj, err := s.extractor.Extract(r.Context(), llm.Document{Name: header.Filename, MIMEType: mimeType, Data: content})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.generator.Generate(r.Context(), obj, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeResult(w, obj, res)
}

// generateRequest reads the layouts query, given as a comma list or repeated values.
func (s *Server) generateRequest(r *http.Request, source string) (pipeline.Request, error) {
	var ids []string
	for _, v := range r.URL.Query()["layouts"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		ids = s.cfg.Layouts
	}
	layouts, err := rendering.ParseLayouts(ids)
	if err != nil {
		return pipeline.Request{}, err
	}
	if subject, err := middleware.GetSubject(r); err == nil {
		source += ":" + subject
	}
	return pipeline.Request{Layouts: layouts, Source: source}, nil
}

// writeResult answers 200 unless every layout failed, in which case it answers 422
// with the same body so callers still see per-layout errors.
func (s *Server) writeResult(w http.ResponseWriter, obj *record.Object, res *pipeline.Result) {
	resp := &GenerateResponse{
		RunID:     res.RunID.String(),
		Data:      obj,
		Record:    res.Record,
		Templates: make(map[string]*TemplateResponse, 2*len(res.Layouts)),
	}
	for _, sub := range res.Substitutions {
		resp.Defaults = append(resp.Defaults, Substitution{Path: sub.Path, Default: sub.Default})
	}
	for _, lr := range res.Layouts {
		t := templateResponse(lr)
		resp.Templates[t.Layout] = t
		if t.Number != "" {
			resp.Templates[t.Number] = t
		}
	}

	status := http.StatusOK
	if len(res.Layouts) > 0 && len(res.Failed()) == len(res.Layouts) {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, resp)
}

func templateResponse(lr *pipeline.LayoutResult) *TemplateResponse {
	t := &TemplateResponse{
		Layout:      string(lr.Layout),
		Name:        lr.Layout.DisplayName(),
		Number:      lr.Layout.Number(),
		Latex:       lr.Markup,
		Status:      lr.Status(),
		Placeholder: lr.Outcome == compile.OutcomePlaceholder,
		Service:     lr.Service,
		Attempts:    len(lr.Attempts),
		DurationMs:  lr.Duration.Milliseconds(),
	}
	if len(lr.PDF) > 0 {
		t.PDFBase64 = base64.StdEncoding.EncodeToString(lr.PDF)
	}
	if lr.Err != nil {
		t.Error = lr.Err.Error()
	}
	return t
}

// handleListRuns lists recent ledger runs. Query: limit (1-100, default 20).
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.errorResponse(w, http.StatusNotFound, "run ledger is not enabled")
		return
	}

	var q listRunsQuery
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, badRequest("invalid limit %q", v))
			return
		}
		q.Limit = n
	}
	if err := s.validate.Struct(q); err != nil {
		s.fail(w, r, badRequest("limit must be between 0 and 100"))
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), q.Limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run and its per-layout outcomes.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.errorResponse(w, http.StatusNotFound, "run ledger is not enabled")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, badRequest("invalid run ID format"))
		return
	}
	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	outcomes, err := s.runs.ListLayoutOutcomes(r.Context(), runID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if outcomes == nil {
		outcomes = []db.LayoutOutcome{}
	}
	s.jsonResponse(w, http.StatusOK, RunResponse{Run: run, Outcomes: outcomes})
}
