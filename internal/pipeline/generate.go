// Package pipeline generates every requested layout from one resume record:
// validate -> normalize -> render (per layout) -> compile (per layout, concurrently).
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// ProgressEvent represents a progress update during generation.
type ProgressEvent struct {
	Stage   Stage            `json:"stage"`
	Layout  rendering.Layout `json:"layout,omitempty"`
	Message string           `json:"message"`
	RunID   string           `json:"run_id,omitempty"`
}

// ProgressCallback is called when generation progress occurs.
type ProgressCallback func(event ProgressEvent)

// Ledger records run metadata. *db.DB implements it.
type Ledger interface {
	CreateRun(ctx context.Context, run db.Run) error
	SaveLayoutOutcome(ctx context.Context, o db.LayoutOutcome) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// Options configures a Generator. Only Orchestrator is required for Generate.
type Options struct {
	Orchestrator *compile.Orchestrator
	Policy       config.PlaceholderPolicy
	Ledger       Ledger
	Metrics      *metrics.Registry
	Logger       *slog.Logger
	OnProgress   ProgressCallback
}

// Generator runs the multi-layout pipeline. It is safe for concurrent use.
type Generator struct {
	opts Options
}

// New returns a Generator.
func New(opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Policy == "" {
		opts.Policy = config.PolicyAccept
	}
	return &Generator{opts: opts}
}

// Request selects layouts and labels the run for the ledger.
type Request struct {
	// Layouts to produce. Empty selects every primary layout.
	Layouts []rendering.Layout
	// Source labels the caller ("cli", "render", "upload").
	Source string
}

// LayoutResult is the outcome of one layout. Err is set when the layout failed; PDF
// is then nil. With the accept policy a placeholder outcome has PDF set and Err nil.
type LayoutResult struct {
	Layout   rendering.Layout
	Markup   string
	PDF      []byte
	Outcome  compile.Outcome
	Service  string
	Attempts []compile.Attempt
	Duration time.Duration
	Err      error
}

// Status is the short state reported to callers: the compile outcome, "rendered" for
// render-only results, or "failed".
func (r *LayoutResult) Status() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Outcome == "":
		return "rendered"
	default:
		return string(r.Outcome)
	}
}

// Result is a whole run.
type Result struct {
	RunID         uuid.UUID
	Record        *types.ResumeRecord
	Substitutions []record.Substitution
	Layouts       []*LayoutResult
	Duration      time.Duration
}

// Failed returns the layouts that carry an error.
func (r *Result) Failed() []*LayoutResult {
	var out []*LayoutResult
	for _, l := range r.Layouts {
		if l.Err != nil {
			out = append(out, l)
		}
	}
	return out
}

// Render validates and normalizes obj and renders the markup of each layout without
// compiling it. A non-object record is the only global error.
func (g *Generator) Render(ctx context.Context, obj *record.Object, req Request) (*Result, error) {
	start := time.Now()
	res, err := g.prepare(obj, req)
	if err != nil {
		return nil, err
	}
	for _, lr := range res.Layouts {
		if lr.Err == nil {
			g.renderLayout(res, lr)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Generate renders and compiles every requested layout. Layout failures stay in their
// LayoutResult and never abort siblings.
func (g *Generator) Generate(ctx context.Context, obj *record.Object, req Request) (*Result, error) {
	if g.opts.Orchestrator == nil {
		return nil, errors.New("pipeline: no compile orchestrator configured")
	}
	start := time.Now()
	g.incRun(func(m *metrics.Registry) { m.IncRunStarted() })

	res, err := g.prepare(obj, req)
	if err != nil {
		g.incRun(func(m *metrics.Registry) { m.IncRunFailed() })
		return nil, err
	}
	logger := g.opts.Logger.With("run_id", res.RunID.String())
	g.startLedger(ctx, logger, res, req.Source)

	var compileReqs []compile.Request
	var pending []*LayoutResult
	for _, lr := range res.Layouts {
		if lr.Err != nil {
			continue
		}
		g.renderLayout(res, lr)
		if lr.Err != nil {
			continue
		}
		compileReqs = append(compileReqs, compile.Request{
			Layout:   string(lr.Layout),
			Markup:   lr.Markup,
			Simplify: g.simplifier(res.Record),
		})
		pending = append(pending, lr)
	}

	compiled := g.opts.Orchestrator.CompileAll(ctx, compileReqs)
	for i, cr := range compiled {
		g.applyCompileResult(pending[i], cr)
		g.emit(ProgressEvent{Stage: StageCompile, Layout: pending[i].Layout, RunID: res.RunID.String(),
			Message: fmt.Sprintf("compiled %s: %s", pending[i].Layout, pending[i].Status())})
	}

	res.Duration = time.Since(start)
	g.finishLedger(ctx, logger, res)
	g.incRun(func(m *metrics.Registry) { m.IncRunCompleted() })
	for _, lr := range res.Layouts {
		if lr.Err != nil {
			logger.Warn("layout failed", "layout", lr.Layout, "error", lr.Err)
		}
	}
	return res, nil
}

// prepare runs the shared steps. Validation and normalization failures are recorded
// on every layout; only a non-object record aborts.
func (g *Generator) prepare(obj *record.Object, req Request) (*Result, error) {
	if obj == nil {
		return nil, &record.NotObjectError{Got: "null"}
	}
	layouts := req.Layouts
	if len(layouts) == 0 {
		layouts = append([]rendering.Layout(nil), rendering.PrimaryLayouts...)
	}

	res := &Result{RunID: uuid.New()}
	for _, l := range layouts {
		res.Layouts = append(res.Layouts, &LayoutResult{Layout: l})
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	if err := schemas.ValidateRecord(raw); err != nil {
		g.failAll(res, StageValidate, err)
		return res, nil
	}

	normalizer := record.Normalizer{OnDefault: func(s record.Substitution) {
		res.Substitutions = append(res.Substitutions, s)
	}}
	rec, err := normalizer.Normalize(obj)
	if err != nil {
		g.failAll(res, StageNormalize, err)
		return res, nil
	}
	res.Record = rec
	if len(res.Substitutions) > 0 {
		g.opts.Logger.Debug("defaults substituted", "run_id", res.RunID.String(), "count", len(res.Substitutions))
	}
	g.emit(ProgressEvent{Stage: StageNormalize, RunID: res.RunID.String(),
		Message: fmt.Sprintf("normalized record with %d default(s)", len(res.Substitutions))})
	return res, nil
}

func (g *Generator) failAll(res *Result, stage Stage, err error) {
	for _, lr := range res.Layouts {
		lr.Err = &LayoutError{Layout: lr.Layout, Stage: stage, Cause: err}
	}
	g.emit(ProgressEvent{Stage: stage, RunID: res.RunID.String(), Message: err.Error()})
}

// renderLayout renders one layout, converting a panic into a layout failure.
func (g *Generator) renderLayout(res *Result, lr *LayoutResult) {
	defer func() {
		if v := recover(); v != nil {
			lr.Markup = ""
			lr.Err = &LayoutError{Layout: lr.Layout, Stage: StageRender, Cause: &PanicError{Value: v}}
		}
	}()
	markup, err := rendering.RenderLaTeX(res.Record, lr.Layout)
	if err != nil {
		lr.Err = &LayoutError{Layout: lr.Layout, Stage: StageRender, Cause: err}
		return
	}
	lr.Markup = markup
	g.emit(ProgressEvent{Stage: StageRender, Layout: lr.Layout, RunID: res.RunID.String(),
		Message: fmt.Sprintf("rendered %d characters", utf8.RuneCountInString(markup))})
}

func (g *Generator) simplifier(rec *types.ResumeRecord) func() (string, error) {
	return func() (markup string, err error) {
		defer func() {
			if v := recover(); v != nil {
				err = &PanicError{Value: v}
			}
		}()
		return rendering.RenderLaTeX(rec, rendering.Simplified)
	}
}

func (g *Generator) applyCompileResult(lr *LayoutResult, cr *compile.Result) {
	lr.Outcome = cr.Outcome
	lr.Service = cr.Service
	lr.Attempts = cr.Attempts
	lr.Duration = cr.Duration
	lr.Markup = cr.Markup
	lr.PDF = cr.PDF

	if g.opts.Metrics != nil {
		g.opts.Metrics.ObserveOutcome(string(cr.Outcome), float64(cr.Duration.Milliseconds()))
	}

	if cr.Degraded() && g.opts.Policy == config.PolicyFail {
		lr.PDF = nil
		lr.Err = &LayoutError{Layout: lr.Layout, Stage: StageCompile, Cause: cr.Err}
	}
}

func (g *Generator) startLedger(ctx context.Context, logger *slog.Logger, res *Result, source string) {
	if g.opts.Ledger == nil {
		return
	}
	names := make([]string, len(res.Layouts))
	for i, lr := range res.Layouts {
		names[i] = string(lr.Layout)
	}
	if source == "" {
		source = "unknown"
	}
	if err := g.opts.Ledger.CreateRun(ctx, db.Run{ID: res.RunID, Source: source, Layouts: names}); err != nil {
		logger.Warn("failed to create ledger run", "error", err)
	}
}

func (g *Generator) finishLedger(ctx context.Context, logger *slog.Logger, res *Result) {
	if g.opts.Ledger == nil {
		return
	}
	status := db.StatusCompleted
	for _, lr := range res.Layouts {
		outcome := db.LayoutOutcome{
			RunID:        res.RunID,
			Layout:       string(lr.Layout),
			Outcome:      lr.Status(),
			Service:      lr.Service,
			Attempts:     len(lr.Attempts),
			MarkupLength: utf8.RuneCountInString(lr.Markup),
			DurationMs:   lr.Duration.Milliseconds(),
		}
		if lr.Err != nil {
			outcome.ErrorMessage = lr.Err.Error()
			status = db.StatusCompletedWithFailure
		}
		if err := g.opts.Ledger.SaveLayoutOutcome(ctx, outcome); err != nil {
			logger.Warn("failed to save layout outcome", "layout", lr.Layout, "error", err)
		}
	}
	if err := g.opts.Ledger.CompleteRun(ctx, res.RunID, status); err != nil {
		logger.Warn("failed to complete ledger run", "error", err)
	}
}

func (g *Generator) incRun(fn func(*metrics.Registry)) {
	if g.opts.Metrics != nil {
		fn(g.opts.Metrics)
	}
}

func (g *Generator) emit(e ProgressEvent) {
	if g.opts.OnProgress != nil {
		g.opts.OnProgress(e)
	}
}
