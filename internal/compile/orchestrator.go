package compile

import (
	"context"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Pass distinguishes the primary markup from the simplified fallback markup.
type Pass string

const (
	PassPrimary    Pass = "primary"
	PassSimplified Pass = "simplified"
)

// Outcome is the terminal state of one layout's compilation.
type Outcome string

const (
	OutcomeSucceeded           Outcome = "succeeded"
	OutcomeSucceededSimplified Outcome = "succeeded_simplified"
	OutcomePlaceholder         Outcome = "placeholder"
)

// Request is one layout's compilation input.
type Request struct {
	Layout string
	Markup string
	// Simplify renders the fallback markup. Nil skips the simplified pass.
	Simplify func() (string, error)
}

// Attempt records one step of the service traversal.
type Attempt struct {
	Pass     Pass
	Service  string
	Skipped  bool
	Err      error
	Duration time.Duration
}

// Result is the artifact for one layout. PDF is always set; Outcome tells the
// caller whether it is genuine or the placeholder.
type Result struct {
	Layout   string
	Outcome  Outcome
	PDF      []byte
	Markup   string
	Service  string
	Attempts []Attempt
	Duration time.Duration
	// Err is a *DegradedError when Outcome is OutcomePlaceholder.
	Err error
}

// Degraded reports whether the artifact is the placeholder document.
func (r *Result) Degraded() bool {
	return r.Outcome == OutcomePlaceholder
}

// Orchestrator walks an ordered list of services for each request. It holds no
// per-request state and is safe for concurrent use.
type Orchestrator struct {
	services []Service
	observer Observer
}

// NewOrchestrator returns an Orchestrator over services, tried in order.
func NewOrchestrator(services []Service, observer Observer) *Orchestrator {
	if observer == nil {
		observer = func(Event) {}
	}
	return &Orchestrator{services: append([]Service(nil), services...), observer: observer}
}

// ServiceNames lists the configured services in traversal order.
func (o *Orchestrator) ServiceNames() []string {
	names := make([]string, len(o.services))
	for i, s := range o.services {
		names[i] = s.Name()
	}
	return names
}

// Compile runs PENDING -> TRYING(service_i) -> SUCCEEDED | ALL_FAILED for the primary
// markup, repeats the traversal with the simplified markup, and finally degrades to
// the placeholder document. It never returns without an artifact.
func (o *Orchestrator) Compile(ctx context.Context, req Request) *Result {
	start := time.Now()
	res := &Result{Layout: req.Layout, Markup: req.Markup}
	defer func() { res.Duration = time.Since(start) }()

	pdf, service, err := o.traverse(ctx, req.Layout, PassPrimary, req.Markup, res)
	if err == nil {
		res.Outcome, res.PDF, res.Service = OutcomeSucceeded, pdf, service
		return res
	}
	o.observer(Event{Kind: EventAllServicesFailed, Layout: req.Layout, Pass: PassPrimary, Err: err})
	lastErr := err

	if req.Simplify != nil {
		simplified, serr := req.Simplify()
		if serr != nil {
			o.observer(Event{Kind: EventSimplifyFailed, Layout: req.Layout, Pass: PassSimplified, Err: serr})
			lastErr = serr
		} else {
			pdf, service, err = o.traverse(ctx, req.Layout, PassSimplified, simplified, res)
			if err == nil {
				res.Outcome, res.PDF, res.Service, res.Markup = OutcomeSucceededSimplified, pdf, service, simplified
				return res
			}
			o.observer(Event{Kind: EventAllServicesFailed, Layout: req.Layout, Pass: PassSimplified, Err: err})
			lastErr = err
		}
	}

	res.Outcome = OutcomePlaceholder
	res.PDF = PlaceholderPDF()
	res.Err = &DegradedError{Layout: req.Layout, Cause: lastErr}
	o.observer(Event{Kind: EventDegradedToPlaceholder, Layout: req.Layout, Err: lastErr})
	return res
}

// traverse tries each service once, strictly in order.
func (o *Orchestrator) traverse(ctx context.Context, layout string, pass Pass, markup string, res *Result) ([]byte, string, error) {
	length := utf8.RuneCountInString(markup)
	var causes []error

	for _, svc := range o.services {
		if limit := svc.MaxLength(); limit > 0 && length > limit {
			res.Attempts = append(res.Attempts, Attempt{Pass: pass, Service: svc.Name(), Skipped: true, Err: ErrMarkupTooLong})
			o.observer(Event{Kind: EventServiceSkipped, Layout: layout, Pass: pass, Service: svc.Name(), MarkupLength: length, Err: ErrMarkupTooLong})
			causes = append(causes, &ServiceError{Service: svc.Name(), Message: "skipped", Cause: ErrMarkupTooLong})
			continue
		}

		started := time.Now()
		pdf, err := svc.Compile(ctx, markup)
		elapsed := time.Since(started)
		if err == nil && !IsPDF(pdf) {
			err = &ServiceError{Service: svc.Name(), Message: "artifact lacks PDF header", Cause: ErrNotDocument}
		}

		res.Attempts = append(res.Attempts, Attempt{Pass: pass, Service: svc.Name(), Err: err, Duration: elapsed})
		if err != nil {
			o.observer(Event{Kind: EventServiceFailed, Layout: layout, Pass: pass, Service: svc.Name(), MarkupLength: length, Duration: elapsed, Err: err})
			causes = append(causes, err)
			continue
		}

		o.observer(Event{Kind: EventServiceSucceeded, Layout: layout, Pass: pass, Service: svc.Name(), MarkupLength: length, Duration: elapsed})
		return pdf, svc.Name(), nil
	}

	return nil, "", &AllServicesFailedError{Layout: layout, Pass: pass, Causes: causes}
}

// CompileAll compiles every request concurrently. Results keep the request order and
// one layout's failure never affects another.
func (o *Orchestrator) CompileAll(ctx context.Context, reqs []Request) []*Result {
	results := make([]*Result, len(reqs))
	var g errgroup.Group
	for i := range reqs {
		g.Go(func() error {
			results[i] = o.Compile(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}
