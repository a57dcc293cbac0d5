package compile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\nsample body\n%%EOF\n")

type fakeService struct {
	name  string
	limit int
	calls atomic.Int32
	fn    func(markup string) ([]byte, error)
}

func (f *fakeService) Name() string   { return f.name }
func (f *fakeService) MaxLength() int { return f.limit }

func (f *fakeService) Compile(_ context.Context, markup string) ([]byte, error) {
	f.calls.Add(1)
	return f.fn(markup)
}

func failing(name string) *fakeService {
	return &fakeService{name: name, fn: func(string) ([]byte, error) {
		return nil, &ServiceError{Service: name, Message: "boom", Cause: ErrNotDocument}
	}}
}

func succeeding(name string, pdf []byte) *fakeService {
	return &fakeService{name: name, fn: func(string) ([]byte, error) { return pdf, nil }}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func TestOrchestrator_ServiceNamesKeepOrder(t *testing.T) {
	services, err := NewServices(DefaultServiceConfigs(), nil)
	require.NoError(t, err)

	orch := NewOrchestrator(services, nil)
	assert.Equal(t, []string{"latexonline-get", "latexonline-archive", "latex-on-http"}, orch.ServiceNames())
}

func TestOrchestrator_FirstServiceSucceeds(t *testing.T) {
	first := succeeding("first", samplePDF)
	second := succeeding("second", samplePDF)
	o := NewOrchestrator([]Service{first, second}, nil)

	res := o.Compile(context.Background(), Request{Layout: "professional", Markup: "doc"})

	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, samplePDF, res.PDF)
	assert.Equal(t, "first", res.Service)
	assert.Equal(t, "doc", res.Markup)
	assert.NoError(t, res.Err)
	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(0), second.calls.Load(), "no retry or extra call after success")
}

func TestOrchestrator_SkipsServiceOverLengthLimitWithoutCalling(t *testing.T) {
	limited := succeeding("limited", samplePDF)
	limited.limit = 10
	fallback := succeeding("fallback", samplePDF)
	rec := &eventRecorder{}
	o := NewOrchestrator([]Service{limited, fallback}, rec.observe)

	res := o.Compile(context.Background(), Request{Layout: "modern", Markup: strings.Repeat("x", 11)})

	assert.Equal(t, int32(0), limited.calls.Load())
	assert.Equal(t, int32(1), fallback.calls.Load())
	assert.Equal(t, "fallback", res.Service)
	require.Len(t, res.Attempts, 2)
	assert.True(t, res.Attempts[0].Skipped)
	assert.ErrorIs(t, res.Attempts[0].Err, ErrMarkupTooLong)
	assert.Equal(t, []EventKind{EventServiceSkipped, EventServiceSucceeded}, rec.kinds())
}

func TestOrchestrator_LengthLimitCountsCharacters(t *testing.T) {
	limited := succeeding("limited", samplePDF)
	limited.limit = 3
	o := NewOrchestrator([]Service{limited}, nil)

	res := o.Compile(context.Background(), Request{Layout: "compact", Markup: "äöü"})

	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, int32(1), limited.calls.Load())
}

func TestOrchestrator_EachServiceTriedOncePerPass(t *testing.T) {
	a, b := failing("a"), failing("b")
	o := NewOrchestrator([]Service{a, b}, nil)

	res := o.Compile(context.Background(), Request{
		Layout:   "professional",
		Markup:   "primary",
		Simplify: func() (string, error) { return "simple", nil },
	})

	assert.Equal(t, OutcomePlaceholder, res.Outcome)
	assert.Equal(t, int32(2), a.calls.Load())
	assert.Equal(t, int32(2), b.calls.Load())
	require.Len(t, res.Attempts, 4)
	assert.Equal(t, []Pass{PassPrimary, PassPrimary, PassSimplified, PassSimplified},
		[]Pass{res.Attempts[0].Pass, res.Attempts[1].Pass, res.Attempts[2].Pass, res.Attempts[3].Pass})
}

func TestOrchestrator_AllFailReturnsPlaceholder(t *testing.T) {
	rec := &eventRecorder{}
	o := NewOrchestrator([]Service{failing("a")}, rec.observe)

	res := o.Compile(context.Background(), Request{
		Layout:   "compact",
		Markup:   "primary",
		Simplify: func() (string, error) { return "simple", nil },
	})

	assert.Equal(t, OutcomePlaceholder, res.Outcome)
	assert.True(t, res.Degraded())
	assert.Equal(t, []byte("%PDF"), res.PDF[:4])
	assert.True(t, IsPlaceholder(res.PDF))
	assert.Equal(t, "primary", res.Markup)

	var degraded *DegradedError
	require.ErrorAs(t, res.Err, &degraded)
	assert.Equal(t, "compact", degraded.Layout)

	assert.Equal(t, []EventKind{
		EventServiceFailed, EventAllServicesFailed,
		EventServiceFailed, EventAllServicesFailed,
		EventDegradedToPlaceholder,
	}, rec.kinds())
}

func TestOrchestrator_NoServicesDegrades(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	res := o.Compile(context.Background(), Request{Layout: "modern", Markup: "doc"})
	assert.Equal(t, OutcomePlaceholder, res.Outcome)
	assert.True(t, IsPDF(res.PDF))
}

func TestOrchestrator_SimplifyErrorDegrades(t *testing.T) {
	rec := &eventRecorder{}
	o := NewOrchestrator([]Service{failing("a")}, rec.observe)

	res := o.Compile(context.Background(), Request{
		Layout:   "modern",
		Markup:   "doc",
		Simplify: func() (string, error) { return "", errors.New("render failed") },
	})

	assert.Equal(t, OutcomePlaceholder, res.Outcome)
	assert.Contains(t, rec.kinds(), EventSimplifyFailed)
	assert.ErrorContains(t, res.Err, "render failed")
}

func TestOrchestrator_RejectsArtifactWithoutMagic(t *testing.T) {
	bogus := succeeding("bogus", []byte("<html>nope</html>"))
	good := succeeding("good", samplePDF)
	o := NewOrchestrator([]Service{bogus, good}, nil)

	res := o.Compile(context.Background(), Request{Layout: "professional", Markup: "doc"})

	assert.Equal(t, "good", res.Service)
	assert.ErrorIs(t, res.Attempts[0].Err, ErrNotDocument)
}

// Service 1 times out and service 2 answers with an HTML page. Service 3 only fits the
// shorter simplified markup, so the layout succeeds via the simplified template.
func TestOrchestrator_TimeoutThenHTMLThenSimplifiedSucceeds(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>Just a moment...</title></head><body></body></html>"))
	}))
	defer html.Close()

	var thirdCalls atomic.Int32
	third := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		thirdCalls.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(samplePDF)
	}))
	defer third.Close()

	primary := strings.Repeat("p", 200)
	simplified := strings.Repeat("s", 50)

	services, err := NewServices([]ServiceConfig{
		{Name: "slow", Kind: KindQuery, URL: slow.URL, Timeout: 50 * time.Millisecond},
		{Name: "html", Kind: KindJSON, URL: html.URL, Timeout: time.Second},
		{Name: "third", Kind: KindJSON, URL: third.URL, Timeout: time.Second, MaxLength: 100},
	}, nil)
	require.NoError(t, err)

	o := NewOrchestrator(services, nil)
	res := o.Compile(context.Background(), Request{
		Layout:   "professional",
		Markup:   primary,
		Simplify: func() (string, error) { return simplified, nil },
	})

	assert.Equal(t, OutcomeSucceededSimplified, res.Outcome)
	assert.Equal(t, samplePDF, res.PDF)
	assert.Equal(t, "third", res.Service)
	assert.Equal(t, simplified, res.Markup)
	assert.NoError(t, res.Err)
	assert.Equal(t, int32(1), thirdCalls.Load())

	require.Len(t, res.Attempts, 6)
	assert.ErrorIs(t, res.Attempts[0].Err, context.DeadlineExceeded)
	assert.ErrorIs(t, res.Attempts[1].Err, ErrHTMLResponse)
	assert.ErrorContains(t, res.Attempts[1].Err, "Just a moment...")
	assert.True(t, res.Attempts[2].Skipped)
}

func TestOrchestrator_CompileAllIsolatesLayouts(t *testing.T) {
	svc := &fakeService{name: "picky", fn: func(markup string) ([]byte, error) {
		if strings.Contains(markup, "bad") {
			return nil, errors.New("compile error")
		}
		return samplePDF, nil
	}}
	o := NewOrchestrator([]Service{svc}, nil)

	results := o.CompileAll(context.Background(), []Request{
		{Layout: "professional", Markup: "good"},
		{Layout: "modern", Markup: "bad", Simplify: func() (string, error) { return "still bad", nil }},
		{Layout: "compact", Markup: "good too"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "professional", results[0].Layout)
	assert.Equal(t, OutcomeSucceeded, results[0].Outcome)
	assert.Equal(t, "modern", results[1].Layout)
	assert.Equal(t, OutcomePlaceholder, results[1].Outcome)
	assert.Equal(t, "compact", results[2].Layout)
	assert.Equal(t, OutcomeSucceeded, results[2].Outcome)
}

func TestObservers_FanOutSkipsNil(t *testing.T) {
	var a, b int
	obs := Observers(func(Event) { a++ }, nil, func(Event) { b++ })
	obs(Event{Kind: EventServiceFailed})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
