// Package metrics keeps process-wide counters for compilation and renders them in
// Prometheus text format.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jonathan/resume-builder/internal/compile"
)

// Registry holds the counters. The zero value is not usable; call NewRegistry.
type Registry struct {
	runsStarted   atomic.Uint64
	runsCompleted atomic.Uint64
	runsFailed    atomic.Uint64

	mu       sync.Mutex
	attempts map[attemptKey]uint64
	outcomes map[string]uint64

	compileDuration *histogram
}

type attemptKey struct {
	service string
	result  string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		attempts:        make(map[attemptKey]uint64),
		outcomes:        make(map[string]uint64),
		compileDuration: newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}),
	}
}

// Default is the registry used by the CLI and HTTP server.
var Default = NewRegistry()

// IncRunStarted increments the started counter.
func (r *Registry) IncRunStarted() {
	r.runsStarted.Add(1)
}

// IncRunCompleted increments the completed counter.
func (r *Registry) IncRunCompleted() {
	r.runsCompleted.Add(1)
}

// IncRunFailed increments the failed counter.
func (r *Registry) IncRunFailed() {
	r.runsFailed.Add(1)
}

// ObserveOutcome counts one layout outcome and its compile duration in milliseconds.
func (r *Registry) ObserveOutcome(outcome string, durationMs float64) {
	r.mu.Lock()
	r.outcomes[outcome]++
	r.mu.Unlock()
	if durationMs < 0 {
		durationMs = 0
	}
	r.compileDuration.Observe(durationMs)
}

// Observer counts service attempts from orchestration events.
func (r *Registry) Observer() compile.Observer {
	return func(e compile.Event) {
		var result string
		switch e.Kind {
		case compile.EventServiceSucceeded:
			result = "success"
		case compile.EventServiceFailed:
			result = "failure"
		case compile.EventServiceSkipped:
			result = "skipped"
		default:
			return
		}
		r.mu.Lock()
		r.attempts[attemptKey{service: e.Service, result: result}]++
		r.mu.Unlock()
	}
}

// Handler exposes metrics in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.Render()))
	})
}

// Render renders metrics in Prometheus text format.
func (r *Registry) Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_runs_started_total", "Total generation runs started", r.runsStarted.Load())
	writeCounter(&buf, "resume_runs_completed_total", "Total generation runs completed", r.runsCompleted.Load())
	writeCounter(&buf, "resume_runs_failed_total", "Total generation runs rejected before rendering", r.runsFailed.Load())

	r.mu.Lock()
	attempts := make([]attemptKey, 0, len(r.attempts))
	for k := range r.attempts {
		attempts = append(attempts, k)
	}
	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].service != attempts[j].service {
			return attempts[i].service < attempts[j].service
		}
		return attempts[i].result < attempts[j].result
	})
	attemptCounts := make([]uint64, len(attempts))
	for i, k := range attempts {
		attemptCounts[i] = r.attempts[k]
	}

	outcomes := make([]string, 0, len(r.outcomes))
	for k := range r.outcomes {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)
	outcomeCounts := make([]uint64, len(outcomes))
	for i, k := range outcomes {
		outcomeCounts[i] = r.outcomes[k]
	}
	r.mu.Unlock()

	fmt.Fprintf(&buf, "# HELP %s %s\n", "resume_compile_attempts_total", "Compilation attempts per backend service and result")
	fmt.Fprintf(&buf, "# TYPE %s counter\n", "resume_compile_attempts_total")
	for i, k := range attempts {
		fmt.Fprintf(&buf, "resume_compile_attempts_total{service=%q,result=%q} %d\n", k.service, k.result, attemptCounts[i])
	}

	fmt.Fprintf(&buf, "# HELP %s %s\n", "resume_layout_outcomes_total", "Layout compilation outcomes")
	fmt.Fprintf(&buf, "# TYPE %s counter\n", "resume_layout_outcomes_total")
	for i, k := range outcomes {
		fmt.Fprintf(&buf, "resume_layout_outcomes_total{outcome=%q} %d\n", k, outcomeCounts[i])
	}

	writeHistogram(&buf, "resume_compile_duration_ms", "Per-layout compilation duration in milliseconds", r.compileDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
