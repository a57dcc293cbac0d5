package compile

import (
	"log/slog"
	"time"
)

// EventKind names a step of the compilation state machine.
type EventKind string

const (
	EventServiceSkipped        EventKind = "service_skipped"
	EventServiceFailed         EventKind = "service_failed"
	EventServiceSucceeded      EventKind = "service_succeeded"
	EventAllServicesFailed     EventKind = "all_services_failed"
	EventSimplifyFailed        EventKind = "simplify_failed"
	EventDegradedToPlaceholder EventKind = "degraded_to_placeholder"
)

// Event is emitted by the Orchestrator as it walks the service list.
type Event struct {
	Kind         EventKind
	Layout       string
	Pass         Pass
	Service      string
	MarkupLength int
	Duration     time.Duration
	Err          error
}

// Observer receives orchestration events. It must not block.
type Observer func(Event)

// Observers fans an event out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	return func(e Event) {
		for _, o := range observers {
			if o != nil {
				o(e)
			}
		}
	}
}

// LogObserver logs service failures and exhaustion at WARN and placeholder
// degradation at ERROR. Successes and skips go to DEBUG.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		attrs := []any{
			slog.String("layout", e.Layout),
			slog.String("pass", string(e.Pass)),
		}
		if e.Service != "" {
			attrs = append(attrs, slog.String("service", e.Service))
		}
		if e.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", e.Duration))
		}
		if e.Err != nil {
			attrs = append(attrs, slog.String("error", e.Err.Error()))
		}

		switch e.Kind {
		case EventServiceSucceeded:
			logger.Debug("compilation succeeded", attrs...)
		case EventServiceSkipped:
			logger.Debug("service skipped", append(attrs, slog.Int("markup_length", e.MarkupLength))...)
		case EventServiceFailed:
			logger.Warn("service unavailable", attrs...)
		case EventAllServicesFailed:
			logger.Warn("all services failed", attrs...)
		case EventSimplifyFailed:
			logger.Warn("simplified rendering failed", attrs...)
		case EventDegradedToPlaceholder:
			logger.Error("degraded to placeholder document", attrs...)
		}
	}
}
