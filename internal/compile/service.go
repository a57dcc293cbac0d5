// Package compile turns LaTeX markup into PDF documents through an ordered list of
// remote compilation services, degrading to a simplified rendering and finally to a
// placeholder document when every service fails.
package compile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is one backend that compiles markup into a PDF.
type Service interface {
	Name() string
	// MaxLength is the largest markup, in characters, the service accepts. Zero means unlimited.
	MaxLength() int
	Compile(ctx context.Context, markup string) ([]byte, error)
}

// Kind selects the request shape of a service.
type Kind string

const (
	KindQuery   Kind = "query"
	KindArchive Kind = "archive"
	KindJSON    Kind = "json"
	KindPoll    Kind = "poll"
)

// ServiceConfig describes one backend.
type ServiceConfig struct {
	Name      string
	Kind      Kind
	URL       string
	MaxLength int
	Timeout   time.Duration

	// Poll settings, used by KindPoll only.
	PollInterval time.Duration
	PollAttempts int

	// TempRoot is the parent of per-request temp dirs for KindArchive. Empty uses os.TempDir.
	TempRoot string
}

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollAttempts = 5

	// UserAgent is sent with every compilation request.
	UserAgent = "resume-builder/1.0"

	maxResponseBytes = 20 << 20

	// clientTimeout caps any single request made through the default client.
	clientTimeout = 5 * time.Minute
)

// DefaultTimeout is the request timeout used when a service configures none.
func DefaultTimeout(kind Kind) time.Duration {
	switch kind {
	case KindQuery:
		return 30 * time.Second
	case KindArchive:
		return 60 * time.Second
	default:
		return 45 * time.Second
	}
}

// DefaultServiceConfigs returns the built-in backend list in fallback order.
func DefaultServiceConfigs() []ServiceConfig {
	return []ServiceConfig{
		{
			Name:      "latexonline-get",
			Kind:      KindQuery,
			URL:       "https://latexonline.cc/compile",
			MaxLength: 6000,
			Timeout:   DefaultTimeout(KindQuery),
		},
		{
			Name:    "latexonline-archive",
			Kind:    KindArchive,
			URL:     "https://latexonline.cc/data?target=main.tex&command=pdflatex",
			Timeout: DefaultTimeout(KindArchive),
		},
		{
			Name:      "latex-on-http",
			Kind:      KindJSON,
			URL:       "https://latex.ytotech.com/builds/sync",
			MaxLength: 200000,
			Timeout:   DefaultTimeout(KindJSON),
		},
	}
}

// NewService builds a Service from its configuration. Timeouts are applied per request
// through the context; a zero Timeout takes DefaultTimeout for the kind. A nil client
// uses a fresh http.Client capped at clientTimeout.
func NewService(cfg ServiceConfig, client *http.Client) (Service, error) {
	if client == nil {
		client = &http.Client{Timeout: clientTimeout}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout(cfg.Kind)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("service %s: url is required", cfg.Name)
	}

	base := baseService{name: cfg.Name, url: cfg.URL, maxLength: cfg.MaxLength, timeout: cfg.Timeout, client: client}
	switch cfg.Kind {
	case KindQuery:
		return &QueryService{baseService: base}, nil
	case KindArchive:
		return &ArchiveService{baseService: base, TempRoot: cfg.TempRoot}, nil
	case KindJSON:
		return &JSONService{baseService: base}, nil
	case KindPoll:
		interval, attempts := cfg.PollInterval, cfg.PollAttempts
		if interval <= 0 {
			interval = DefaultPollInterval
		}
		if attempts <= 0 {
			attempts = DefaultPollAttempts
		}
		return &PollingService{baseService: base, Interval: interval, Attempts: attempts}, nil
	default:
		return nil, fmt.Errorf("service %s: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// NewServices builds every configured service, preserving order.
func NewServices(cfgs []ServiceConfig, client *http.Client) ([]Service, error) {
	services := make([]Service, 0, len(cfgs))
	for _, cfg := range cfgs {
		svc, err := NewService(cfg, client)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

type baseService struct {
	name      string
	url       string
	maxLength int
	timeout   time.Duration
	client    *http.Client
}

func (b *baseService) Name() string   { return b.name }
func (b *baseService) MaxLength() int { return b.maxLength }

// withTimeout bounds one request. A timeout surfaces as a transport error like any other.
func (b *baseService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = clientTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (b *baseService) fail(message string, cause error) error {
	return &ServiceError{Service: b.name, Message: message, Cause: cause}
}

// do sends req and classifies the response.
func (b *baseService) do(req *http.Request) (verdict, error) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/pdf, application/json;q=0.9, */*;q=0.5")

	resp, err := b.client.Do(req)
	if err != nil {
		return verdict{}, b.fail("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return verdict{}, b.fail("failed to read response body", err)
	}

	v := classify(resp.StatusCode, resp.Header.Get("Content-Type"), body)
	if v.err != nil {
		return v, b.fail(v.reason, v.err)
	}
	return v, nil
}

// document returns the PDF carried by v, or an error if v only names a pending job.
func (b *baseService) document(v verdict) ([]byte, error) {
	if v.pdf != nil {
		return v.pdf, nil
	}
	return nil, b.fail(fmt.Sprintf("asynchronous job %s is not supported by this service", v.jobID), ErrNotDocument)
}
