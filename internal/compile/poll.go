package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PollingService submits a job and then polls {url}/{id} at a fixed interval for a
// fixed number of attempts. The whole exchange shares one timeout.
type PollingService struct {
	baseService
	Interval time.Duration
	Attempts int
}

type pollSubmitRequest struct {
	Compiler string `json:"compiler"`
	Content  string `json:"content"`
}

func (s *PollingService) Compile(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(pollSubmitRequest{Compiler: "pdflatex", Content: markup})
	if err != nil {
		return nil, s.fail("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, s.fail("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	v, err := s.do(req)
	if err != nil {
		return nil, err
	}
	if v.pdf != nil {
		return v.pdf, nil
	}

	statusURL := strings.TrimSuffix(s.url, "/") + "/" + url.PathEscape(v.jobID)
	for attempt := 1; attempt <= s.Attempts; attempt++ {
		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, s.fail(fmt.Sprintf("job %s interrupted", v.jobID), ctx.Err())
		case <-timer.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return nil, s.fail("failed to build status request", err)
		}
		status, err := s.do(req)
		if err != nil {
			return nil, err
		}
		if status.pdf != nil {
			return status.pdf, nil
		}
	}

	return nil, s.fail(fmt.Sprintf("job %s not finished after %d attempts", v.jobID, s.Attempts), ErrPollExhausted)
}
