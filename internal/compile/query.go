package compile

import (
	"context"
	"net/http"
	"net/url"
)

// QueryService sends the markup URL-encoded in the query string of a GET request.
type QueryService struct {
	baseService
}

func (s *QueryService) Compile(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := url.Parse(s.url)
	if err != nil {
		return nil, s.fail("invalid service URL", err)
	}
	q := u.Query()
	q.Set("text", markup)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, s.fail("failed to build request", err)
	}

	v, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return s.document(v)
}
