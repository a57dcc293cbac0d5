package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

type jsonResource struct {
	Main    bool   `json:"main"`
	Content string `json:"content"`
}

type jsonBuildRequest struct {
	Compiler  string         `json:"compiler"`
	Resources []jsonResource `json:"resources"`
}

// JSONService posts the markup as a single main resource of a synchronous build.
type JSONService struct {
	baseService
}

func (s *JSONService) Compile(ctx context.Context, markup string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(jsonBuildRequest{
		Compiler:  "pdflatex",
		Resources: []jsonResource{{Main: true, Content: markup}},
	})
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
	return s.document(v)
}
