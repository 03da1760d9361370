// Package httpx implements the upstream port over net/http.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
)

// Upstream forwards intercepted requests to the remote API server.
type Upstream struct {
	client  ports.HTTPClient
	baseURL string
	logger  ports.Logger
}

// NewUpstream creates an upstream adapter. baseURL is the remote API server
// root; request URLs beginning with "/" are resolved against it.
func NewUpstream(client ports.HTTPClient, baseURL string, logger ports.Logger) *Upstream {
	return &Upstream{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Forward issues the request and reads the whole response body.
// An error return means the network path failed; a non-2xx status is
// returned as a normal response for the strategies to interpret.
func (u *Upstream) Forward(ctx context.Context, method, url string, headers []domain.Header, body []byte) (*domain.Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.resolve(url), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for _, h := range headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &domain.Response{
		Status:  resp.StatusCode,
		Headers: domain.HeadersFrom(resp.Header),
		Body:    respBody,
	}, nil
}

// Replay re-issues a queued mutation. Success requires a 2xx status so a
// rejected mutation stays queued rather than being silently dropped.
func (u *Upstream) Replay(ctx context.Context, qr domain.QueuedRequest) (*domain.Response, error) {
	resp, err := u.Forward(ctx, qr.Method, qr.URL, qr.Headers, []byte(qr.Body))
	if err != nil {
		return nil, err
	}
	if resp.Status/100 != 2 {
		return nil, fmt.Errorf("replay %s: server returned %d", qr.URL, resp.Status)
	}
	return resp, nil
}

func (u *Upstream) resolve(url string) string {
	if strings.HasPrefix(url, "/") {
		return u.baseURL + url
	}
	return url
}
