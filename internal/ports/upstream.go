package ports

import (
	"context"

	"github.com/arcbank/offlinegate/internal/domain"
)

// Upstream forwards intercepted requests to the remote API server and
// returns fully-read responses.
//
// A non-2xx status is still a response, not an error; an error return means
// the network path itself failed (connection refused, timeout, DNS). That
// distinction drives every fallback branch in the strategies.
type Upstream interface {
	// Forward issues the request and reads the whole response body.
	Forward(ctx context.Context, method, url string, headers []domain.Header, body []byte) (*domain.Response, error)

	// Replay re-issues a queued mutation. Success requires a 2xx status;
	// a non-2xx reply is reported as an error so the entry stays queued.
	Replay(ctx context.Context, req domain.QueuedRequest) (*domain.Response, error)
}
