package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/arcbank/offlinegate/internal/domain"
)

var errNetworkDown = errors.New("dial tcp: connection refused")

// fakeCache is an in-memory ports.CacheStore.
type fakeCache struct {
	mu    sync.Mutex
	parts map[string]map[string]*domain.Response
}

func newFakeCache() *fakeCache {
	return &fakeCache{parts: make(map[string]map[string]*domain.Response)}
}

func (c *fakeCache) EnsurePartition(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.parts[name]; !ok {
		c.parts[name] = make(map[string]*domain.Response)
	}
	return nil
}

func (c *fakeCache) EvictNotIn(ctx context.Context, keep []string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	var evicted []string
	for name := range c.parts {
		if !keepSet[name] {
			delete(c.parts, name)
			evicted = append(evicted, name)
		}
	}
	return evicted, nil
}

func (c *fakeCache) Put(ctx context.Context, partition, key string, resp *domain.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parts[partition]
	if !ok {
		return fmt.Errorf("partition %s is missing", partition)
	}
	p[key] = resp
	return nil
}

func (c *fakeCache) Match(ctx context.Context, partition, key string) (*domain.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parts[partition]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	resp, ok := p[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return resp.Clone(), nil
}

func (c *fakeCache) MatchAny(ctx context.Context, key string) (*domain.Response, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, p := range c.parts {
		if resp, ok := p[key]; ok {
			return resp.Clone(), name, nil
		}
	}
	return nil, "", domain.ErrCacheMiss
}

func (c *fakeCache) Partitions(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for name := range c.parts {
		names = append(names, name)
	}
	return names, nil
}

func (c *fakeCache) Count(ctx context.Context, partition string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parts[partition]
	if !ok {
		return 0, fmt.Errorf("partition %s is missing", partition)
	}
	return len(p), nil
}

// fakeQueue is an in-memory ports.QueueStore with last-write-wins keys.
type fakeQueue struct {
	mu      sync.Mutex
	entries []domain.QueuedRequest
	failPut bool
}

func (q *fakeQueue) Enqueue(ctx context.Context, req domain.QueuedRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failPut {
		return errors.New("store unavailable")
	}
	for i, e := range q.entries {
		if e.Timestamp == req.Timestamp {
			q.entries[i] = req
			return nil
		}
	}
	q.entries = append(q.entries, req)
	return nil
}

func (q *fakeQueue) ListAll(ctx context.Context) ([]domain.QueuedRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.QueuedRequest(nil), q.entries...), nil
}

func (q *fakeQueue) Remove(ctx context.Context, key int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.Timestamp == key {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *fakeQueue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	return nil
}

// fakeUpstream is an in-memory ports.Upstream whose connectivity can be
// toggled per test.
type fakeUpstream struct {
	mu        sync.Mutex
	down      bool
	responses map[string]*domain.Response
	calls     []string
	failURLs  map[string]bool
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		responses: make(map[string]*domain.Response),
		failURLs:  make(map[string]bool),
	}
}

func (u *fakeUpstream) setDown(down bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.down = down
}

func (u *fakeUpstream) respond(method, url string, resp *domain.Response) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.responses[method+" "+url] = resp
}

func (u *fakeUpstream) callCount(method, url string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.calls {
		if c == method+" "+url {
			n++
		}
	}
	return n
}

func (u *fakeUpstream) Forward(ctx context.Context, method, url string, headers []domain.Header, body []byte) (*domain.Response, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, method+" "+url)
	if u.down || u.failURLs[url] {
		return nil, errNetworkDown
	}
	if resp, ok := u.responses[method+" "+url]; ok {
		return resp.Clone(), nil
	}
	return &domain.Response{Status: http.StatusOK, Body: []byte("ok")}, nil
}

func (u *fakeUpstream) Replay(ctx context.Context, qr domain.QueuedRequest) (*domain.Response, error) {
	resp, err := u.Forward(ctx, qr.Method, qr.URL, qr.Headers, []byte(qr.Body))
	if err != nil {
		return nil, err
	}
	if resp.Status/100 != 2 {
		return nil, fmt.Errorf("replay %s: server returned %d", qr.URL, resp.Status)
	}
	return resp, nil
}

// fakeNotifier records broadcast notices.
type fakeNotifier struct {
	mu      sync.Mutex
	notices []domain.SyncNotice
}

func (n *fakeNotifier) Broadcast(notice domain.SyncNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) all() []domain.SyncNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.SyncNotice(nil), n.notices...)
}
