package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
)

// Dispatcher classifies every intercepted request and executes exactly one
// caching strategy for it.
//
// GET requests are routed by path: STATIC is cache-first, API is
// network-first with cache fallback, AUTH_REQUIRED is network-first with
// redirect fallback, GENERAL is stale-while-revalidate. POST is the mutation
// path: failures are snapshotted into the durable queue and acknowledged
// with a queued-ack payload. Other methods never reach the dispatcher.
type Dispatcher struct {
	cache    ports.CacheStore
	queue    ports.QueueStore
	upstream ports.Upstream
	logger   ports.Logger

	routes atomic.Pointer[domain.RouteTable]
	parts  atomic.Pointer[Partitions]

	// requestSync asks the sync coordinator for a background replay pass
	// after a mutation is queued.
	requestSync func()

	// now is injectable so tests control timestamp keys.
	now func() time.Time

	// revalidations tracks detached stale-while-revalidate refreshes.
	revalidations sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given stores and upstream.
func NewDispatcher(
	cache ports.CacheStore,
	queue ports.QueueStore,
	upstream ports.Upstream,
	routes *domain.RouteTable,
	parts Partitions,
	requestSync func(),
	logger ports.Logger,
) *Dispatcher {
	d := &Dispatcher{
		cache:       cache,
		queue:       queue,
		upstream:    upstream,
		requestSync: requestSync,
		logger:      logger,
		now:         time.Now,
	}
	d.routes.Store(routes)
	d.parts.Store(&parts)
	return d
}

// SetRoutes swaps in a new route table. Safe during serving; in-flight
// requests keep the table they started with.
func (d *Dispatcher) SetRoutes(t *domain.RouteTable) {
	d.routes.Store(t)
}

// Routes returns the current route table.
func (d *Dispatcher) Routes() *domain.RouteTable {
	return d.routes.Load()
}

// SetPartitions swaps in the partition set of a newly activated version.
func (d *Dispatcher) SetPartitions(p Partitions) {
	d.parts.Store(&p)
}

// Partitions returns the active partition set.
func (d *Dispatcher) Partitions() Partitions {
	return *d.parts.Load()
}

// WaitRevalidations blocks until all detached refreshes finish. Test hook.
func (d *Dispatcher) WaitRevalidations() {
	d.revalidations.Wait()
}

// Handle runs exactly one strategy for the intercepted request and returns
// the response to relay. A nil response with an error means no fallback
// existed and the raw network error must surface to the caller.
func (d *Dispatcher) Handle(ctx context.Context, method, url, path string, headers []domain.Header, body []byte) (*domain.Response, error) {
	if method == http.MethodPost {
		return d.intakeMutation(ctx, url, headers, body)
	}

	routes := d.routes.Load()
	class := routes.Classify(path)
	d.logger.Debug("dispatch",
		ports.String("class", class.String()),
		ports.String("url", url),
	)

	switch class {
	case domain.ClassStatic:
		return d.serveStatic(ctx, url, headers)
	case domain.ClassAPI:
		return d.serveAPI(ctx, url, path, headers, routes)
	case domain.ClassAuthRequired:
		return d.serveAuthRequired(ctx, url, headers, routes)
	default:
		return d.serveGeneral(ctx, url, headers, routes)
	}
}

// serveStatic is cache-first: a hit returns immediately with no network
// call; a miss fetches and stores a clone on success. A fetch failure with
// no cache entry propagates.
func (d *Dispatcher) serveStatic(ctx context.Context, url string, headers []domain.Header) (*domain.Response, error) {
	parts := d.Partitions()

	cached, err := d.cache.Match(ctx, parts.Static, url)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		d.logger.Warn("static cache lookup failed", ports.Err(err))
	}

	live, err := d.upstream.Forward(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return nil, err
	}
	if live.Status/100 == 2 {
		if perr := d.cache.Put(ctx, parts.Static, url, live.Clone()); perr != nil {
			d.logger.Error("static cache store failed", ports.Err(perr))
		}
	}
	return live, nil
}

// serveAPI is network-first: a live success on an allow-listed route is
// cloned into the api partition. On network failure the api partition is
// consulted; a hit is returned flagged cache-sourced. The session-check
// endpoint degrades to a synthesized soft-offline response instead of a
// hard error.
func (d *Dispatcher) serveAPI(ctx context.Context, url, path string, headers []domain.Header, routes *domain.RouteTable) (*domain.Response, error) {
	parts := d.Partitions()

	live, err := d.upstream.Forward(ctx, http.MethodGet, url, headers, nil)
	if err == nil {
		if live.Status/100 == 2 && routes.Cacheable(path) {
			if perr := d.cache.Put(ctx, parts.API, url, live.Clone()); perr != nil {
				d.logger.Error("api cache store failed", ports.Err(perr))
			}
		}
		return live, nil
	}

	cached, merr := d.cache.Match(ctx, parts.API, url)
	if merr == nil {
		return cached.MarkCacheSourced(), nil
	}
	if routes.IsSessionCheck(path) {
		return softOfflineResponse(), nil
	}
	return nil, err
}

// serveAuthRequired is network-first with redirect fallback: on failure,
// session-check evidence in the api partition permits serving the exact
// page from the dynamic partition; otherwise the caller is redirected to
// the offline page.
func (d *Dispatcher) serveAuthRequired(ctx context.Context, url string, headers []domain.Header, routes *domain.RouteTable) (*domain.Response, error) {
	parts := d.Partitions()

	live, err := d.upstream.Forward(ctx, http.MethodGet, url, headers, nil)
	if err == nil {
		if live.Status/100 == 2 {
			if perr := d.cache.Put(ctx, parts.Dynamic, url, live.Clone()); perr != nil {
				d.logger.Error("dynamic cache store failed", ports.Err(perr))
			}
		}
		return live, nil
	}

	if _, serr := d.cache.Match(ctx, parts.API, routes.SessionCheckPath); serr == nil {
		if page, perr := d.cache.Match(ctx, parts.Dynamic, url); perr == nil {
			return page, nil
		}
	}
	return offlineRedirect(routes.OfflinePagePath), nil
}

// serveGeneral is stale-while-revalidate: a cached copy returns immediately
// and a detached refresh runs in the background; its failure is swallowed
// and the already-returned response is never retracted.
func (d *Dispatcher) serveGeneral(ctx context.Context, url string, headers []domain.Header, routes *domain.RouteTable) (*domain.Response, error) {
	parts := d.Partitions()

	cached, err := d.cache.Match(ctx, parts.Dynamic, url)
	if err == nil {
		d.spawnRevalidate(url, headers, parts)
		return cached, nil
	}

	live, ferr := d.upstream.Forward(ctx, http.MethodGet, url, headers, nil)
	if ferr == nil {
		if live.Status/100 == 2 {
			if perr := d.cache.Put(ctx, parts.Dynamic, url, live.Clone()); perr != nil {
				d.logger.Error("dynamic cache store failed", ports.Err(perr))
			}
		}
		return live, nil
	}

	if off, _, oerr := d.cache.MatchAny(ctx, routes.OfflinePagePath); oerr == nil {
		return off, nil
	}
	return unavailableResponse(), nil
}

// spawnRevalidate issues the background refresh for a stale-while-revalidate
// hit. It deliberately detaches from the request context: the caller already
// has its response and must not be able to cancel the refresh.
func (d *Dispatcher) spawnRevalidate(url string, headers []domain.Header, parts Partitions) {
	d.revalidations.Add(1)
	go func() {
		defer d.revalidations.Done()

		live, err := d.upstream.Forward(context.Background(), http.MethodGet, url, headers, nil)
		if err != nil || live.Status/100 != 2 {
			return
		}
		if perr := d.cache.Put(context.Background(), d.Partitions().Dynamic, url, live); perr != nil {
			d.logger.Error("revalidate store failed", ports.Err(perr))
		}
	}()
}

// intakeMutation attempts the POST immediately. On network failure the
// request is snapshotted (the body was already fully read), persisted, a
// background sync pass is requested, and the caller gets a queued-ack so
// the UI can tell "queued" apart from "permanently failed".
func (d *Dispatcher) intakeMutation(ctx context.Context, url string, headers []domain.Header, body []byte) (*domain.Response, error) {
	live, err := d.upstream.Forward(ctx, http.MethodPost, url, headers, body)
	if err == nil {
		return live, nil
	}

	snapshot := domain.QueuedRequest{
		Timestamp: d.now().UnixMilli(),
		URL:       url,
		Method:    http.MethodPost,
		Headers:   headers,
		Body:      string(body),
	}
	if qerr := d.queue.Enqueue(ctx, snapshot); qerr != nil {
		// Durable store failure: the mutation cannot be queued, so the
		// caller must see the hard failure.
		d.logger.Error("enqueue failed, mutation lost",
			ports.String("url", url),
			ports.Err(qerr),
		)
		return nil, err
	}

	d.logger.Info("mutation queued",
		ports.String("url", url),
		ports.Int64("timestamp", snapshot.Timestamp),
	)
	if d.requestSync != nil {
		d.requestSync()
	}
	return queuedAckResponse("request queued for replay when connectivity returns"), nil
}
