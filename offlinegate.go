// Package offlinegate provides the offline-resilience gateway that sits
// between a banking web client and its remote API server.
//
// The gateway intercepts every outgoing GET/POST from the hosting pages,
// serves cached responses under connectivity loss, durably queues mutations
// that fail due to connectivity, and replays them once the network returns.
//
// Example usage:
//
//	cfg := offlinegate.DefaultConfig()
//	cfg.UpstreamURL = "https://api.arcbank.example"
//	cfg.DataDir = "/var/lib/offlinegate"
//	g, err := offlinegate.New(cfg, offlinegate.WithLogger(log.NewZerologAdapter()))
//	if err != nil {
//	    // handle
//	}
//	if err := g.Start(context.Background()); err != nil {
//	    // handle
//	}
//	defer g.Stop()
package offlinegate

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/arcbank/offlinegate/internal/adapters/bolt"
	"github.com/arcbank/offlinegate/internal/adapters/httpx"
	"github.com/arcbank/offlinegate/internal/app"
	"github.com/arcbank/offlinegate/internal/bridge"
	"github.com/arcbank/offlinegate/internal/cliconfig"
	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
	"github.com/arcbank/offlinegate/internal/server"
	"github.com/arcbank/offlinegate/pkg/log"
)

// Config holds the configuration for the gateway.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Logger is the structured logging interface the gateway logs through.
type Logger = log.Logger

// State represents the lifecycle state of the gateway.
type State = app.State

// Lifecycle states.
const (
	StateStopped    = app.StateStopped
	StateActivating = app.StateActivating
	StateRunning    = app.StateRunning
	StateStopping   = app.StateStopping
	StateCrashed    = app.StateCrashed
)

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set UpstreamURL before calling Start.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

const dbFileName = "offlinegate.db"

// Gate is the embeddable gateway instance.
// Use New() to create one, then Start() to begin intercepting.
type Gate struct {
	config Config
	opts   options
	logger ports.Logger

	lifecycle  *app.Lifecycle
	db         *bolt.DB
	cache      *bolt.CacheStore
	queue      *bolt.QueueStore
	dispatcher *app.Dispatcher
	coord      *app.Coordinator
	scheduler  *app.Scheduler
	hub        *bridge.Hub
	watcher    *cliconfig.Watcher
	httpServer *http.Server
	listener   net.Listener

	mu            sync.Mutex
	activeVersion string
	stagedVersion string
	cancel        context.CancelFunc
}

// New creates a new Gate with the given configuration.
// The instance is created in StateStopped; call Start() to begin serving.
func New(cfg Config, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	o := defaultOptions(&http.Client{Timeout: cfg.HTTPTimeout})
	for _, opt := range opts {
		opt(&o)
	}

	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = log.NewNoopLogger()
	}

	return &Gate{
		config:        cfg,
		opts:          o,
		logger:        logger,
		lifecycle:     app.NewLifecycle(logger),
		activeVersion: cfg.CacheVersion,
	}, nil
}

// Start activates the gateway and begins intercepting.
//
// Activation opens the stores, ensures the partitions for the configured
// cache version, and evicts every stale partition from prior versions.
// Only after eviction completes is the listener bound: no request is ever
// served from a half-evicted store.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := g.lifecycle.TransitionTo(app.StateActivating, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.lifecycle.SetCancel(cancel)

	if err := g.activate(runCtx); err != nil {
		cancel()
		_ = g.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	// Listener binds only after activation: the barrier.
	listener, err := net.Listen("tcp", g.config.ListenAddr)
	if err != nil {
		cancel()
		g.closeStores()
		_ = g.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return fmt.Errorf("listen %s: %w", g.config.ListenAddr, err)
	}
	g.listener = listener

	srv := server.New(g.dispatcher, g.coord, g.hub, g.cache, g.upstreamAdapter(), g.ActivateStaged, g.logger)
	g.httpServer = &http.Server{Handler: srv.Routes()}

	g.lifecycle.AddWorker()
	go func() {
		defer g.lifecycle.WorkerDone()
		if serr := g.httpServer.Serve(listener); serr != nil && serr != http.ErrServerClosed {
			g.logger.Error("serve failed", ports.Err(serr))
			_ = g.lifecycle.TransitionTo(app.StateCrashed, serr.Error())
		}
	}()

	g.lifecycle.AddWorker()
	go func() {
		defer g.lifecycle.WorkerDone()
		_ = g.coord.Run(runCtx)
	}()

	if err := g.scheduler.Start(); err != nil {
		g.logger.Error("scheduler start failed", ports.Err(err))
	}

	if g.config.WatchConfig && g.opts.configPath != "" {
		g.watcher = cliconfig.NewWatcher(g.opts.configPath, g.applyFileConfig, g.logger)
		_ = g.watcher.Start(runCtx)
	}

	return g.lifecycle.TransitionTo(app.StateRunning, "activation complete")
}

// activate opens the stores and runs partition lifecycle for the active
// cache version. Called with g.mu held.
func (g *Gate) activate(ctx context.Context) error {
	db, err := bolt.Open(filepath.Join(g.config.DataDir, dbFileName))
	if err != nil {
		return err
	}
	g.db = db
	g.cache = bolt.NewCacheStore(db)

	queue, err := bolt.NewQueueStore(db)
	if err != nil {
		g.closeStores()
		return err
	}
	g.queue = queue

	parts := app.PartitionsFor(g.activeVersion)
	if err := g.ensureAndEvict(ctx, parts); err != nil {
		g.closeStores()
		return err
	}

	upstream := g.upstreamAdapter()
	g.hub = bridge.NewHub(g.logger)
	g.coord = app.NewCoordinator(g.queue, upstream, g.hub, g.logger)
	g.dispatcher = app.NewDispatcher(
		g.cache, g.queue, upstream,
		g.config.RouteTable(), parts,
		g.coord.Trigger, g.logger,
	)
	g.scheduler = app.NewScheduler(g.config.SyncSchedule, g.coord, g.queue, g.logger)
	return nil
}

func (g *Gate) ensureAndEvict(ctx context.Context, parts app.Partitions) error {
	for _, name := range parts.Names() {
		if err := g.cache.EnsurePartition(ctx, name); err != nil {
			return err
		}
	}
	evicted, err := g.cache.EvictNotIn(ctx, parts.Names())
	if err != nil {
		return err
	}
	for _, name := range evicted {
		g.logger.Info("evicted stale partition", ports.String("partition", name))
	}
	return nil
}

func (g *Gate) upstreamAdapter() *httpx.Upstream {
	return httpx.NewUpstream(g.opts.httpClient, g.config.UpstreamURL, g.logger)
}

// Stop gracefully shuts down the gateway.
// Waits up to 30 seconds before forcing shutdown.
func (g *Gate) Stop() error {
	g.mu.Lock()
	if !g.lifecycle.CanStop() {
		g.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := g.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		g.mu.Unlock()
		return err
	}

	if g.watcher != nil {
		g.watcher.Stop()
	}
	if g.scheduler != nil {
		g.scheduler.Stop()
	}
	if g.cancel != nil {
		g.cancel()
	}

	httpServer := g.httpServer
	g.mu.Unlock()

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}

	err := g.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	g.mu.Lock()
	g.closeStores()
	g.mu.Unlock()

	if err != nil {
		_ = g.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = g.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

func (g *Gate) closeStores() {
	if g.db != nil {
		if err := g.db.Close(); err != nil {
			g.logger.Error("close store failed", ports.Err(err))
		}
		g.db = nil
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (g *Gate) Status() State {
	return g.lifecycle.State()
}

// Addr returns the bound listen address, useful when configured with ":0".
func (g *Gate) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// TriggerSync requests a queue replay pass, equivalent to the platform
// signaling that connectivity is plausibly restored.
func (g *Gate) TriggerSync() {
	g.mu.Lock()
	coord := g.coord
	g.mu.Unlock()
	if coord != nil {
		coord.Trigger()
	}
}

// StageVersion records a new cache version to be applied at the next
// restart, or immediately via ActivateStaged (the SKIP_WAITING message).
func (g *Gate) StageVersion(version string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if version == "" || version == g.activeVersion {
		return
	}
	g.stagedVersion = version
	g.logger.Info("cache version staged", ports.String("version", version))
}

// ActivateStaged applies the staged cache version now: it ensures the new
// partitions, evicts everything else, and swaps the dispatcher over.
// Returns an error when no version is waiting.
func (g *Gate) ActivateStaged() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stagedVersion == "" {
		return fmt.Errorf("no staged version waiting")
	}

	parts := app.PartitionsFor(g.stagedVersion)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.ensureAndEvict(ctx, parts); err != nil {
		return err
	}

	g.dispatcher.SetPartitions(parts)
	g.activeVersion = g.stagedVersion
	g.stagedVersion = ""
	g.logger.Info("cache version activated", ports.String("version", g.activeVersion))
	return nil
}

// applyFileConfig handles a config hot reload: route tables swap in place,
// and a changed cache version is staged for skip-waiting activation.
func (g *Gate) applyFileConfig(fc cliconfig.FileConfig) {
	g.mu.Lock()
	cfg := g.config
	g.mu.Unlock()

	if err := cliconfig.ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		g.logger.Warn("config reload rejected", ports.Err(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		g.logger.Warn("config reload rejected", ports.Err(err))
		return
	}

	g.mu.Lock()
	g.config.StaticPrefix = cfg.StaticPrefix
	g.config.APIPrefix = cfg.APIPrefix
	g.config.AuthPrefixes = cfg.AuthPrefixes
	g.config.CacheableRoutes = cfg.CacheableRoutes
	g.config.SessionCheckPath = cfg.SessionCheckPath
	g.config.OfflinePagePath = cfg.OfflinePagePath
	dispatcher := g.dispatcher
	routes := g.config.RouteTable()
	g.mu.Unlock()

	if dispatcher != nil {
		dispatcher.SetRoutes(routes)
	}
	g.StageVersion(cfg.CacheVersion)
}
