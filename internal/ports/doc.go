// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// gateway needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [CacheStore]: Named cache partitions with version-based eviction
//   - [QueueStore]: Durable storage for queued mutations
//   - [Upstream]: Forwards requests to the remote API server
//   - [Notifier]: Broadcasts sync notices to subscribed pages
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (bbolt, HTTP, zerolog, etc.).
//
// This separation enables:
//   - Testing strategy and replay logic with fake stores and upstreams
//   - Swapping infrastructure without changing the dispatch rules
//   - Clear boundaries and dependency direction
package ports
