// Package domain contains the core entities and value objects for offlinegate.
//
// This package represents the innermost layer of the gateway. It has no
// dependencies on infrastructure concerns (HTTP, bbolt, logging) and contains
// only the data shapes and classification rules the rest of the system is
// built around.
//
// # Entities
//
//   - [QueuedRequest]: A snapshot of a failed mutation awaiting replay
//   - [Response]: A fully-read HTTP response, cacheable and cloneable
//   - [RouteTable]: Path-prefix tables driving request classification
//   - [SyncOutcome]: The per-item result of one replayed queue entry
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
