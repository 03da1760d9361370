// Package log defines the structured logging abstraction used throughout
// offlinegate.
//
// The gateway core logs through the [Logger] interface so embedders can plug
// in their own logging backend. Two implementations ship with the module:
//
//   - [ZerologAdapter]: production logging via rs/zerolog
//   - [NoopLogger]: discards everything; the default for library embedding
//
// Fields are built with the helper constructors ([String], [Int64], [Err],
// ...) to keep call sites free of backend-specific types.
package log
