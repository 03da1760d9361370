package ports

import "github.com/arcbank/offlinegate/pkg/log"

// Logger re-exports the logging abstraction so internal packages only
// depend on ports.
type Logger = log.Logger

// Field is a structured logging key-value pair.
type Field = log.Field

// Field constructors, re-exported for convenience.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
