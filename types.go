package taskpool

import (
	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
)

// Re-export commonly used types from the core and logpipe packages for convenience.
// This allows users to import only the taskpool package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// Handle is the submitter's side of a task's completion
type Handle = core.Handle

// WorkerPool runs tasks on a resizable set of worker goroutines
type WorkerPool = core.WorkerPool

// PoolConfig holds optional WorkerPool settings
type PoolConfig = core.PoolConfig

// PoolStats is a point-in-time WorkerPool snapshot
type PoolStats = core.PoolStats

// PanicError carries a panic recovered from a task
type PanicError = core.PanicError

// LoggerContext is an explicit log pipeline instance
type LoggerContext = logpipe.LoggerContext

// LogOptions selects built-in hooks and dispatch mode
type LogOptions = logpipe.Options

// Record is a single log message
type Record = logpipe.Record

// Level is a log severity bit
type Level = logpipe.Level

// Hook observes records during a drain
type Hook = logpipe.Hook

// Overflow policy constants
const (
	OverflowBlock      = core.OverflowBlock
	OverflowDropOldest = core.OverflowDropOldest
	OverflowReject     = core.OverflowReject
)

// Level constants
const (
	LevelTrace = logpipe.LevelTrace
	LevelDebug = logpipe.LevelDebug
	LevelInfo  = logpipe.LevelInfo
	LevelWarn  = logpipe.LevelWarn
	LevelError = logpipe.LevelError
	LevelFatal = logpipe.LevelFatal
	LevelAll   = logpipe.LevelAll
)

// Sentinel errors surfaced on handles
var (
	ErrTaskAbandoned = core.ErrTaskAbandoned
	ErrTaskDropped   = core.ErrTaskDropped
	ErrQueueFull     = core.ErrQueueFull
)

// DefaultLogOptions returns stdout-only synchronous logging options
var DefaultLogOptions = logpipe.DefaultOptions
