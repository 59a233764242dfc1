package logpipe

import (
	"io"

	"github.com/Swind/go-task-pool/core"
)

// DefaultLogDir is used when file hooks are enabled without a directory.
const DefaultLogDir = "logs"

// Dispatcher runs drain tasks off the logging goroutine. *core.WorkerPool
// satisfies it. TrySubmit must not block; ok == false means the task was
// not queued.
type Dispatcher interface {
	TrySubmit(task core.Task) (*core.Handle, bool)
	IsRunning() bool
}

// Options selects the built-in hooks and the dispatch mode.
type Options struct {
	// LogToStdout registers StdoutHook first.
	LogToStdout bool

	// LogToLatestLog appends to <LogDir>/latest.log without forcing a flush per line.
	LogToLatestLog bool

	// LogToUniqueFile writes to a timestamp-named file created for this context.
	LogToUniqueFile bool

	// LogDir holds the file hooks' output. Created when a file hook is enabled.
	LogDir string

	// Pool, when set and running, receives drain tasks. Nil drains synchronously.
	Pool Dispatcher

	// QueueCapacity bounds the record queue; 0 keeps it unbounded.
	QueueCapacity int

	// Overflow applies when QueueCapacity is reached. OverflowBlock makes the
	// producer drain inline until there is space.
	Overflow core.OverflowPolicy

	// Mask selects the levels that are recorded at all. Zero means LevelAll.
	Mask Level

	// Color controls ANSI sequences on the stdout hook.
	Color ColorMode

	// Stdout is the stdout hook's writer. Defaults to os.Stdout.
	Stdout io.Writer

	// ErrorOutput receives hook failure reports. Defaults to os.Stderr.
	ErrorOutput io.Writer
}

// DefaultOptions mirrors the stock configuration: stdout only, synchronous.
func DefaultOptions() Options {
	return Options{
		LogToStdout: true,
		LogDir:      DefaultLogDir,
	}
}
