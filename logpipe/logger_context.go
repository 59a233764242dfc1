package logpipe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-task-pool/core"
)

// LoggerContext owns a record queue, an ordered hook list and the drain
// that connects them. Construct one at process start and pass it to every
// call site.
//
// Every Log call pushes a record and triggers a drain, so no external flush
// loop is needed. Drains are serialised: each takes a snapshot of the queue
// and delivers it in FIFO order, so records from one goroutine reach every
// hook in the order they were logged.
type LoggerContext struct {
	hooksMu sync.RWMutex
	hooks   []namedHook

	poolMu sync.RWMutex
	pool   Dispatcher

	queueMu sync.Mutex
	queue   *core.Queue[Record]

	drainMu sync.Mutex

	mask   Level
	sinks  []sink
	errOut io.Writer
	now    func() time.Time
	closed atomic.Bool

	enqueued     atomic.Uint64
	delivered    atomic.Uint64
	dropped      atomic.Uint64
	rejected     atomic.Uint64
	hookFailures atomic.Uint64
	formatErrors atomic.Uint64
}

type namedHook struct {
	name string
	fn   Hook
}

// PipelineStats is a point-in-time snapshot of a LoggerContext.
type PipelineStats struct {
	Queued       int
	Enqueued     uint64
	Delivered    uint64
	Dropped      uint64
	Rejected     uint64
	HookFailures uint64
	FormatErrors uint64
	Hooks        int
}

// New builds a LoggerContext and registers the built-in hooks selected by
// opts, in this order: stdout, strip-control (always), latest file, unique file.
func New(opts Options) (*LoggerContext, error) {
	c := newContext(opts)

	if opts.LogToStdout {
		c.RegisterHook(HookStdout, StdoutHook(opts.Stdout, opts.Color))
	}
	c.RegisterHook(HookStrip, StripControlHook())

	if opts.LogToLatestLog || opts.LogToUniqueFile {
		dir := opts.LogDir
		if dir == "" {
			dir = DefaultLogDir
		}
		if err := ensureLogDir(dir); err != nil {
			return nil, err
		}
		if opts.LogToLatestLog {
			lf, err := openLatestFile(dir)
			if err != nil {
				return nil, err
			}
			c.addSink(HookLatestFile, lf)
		}
		if opts.LogToUniqueFile {
			uf, err := openUniqueFile(dir, c.now())
			if err != nil {
				_ = c.closeSinks()
				return nil, err
			}
			c.addSink(HookUniqueFile, uf)
		}
	}
	return c, nil
}

// NewBare builds a LoggerContext with no hooks registered.
func NewBare(opts Options) *LoggerContext {
	return newContext(opts)
}

func newContext(opts Options) *LoggerContext {
	errOut := opts.ErrorOutput
	if errOut == nil {
		errOut = os.Stderr
	}
	mask := opts.Mask
	if mask == 0 {
		mask = LevelAll
	}
	return &LoggerContext{
		mask:   mask,
		pool:   opts.Pool,
		queue:  core.NewQueue[Record](opts.QueueCapacity, opts.Overflow),
		errOut: errOut,
		now:    time.Now,
	}
}

func (c *LoggerContext) addSink(name string, s sink) {
	c.sinks = append(c.sinks, s)
	c.RegisterHook(name, s.Hook())
}

// RegisterHook appends h; hooks run in registration order.
func (c *LoggerContext) RegisterHook(name string, h Hook) {
	if h == nil {
		return
	}
	c.hooksMu.Lock()
	c.hooks = append(c.hooks, namedHook{name: name, fn: h})
	c.hooksMu.Unlock()
}

// UnregisterHook removes the first hook registered under name.
func (c *LoggerContext) UnregisterHook(name string) bool {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	for i, h := range c.hooks {
		if h.name == name {
			c.hooks = append(c.hooks[:i:i], c.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Hooks returns registered hook names in invocation order.
func (c *LoggerContext) Hooks() []string {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	names := make([]string, len(c.hooks))
	for i, h := range c.hooks {
		names[i] = h.name
	}
	return names
}

func (c *LoggerContext) snapshotHooks() []namedHook {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return append([]namedHook(nil), c.hooks...)
}

// SetPool switches dispatch mode. Nil makes drains synchronous.
func (c *LoggerContext) SetPool(d Dispatcher) {
	c.poolMu.Lock()
	c.pool = d
	c.poolMu.Unlock()
}

// Pool returns the current dispatcher, or nil.
func (c *LoggerContext) Pool() Dispatcher {
	c.poolMu.RLock()
	defer c.poolMu.RUnlock()
	return c.pool
}

// LatestLogPath returns the latest.log path, or "" when that hook is off.
func (c *LoggerContext) LatestLogPath() string {
	return c.sinkPath(func(s sink) bool { _, ok := s.(*latestFile); return ok })
}

// UniqueLogPath returns this context's unique log file, or "" when that hook is off.
func (c *LoggerContext) UniqueLogPath() string {
	return c.sinkPath(func(s sink) bool { _, ok := s.(*uniqueFile); return ok })
}

func (c *LoggerContext) sinkPath(match func(sink) bool) string {
	for _, s := range c.sinks {
		if match(s) {
			return s.Path()
		}
	}
	return ""
}

// Log records a message from file:line and triggers a drain. A malformed
// template does not fail the call; the body carries a marked error instead.
func (c *LoggerContext) Log(level Level, file string, line int, template string, args ...any) {
	if !Enabled || c == nil || c.closed.Load() || !c.mask.Has(level) {
		return
	}
	msg, ok := formatMessage(template, args)
	if !ok {
		c.formatErrors.Add(1)
	}
	c.record(level, file, line, msg)
}

// record pushes an already formatted message.
func (c *LoggerContext) record(level Level, file string, line int, msg string) {
	if !c.mask.Has(level) {
		return
	}
	rec := Record{
		Level:   level,
		Time:    c.now(),
		File:    file,
		Line:    line,
		Message: msg,
	}
	if !c.push(rec) {
		return
	}
	c.dispatch()
}

func (c *LoggerContext) push(rec Record) bool {
	for {
		c.queueMu.Lock()
		if c.queue.Policy() != core.OverflowBlock || !c.queue.Full() {
			break
		}
		c.queueMu.Unlock()
		// The producer pays for its own backpressure.
		c.drainAll()
	}
	_, dropped, err := c.queue.Push(rec)
	c.queueMu.Unlock()

	if err != nil {
		c.rejected.Add(1)
		return false
	}
	if dropped {
		c.dropped.Add(1)
	}
	c.enqueued.Add(1)
	return true
}

func (c *LoggerContext) dispatch() {
	if pool := c.Pool(); pool != nil && pool.IsRunning() {
		// TrySubmit never waits: a worker logging on its own full pool
		// drains inline instead of parking on queue space.
		if h, ok := pool.TrySubmit(c.drainTask); ok && h.Err() == nil {
			return
		}
		// Refused by the pool; drain here instead.
	}
	c.Drain()
}

func (c *LoggerContext) drainTask() {
	c.Drain()
}

// Drain is a drain attempt. If another drain is in progress it returns at
// once and that drain delivers the new records; otherwise it delivers
// snapshot batches until the queue is empty. It returns the number of
// records delivered by this call.
func (c *LoggerContext) Drain() int {
	total := 0
	for {
		if !c.drainMu.TryLock() {
			return total
		}
		total += c.drainBatch()
		c.drainMu.Unlock()

		// A producer that lost TryLock while we held drainMu pushed before
		// we unlocked, so its record is visible here.
		if c.QueueLen() == 0 {
			return total
		}
	}
}

// ErrContextClosed is returned by Flush after Close.
var ErrContextClosed = errors.New("logpipe: context closed")

// Flush waits for any in-progress drain, delivers everything queued, and
// flushes file hooks. It must not be called from inside a hook.
func (c *LoggerContext) Flush() error {
	if c.closed.Load() {
		return ErrContextClosed
	}
	return c.flush()
}

func (c *LoggerContext) flush() error {
	c.drainAll()

	var errs []error
	for _, s := range c.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// drainAllIdle runs when drainAll finds the queue empty, drainMu still held.
// Tests swap it.
var drainAllIdle = func() {}

// drainAll blocks on drainMu and delivers until the queue is empty.
func (c *LoggerContext) drainAll() int {
	c.drainMu.Lock()
	total := 0
	for {
		n := c.drainBatch()
		if n == 0 {
			break
		}
		total += n
	}
	drainAllIdle()
	c.drainMu.Unlock()

	// A producer whose Drain lost TryLock after the last batch left its
	// record to us.
	if c.QueueLen() > 0 {
		total += c.Drain()
	}
	return total
}

// drainBatch delivers one snapshot of the queue. Caller holds drainMu.
func (c *LoggerContext) drainBatch() int {
	c.queueMu.Lock()
	batch := c.queue.DrainAll()
	c.queueMu.Unlock()
	if len(batch) == 0 {
		return 0
	}

	hooks := c.snapshotHooks()
	for _, rec := range batch {
		line := rec.Render()
		for _, h := range hooks {
			c.invoke(h, rec, &line)
		}
		c.delivered.Add(1)
	}
	return len(batch)
}

// invoke isolates hook panics: the failure is counted and reported, and the
// remaining hooks and records are still delivered.
func (c *LoggerContext) invoke(h namedHook, rec Record, line *string) {
	defer func() {
		if r := recover(); r != nil {
			c.hookFailures.Add(1)
			fmt.Fprintf(c.errOut, "logpipe: hook %q panicked on %s:%d: %v\n", h.name, rec.File, rec.Line, r)
		}
	}()
	h.fn(rec, line)
}

// QueueLen returns the number of records waiting for a drain.
func (c *LoggerContext) QueueLen() int {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.queue.Len()
}

// Stats returns a snapshot of the pipeline counters.
func (c *LoggerContext) Stats() PipelineStats {
	c.hooksMu.RLock()
	hooks := len(c.hooks)
	c.hooksMu.RUnlock()
	return PipelineStats{
		Queued:       c.QueueLen(),
		Enqueued:     c.enqueued.Load(),
		Delivered:    c.delivered.Load(),
		Dropped:      c.dropped.Load(),
		Rejected:     c.rejected.Load(),
		HookFailures: c.hookFailures.Load(),
		FormatErrors: c.formatErrors.Load(),
		Hooks:        hooks,
	}
}

// Close flushes pending records and closes file hooks. Later Log calls are ignored.
func (c *LoggerContext) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	flushErr := c.flush()
	return errors.Join(flushErr, c.closeSinks())
}

func (c *LoggerContext) closeSinks() error {
	var errs []error
	for _, s := range c.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *LoggerContext) logCaller(skip int, level Level, template string, args []any) {
	if !Enabled || c == nil {
		return
	}
	file, line := caller(skip + 1)
	c.Log(level, file, line, template, args...)
}

func caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???", 0
	}
	return filepath.Base(file), line
}

func (c *LoggerContext) Trace(template string, args ...any) {
	c.logCaller(1, LevelTrace, template, args)
}

func (c *LoggerContext) Debug(template string, args ...any) {
	c.logCaller(1, LevelDebug, template, args)
}

func (c *LoggerContext) Info(template string, args ...any) {
	c.logCaller(1, LevelInfo, template, args)
}

func (c *LoggerContext) Warn(template string, args ...any) {
	c.logCaller(1, LevelWarn, template, args)
}

func (c *LoggerContext) Error(template string, args ...any) {
	c.logCaller(1, LevelError, template, args)
}

// Fatal records at LevelFatal. It does not exit the process.
func (c *LoggerContext) Fatal(template string, args ...any) {
	c.logCaller(1, LevelFatal, template, args)
}
