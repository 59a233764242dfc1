package core

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// fallbackThreads is used when the platform leaves no core for workers.
	fallbackThreads = 8

	// signalBuffer bounds coalesced wake-ups; the queue itself is the source of truth.
	signalBuffer = 64

	// closeIdleWait is how long Close and MoveFrom wait for a running pool to go idle.
	closeIdleWait = time.Second
)

// warnings holds usage and abandonment messages raised under lifecycleMu.
// They are emitted after the lock is released so a Logger that drains hooks
// never runs under it.
type warnings []warning

type warning struct {
	msg    string
	fields []Field
}

func (w *warnings) add(msg string, fields ...Field) {
	*w = append(*w, warning{msg: msg, fields: fields})
}

func (w warnings) emit(l Logger) {
	for _, x := range w {
		l.Warn(x.msg, x.fields...)
	}
}

// hardwareConcurrency reports logical CPUs. Tests swap it.
var hardwareConcurrency = runtime.NumCPU

// DefaultThreadCount reserves one core for the caller and falls back to 8
// when the platform reports 0 or 1 logical cores.
func DefaultThreadCount() int {
	n := hardwareConcurrency() - 1
	if n <= 0 {
		return fallbackThreads
	}
	return n
}

// transferMu serialises MoveFrom so two pools' locks are never nested by
// two different movers at once.
var transferMu sync.Mutex

// WorkerPool owns a resizable set of worker goroutines consuming a single
// FIFO queue of tasks.
//
// The pool starts Stopped with zero workers. Tasks may be submitted in any
// state; while stopped they wait in the queue until Start.
type WorkerPool struct {
	name string
	cfg  atomic.Pointer[PoolConfig]

	// lifecycleMu serialises Start, Stop, PushThread, PopThread, Close and MoveFrom.
	// Submit never takes it.
	lifecycleMu sync.Mutex

	queueMu   sync.Mutex
	spaceCond *sync.Cond
	queue     *Queue[taskItem]
	running   atomic.Bool // written with queueMu held
	gen       uint64
	signal    chan struct{}

	workersMu sync.Mutex
	workers   []*worker
	stopCh    chan struct{}

	pendingMu  sync.Mutex
	unfinished int
	idleCh     chan struct{} // non-nil while unfinished > 0, closed when it drops to 0

	active atomic.Int32
}

// NewWorkerPool creates a stopped pool. cfg may be nil.
func NewWorkerPool(name string, cfg *PoolConfig) *WorkerPool {
	c := cfg.withDefaults()
	p := &WorkerPool{
		name:   name,
		queue:  NewQueue[taskItem](c.QueueCapacity, c.Overflow),
		signal: make(chan struct{}, signalBuffer),
	}
	p.cfg.Store(&c)
	p.spaceCond = sync.NewCond(&p.queueMu)
	return p
}

func (p *WorkerPool) config() *PoolConfig {
	return p.cfg.Load()
}

// SetLogger replaces the warning sink. Useful when the logger itself is built
// on top of this pool.
func (p *WorkerPool) SetLogger(l Logger) {
	if l == nil {
		l = NewNoOpLogger()
	}
	next := *p.config()
	next.Logger = l
	p.cfg.Store(&next)
}

// Name returns the pool name
func (p *WorkerPool) Name() string {
	return p.name
}

// Start spawns threads workers and marks the pool running. threads == 0
// picks DefaultThreadCount. Calling Start on a running pool only warns.
func (p *WorkerPool) Start(threads int) {
	var warns warnings
	p.lifecycleMu.Lock()
	p.startLocked(threads, &warns)
	p.lifecycleMu.Unlock()
	warns.emit(p.config().Logger)
}

func (p *WorkerPool) startLocked(threads int, warns *warnings) {
	cfg := p.config()
	if p.running.Load() {
		warns.add("WorkerPool.Start called while already running; ignoring", F("pool", p.name))
		return
	}
	if threads <= 0 {
		threads = DefaultThreadCount()
	}

	gen := p.openRun()

	p.workersMu.Lock()
	for i := 0; i < threads; i++ {
		p.spawnLocked(gen)
	}
	n := len(p.workers)
	p.workersMu.Unlock()

	cfg.Metrics.RecordWorkerCount(p.name, n)
}

// openRun flips the pool to running under a fresh generation and stop channel.
func (p *WorkerPool) openRun() uint64 {
	p.queueMu.Lock()
	p.gen++
	gen := p.gen
	p.running.Store(true)
	p.queueMu.Unlock()

	p.workersMu.Lock()
	p.stopCh = make(chan struct{})
	p.workersMu.Unlock()
	return gen
}

// spawnLocked starts one worker indexed after the current highest.
// Caller holds workersMu.
func (p *WorkerPool) spawnLocked(gen uint64) {
	index := 1
	if n := len(p.workers); n > 0 {
		index = p.workers[n-1].index + 1
	}
	w := newWorker(index, gen)
	p.workers = append(p.workers, w)
	go p.workerLoop(w, p.stopCh)
}

// Stop marks the pool stopped, discards every queued task with a single
// warning, and removes all workers. With block it waits for each worker to
// finish its current task; otherwise workers are detached.
func (p *WorkerPool) Stop(block bool) {
	var warns warnings
	p.lifecycleMu.Lock()
	p.stopLocked(block, true, &warns)
	p.lifecycleMu.Unlock()
	warns.emit(p.config().Logger)
}

func (p *WorkerPool) stopLocked(block, discard bool, warns *warnings) {
	cfg := p.config()
	if !p.running.Load() {
		warns.add("WorkerPool.Stop called while already stopped; ignoring", F("pool", p.name))
		return
	}

	p.queueMu.Lock()
	p.running.Store(false)
	p.gen++
	var abandoned []taskItem
	if discard {
		abandoned = p.queue.DrainAll()
	}
	p.spaceCond.Broadcast()
	p.queueMu.Unlock()

	p.workersMu.Lock()
	workers := p.workers
	p.workers = nil
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	p.workersMu.Unlock()

	if block {
		for _, w := range workers {
			<-w.done
		}
	}
	cfg.Metrics.RecordWorkerCount(p.name, 0)
	p.abandon(abandoned, warns)
}

// abandon resolves discarded tasks and reports them once.
func (p *WorkerPool) abandon(items []taskItem, warns *warnings) {
	n := len(items)
	if n == 0 {
		return
	}
	for _, item := range items {
		item.handle.resolve(ErrTaskAbandoned)
	}
	p.finishTasks(n)

	cfg := p.config()
	cfg.Metrics.RecordTaskRejected(p.name, "abandoned", n)
	cfg.Metrics.RecordQueueDepth(p.name, 0)
	warns.add("WorkerPool stopped with queued tasks; they will never be executed",
		F("pool", p.name), F("count", n))
}

// Submit enqueues task and wakes one idle worker. The returned handle
// resolves when the task has run or has been discarded.
func (p *WorkerPool) Submit(task Task) *Handle {
	if task == nil {
		return resolvedHandle(ErrNilTask)
	}
	h, _ := p.submit(func() error {
		task()
		return nil
	}, true)
	return h
}

// TrySubmit is Submit that never waits for queue space. When the queue is
// bounded and full it queues nothing and returns ok == false, whatever the
// overflow policy.
func (p *WorkerPool) TrySubmit(task Task) (h *Handle, ok bool) {
	if task == nil {
		return resolvedHandle(ErrNilTask), false
	}
	return p.submit(func() error {
		task()
		return nil
	}, false)
}

// SubmitFunc is Submit for work that reports an error; the error lands on the handle.
func (p *WorkerPool) SubmitFunc(fn func() error) *Handle {
	if fn == nil {
		return resolvedHandle(ErrNilTask)
	}
	h, _ := p.submit(fn, true)
	return h
}

// submit enqueues fn. Without wait a full queue refuses fn outright.
func (p *WorkerPool) submit(fn func() error, wait bool) (*Handle, bool) {
	cfg := p.config()
	item := taskItem{fn: fn, handle: newHandle()}

	// Count before enqueueing so a fast worker can never decrement first.
	p.addPending(1)

	p.queueMu.Lock()
	if !wait && p.queue.Full() {
		p.queueMu.Unlock()
		p.finishTasks(1)
		return nil, false
	}
	if p.queue.Policy() == OverflowBlock {
		for p.queue.Full() {
			p.spaceCond.Wait()
		}
	}
	evicted, dropped, err := p.queue.Push(item)
	depth := p.queue.Len()
	p.queueMu.Unlock()

	if err != nil {
		item.handle.resolve(err)
		p.finishTasks(1)
		cfg.Metrics.RecordTaskRejected(p.name, "queue_full", 1)
		return item.handle, true
	}
	if dropped {
		evicted.handle.resolve(ErrTaskDropped)
		p.finishTasks(1)
		cfg.Metrics.RecordTaskRejected(p.name, "dropped", 1)
	}

	cfg.Metrics.RecordQueueDepth(p.name, depth)
	p.wake()
	return item.handle, true
}

func (p *WorkerPool) wake() {
	select {
	case p.signal <- struct{}{}:
	default:
		// Buffer full: enough wake-ups are already pending.
	}
}

// PushThread adds one worker. On a stopped pool it warns and starts it.
func (p *WorkerPool) PushThread() {
	var warns warnings
	p.lifecycleMu.Lock()
	p.pushThreadLocked(&warns)
	p.lifecycleMu.Unlock()
	warns.emit(p.config().Logger)
}

func (p *WorkerPool) pushThreadLocked(warns *warnings) {
	cfg := p.config()
	if !p.running.Load() {
		warns.add("WorkerPool.PushThread called while stopped; starting the pool", F("pool", p.name))
		p.openRun()
	}

	p.queueMu.Lock()
	gen := p.gen
	p.queueMu.Unlock()

	p.workersMu.Lock()
	p.spawnLocked(gen)
	n := len(p.workers)
	p.workersMu.Unlock()

	cfg.Metrics.RecordWorkerCount(p.name, n)
}

// PopThread removes the highest-indexed worker through its own quit channel.
// Removing the last worker stops the pool; queued tasks stay queued for a
// later Start.
func (p *WorkerPool) PopThread(block bool) {
	var warns warnings
	p.lifecycleMu.Lock()
	p.popThreadLocked(block, &warns)
	p.lifecycleMu.Unlock()
	warns.emit(p.config().Logger)
}

func (p *WorkerPool) popThreadLocked(block bool, warns *warnings) {
	cfg := p.config()
	if !p.running.Load() {
		warns.add("WorkerPool.PopThread called while stopped; ignoring", F("pool", p.name))
		return
	}

	p.workersMu.Lock()
	n := len(p.workers)
	if n == 0 {
		p.workersMu.Unlock()
		warns.add("WorkerPool.PopThread called with no workers; ignoring", F("pool", p.name))
		return
	}
	w := p.workers[n-1]
	p.workers[n-1] = nil
	p.workers = p.workers[:n-1]
	last := len(p.workers) == 0

	// workersMu -> queueMu is the only nesting order used anywhere.
	p.queueMu.Lock()
	w.retired = true
	if last {
		p.running.Store(false)
		p.gen++
		p.spaceCond.Broadcast()
	}
	p.queueMu.Unlock()

	close(w.quit)
	if last && p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	p.workersMu.Unlock()

	if block {
		<-w.done
	}
	cfg.Metrics.RecordWorkerCount(p.name, n-1)
	if last {
		warns.add("The last worker was popped from WorkerPool; stopping the pool",
			F("pool", p.name), F("index", w.index))
	}
}

// WaitIdle blocks until every submitted task has completed or been discarded,
// or until timeout elapses. timeout == 0 waits forever. Returning on timeout
// is not an error; re-check NumTasks when certainty is needed.
func (p *WorkerPool) WaitIdle(timeout time.Duration) {
	ch := p.idleChan()
	if ch == nil {
		return
	}
	if timeout <= 0 {
		<-ch
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
	}
}

// WaitIdleContext is WaitIdle bounded by ctx.
func (p *WorkerPool) WaitIdleContext(ctx context.Context) error {
	ch := p.idleChan()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) idleChan() <-chan struct{} {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	if p.unfinished == 0 {
		return nil
	}
	return p.idleCh
}

func (p *WorkerPool) addPending(n int) {
	if n <= 0 {
		return
	}
	p.pendingMu.Lock()
	if p.unfinished == 0 {
		p.idleCh = make(chan struct{})
	}
	p.unfinished += n
	p.pendingMu.Unlock()
}

func (p *WorkerPool) finishTasks(n int) {
	if n <= 0 {
		return
	}
	p.pendingMu.Lock()
	p.unfinished -= n
	if p.unfinished <= 0 {
		p.unfinished = 0
		if p.idleCh != nil {
			close(p.idleCh)
			p.idleCh = nil
		}
	}
	p.pendingMu.Unlock()
}

// Close is the pool's teardown. Tasks still queued are discarded with one
// warning; a running pool is given a second to go idle and is then stopped.
func (p *WorkerPool) Close() {
	var warns warnings
	p.lifecycleMu.Lock()
	p.closeLocked(&warns)
	p.lifecycleMu.Unlock()
	warns.emit(p.config().Logger)
}

func (p *WorkerPool) closeLocked(warns *warnings) {
	if p.running.Load() {
		warns.add("WorkerPool closed while running; stopping it now", F("pool", p.name))
		p.WaitIdle(closeIdleWait)
		p.stopLocked(true, true, warns)
		return
	}

	p.queueMu.Lock()
	items := p.queue.DrainAll()
	p.spaceCond.Broadcast()
	p.queueMu.Unlock()
	p.abandon(items, warns)
}

// MoveFrom transfers src's configuration and queued tasks into p, leaving
// src stopped and empty. p is closed first. If src was running, p is
// restarted with src's worker count. Callers must not use either pool
// concurrently with a move.
func (p *WorkerPool) MoveFrom(src *WorkerPool) {
	if src == nil || src == p {
		return
	}
	transferMu.Lock()
	defer transferMu.Unlock()

	var srcWarns, dstWarns warnings
	threads := 0
	src.lifecycleMu.Lock()
	if src.running.Load() {
		srcWarns.add("WorkerPool moved while running; it will be restarted for the move",
			F("pool", src.name))
		threads = src.NumThreads()
		src.WaitIdle(closeIdleWait)
		src.stopLocked(true, false, &srcWarns)
	}
	src.lifecycleMu.Unlock()
	srcWarns.emit(src.config().Logger)

	// transferMu is held, so nesting the two lifecycle locks cannot deadlock.
	p.lifecycleMu.Lock()
	src.lifecycleMu.Lock()
	dstLogger := p.config().Logger
	p.closeLocked(&dstWarns)

	cfg := *src.config()
	p.cfg.Store(&cfg)

	src.queueMu.Lock()
	moved := NewQueue[taskItem](cfg.QueueCapacity, cfg.Overflow)
	n := src.queue.MoveTo(moved)
	src.spaceCond.Broadcast()
	src.queueMu.Unlock()

	p.queueMu.Lock()
	p.queue = moved
	p.queueMu.Unlock()

	p.addPending(n)
	src.finishTasks(n)

	src.lifecycleMu.Unlock()
	p.lifecycleMu.Unlock()
	dstWarns.emit(dstLogger)

	if threads > 0 {
		p.Start(threads)
	}
}

// IsRunning returns whether the pool is running
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// NumThreads returns the number of live workers
func (p *WorkerPool) NumThreads() int {
	p.workersMu.Lock()
	defer p.workersMu.Unlock()
	return len(p.workers)
}

// NumTasks returns the unfinished task count: queued plus executing.
func (p *WorkerPool) NumTasks() int {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	return p.unfinished
}

func (p *WorkerPool) QueuedTaskCount() int {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	return p.queue.Len()
}

func (p *WorkerPool) ActiveTaskCount() int {
	return int(p.active.Load())
}

// Stats returns a point-in-time snapshot.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Name:       p.name,
		Workers:    p.NumThreads(),
		Queued:     p.QueuedTaskCount(),
		Active:     p.ActiveTaskCount(),
		Unfinished: p.NumTasks(),
		Running:    p.IsRunning(),
	}
}
