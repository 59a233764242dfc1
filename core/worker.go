package core

import (
	"runtime/debug"
	"time"
)

// worker is one goroutine consuming the pool queue.
// quit is its own targeted stop request; the pool-wide stop arrives on the
// run's stop channel. retired and gen are read under the pool's queue lock.
type worker struct {
	index   int
	gen     uint64
	quit    chan struct{}
	done    chan struct{}
	retired bool
}

func newWorker(index int, gen uint64) *worker {
	return &worker{
		index: index,
		gen:   gen,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// workerLoop is the main loop for each worker
func (p *WorkerPool) workerLoop(w *worker, stopCh <-chan struct{}) {
	defer close(w.done)

	poll := p.config().PollInterval
	timer := time.NewTimer(poll)
	defer timer.Stop()

	woken := false
	for {
		item, ok, live := p.dequeue(w)
		if !live {
			if woken {
				// Pass the consumed wake-up on to a worker that can still dequeue.
				p.wake()
			}
			return
		}
		woken = false
		if ok {
			p.execute(item)
			continue
		}

		timer.Reset(poll)
		select {
		case <-p.signal:
			woken = true
		case <-w.quit:
			return
		case <-stopCh:
			return
		case <-timer.C:
		}
	}
}

// dequeue pops the front task if w is still allowed to consume.
// live is false once the pool stopped, restarted under a new generation, or
// retired w; the check and the pop happen under one lock so no task leaves
// the queue after Stop or PopThread have taken effect.
func (p *WorkerPool) dequeue(w *worker) (item taskItem, ok bool, live bool) {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	if !p.running.Load() || p.gen != w.gen || w.retired {
		return taskItem{}, false, false
	}
	item, ok = p.queue.Pop()
	if ok && p.queue.Capacity() > 0 {
		p.spaceCond.Signal()
	}
	return item, ok, true
}

// execute runs the task outside every pool lock, resolves its handle and
// only then decrements the unfinished counter.
func (p *WorkerPool) execute(item taskItem) {
	cfg := p.config()
	p.active.Add(1)

	start := time.Now()
	err := runTask(item.fn)
	cfg.Metrics.RecordTaskDuration(p.name, time.Since(start))
	if pe, isPanic := err.(*PanicError); isPanic {
		cfg.Metrics.RecordTaskPanic(p.name, pe.Value)
	}

	p.active.Add(-1)
	item.handle.resolve(err)
	p.finishTasks(1)
}

func runTask(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
