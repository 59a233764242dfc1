package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// PipelineSnapshotProvider provides current log pipeline stats snapshots.
type PipelineSnapshotProvider interface {
	Stats() logpipe.PipelineStats
}

// SnapshotPoller periodically exports pool and pipeline Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	pipelinesMu sync.RWMutex
	pipelines   map[string]PipelineSnapshotProvider

	poolQueued     *prom.GaugeVec
	poolActive     *prom.GaugeVec
	poolUnfinished *prom.GaugeVec
	poolWorkers    *prom.GaugeVec
	poolRunning    *prom.GaugeVec

	logQueued       *prom.GaugeVec
	logDelivered    *prom.GaugeVec
	logDropped      *prom.GaugeVec
	logRejected     *prom.GaugeVec
	logHookFailures *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help, label string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "taskpool",
			Name:      name,
			Help:      help,
		}, []string{label})
	}

	p := &SnapshotPoller{
		interval:  interval,
		pools:     make(map[string]PoolSnapshotProvider),
		pipelines: make(map[string]PipelineSnapshotProvider),

		poolQueued:     gauge("pool_queued", "Queued tasks per pool.", "pool"),
		poolActive:     gauge("pool_active", "Executing tasks per pool.", "pool"),
		poolUnfinished: gauge("pool_unfinished", "Queued plus executing tasks per pool.", "pool"),
		poolWorkers:    gauge("pool_workers", "Worker count per pool.", "pool"),
		poolRunning:    gauge("pool_running", "Pool running state (1=running, 0=stopped).", "pool"),

		logQueued:       gauge("log_queued", "Records waiting for a drain.", "pipeline"),
		logDelivered:    gauge("log_delivered_total", "Records delivered to hooks.", "pipeline"),
		logDropped:      gauge("log_dropped_total", "Records evicted by a full queue.", "pipeline"),
		logRejected:     gauge("log_rejected_total", "Records refused by a full queue.", "pipeline"),
		logHookFailures: gauge("log_hook_failures_total", "Hook invocations that panicked.", "pipeline"),
	}

	for _, g := range []**prom.GaugeVec{
		&p.poolQueued, &p.poolActive, &p.poolUnfinished, &p.poolWorkers, &p.poolRunning,
		&p.logQueued, &p.logDelivered, &p.logDropped, &p.logRejected, &p.logHookFailures,
	} {
		registered, err := registerCollector(reg, *g)
		if err != nil {
			return nil, err
		}
		*g = registered
	}
	return p, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// AddPipeline adds or replaces a log pipeline snapshot provider by name.
func (p *SnapshotPoller) AddPipeline(name string, provider PipelineSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pipeline")
	p.pipelinesMu.Lock()
	p.pipelines[name] = provider
	p.pipelinesMu.Unlock()
}

// RemovePool stops exporting the named pool and deletes its series.
func (p *SnapshotPoller) RemovePool(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	delete(p.pools, name)
	p.poolsMu.Unlock()
	for _, g := range []*prom.GaugeVec{p.poolQueued, p.poolActive, p.poolUnfinished, p.poolWorkers, p.poolRunning} {
		g.DeleteLabelValues(name)
	}
}

// RemovePipeline stops exporting the named pipeline and deletes its series.
func (p *SnapshotPoller) RemovePipeline(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "pipeline")
	p.pipelinesMu.Lock()
	delete(p.pipelines, name)
	p.pipelinesMu.Unlock()
	for _, g := range []*prom.GaugeVec{p.logQueued, p.logDelivered, p.logDropped, p.logRejected, p.logHookFailures} {
		g.DeleteLabelValues(name)
	}
}

// PollOnce collects every provider immediately.
func (p *SnapshotPoller) PollOnce() {
	if p == nil {
		return
	}
	p.collectOnce()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolUnfinished.WithLabelValues(name).Set(float64(stats.Unfinished))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()

	p.pipelinesMu.RLock()
	for name, provider := range p.pipelines {
		stats := provider.Stats()
		p.logQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.logDelivered.WithLabelValues(name).Set(float64(stats.Delivered))
		p.logDropped.WithLabelValues(name).Set(float64(stats.Dropped))
		p.logRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		p.logHookFailures.WithLabelValues(name).Set(float64(stats.HookFailures))
	}
	p.pipelinesMu.RUnlock()
}
