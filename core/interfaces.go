package core

import (
	"time"
)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting pool metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution performance.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the current queue depth after a submit or dequeue.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records tasks that will never run.
	//
	// Parameters:
	// - poolName: The name of the pool
	// - reason: "abandoned", "dropped" or "queue_full"
	// - count: How many tasks this event covers
	RecordTaskRejected(poolName string, reason string, count int)

	// RecordWorkerCount records the live worker count after a resize.
	RecordWorkerCount(poolName string, workers int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any) {}
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int) {}
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string, count int) {}
func (m *NilMetrics) RecordWorkerCount(poolName string, workers int) {}

// =============================================================================
// PoolConfig: Configuration for WorkerPool
// =============================================================================

// DefaultPollInterval bounds how long an idle worker sleeps before re-checking
// the queue and the pool state.
const DefaultPollInterval = 1000 * time.Millisecond

// PoolConfig holds configuration options for WorkerPool.
// All fields are optional; zero values are replaced with defaults.
type PoolConfig struct {
	// Logger receives usage and abandonment warnings. Defaults to DefaultLogger.
	Logger Logger

	// Metrics is called to record pool metrics. Defaults to NilMetrics.
	Metrics Metrics

	// PollInterval is the idle worker wait bound. Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// QueueCapacity bounds the task queue; 0 keeps it unbounded.
	QueueCapacity int

	// Overflow applies when QueueCapacity is reached.
	Overflow OverflowPolicy
}

// DefaultPoolConfig returns a config with default handlers.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Logger:       NewDefaultLogger(),
		Metrics:      &NilMetrics{},
		PollInterval: DefaultPollInterval,
	}
}

func (c *PoolConfig) withDefaults() PoolConfig {
	out := PoolConfig{}
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = NewDefaultLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	if out.QueueCapacity < 0 {
		out.QueueCapacity = 0
	}
	return out
}
