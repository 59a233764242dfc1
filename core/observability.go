package core

// PoolStats represents runtime observability state for a worker pool.
// Values are a point-in-time snapshot.
type PoolStats struct {
	Name       string
	Workers    int
	Queued     int
	Active     int
	Unfinished int
	Running    bool
}
