package core

// ThreadInfo is a point-in-time view of one registered thread.
type ThreadInfo struct {
	ID         ID
	Name       string
	RunState   RunState
	Generation uint64
	Parked     bool
	Suspended  bool
}

// RuntimeStats represents runtime observability state.
type RuntimeStats struct {
	ID       string
	Live     int
	Current  ID
	NextID   ID
	Spawned  uint64
	Exited   uint64
	Switches uint64
}
