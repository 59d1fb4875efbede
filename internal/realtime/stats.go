package realtime

import (
	"sync"
	"time"
)

// Stats counts gateway activity since start.
type Stats struct {
	ConnectionsOpened  int64     `json:"connectionsOpened"`
	ConnectionsActive  int64     `json:"connectionsActive"`
	HandshakesRejected int64     `json:"handshakesRejected"`
	EventsRelayed      int64     `json:"eventsRelayed"`
	ClientsDropped     int64     `json:"clientsDropped"`
	LastEventAt        time.Time `json:"lastEventAt,omitempty"`
}

// StatsTracker provides a goroutine-safe wrapper around Stats.
type StatsTracker struct {
	mu    sync.RWMutex
	stats Stats
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *StatsTracker) Update(fn func(*Stats)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.stats)
}

// Snapshot returns a copy of the current stats.
func (t *StatsTracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}
