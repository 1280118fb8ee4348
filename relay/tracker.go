package relay

import "sync"

// Tracker is the liveness record set: every accepted connection has exactly
// one entry from accept until teardown. A connection the registry knows but
// the tracker does not is treated as dead by the reaper.
type Tracker struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{clients: make(map[*Client]struct{})}
}

func (t *Tracker) Add(c *Client) {
	t.mu.Lock()
	t.clients[c] = struct{}{}
	t.mu.Unlock()
}

func (t *Tracker) Remove(c *Client) {
	t.mu.Lock()
	delete(t.clients, c)
	t.mu.Unlock()
}

func (t *Tracker) Contains(c *Client) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.clients[c]
	return ok
}

func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}

// Snapshot returns the tracked connections, safe to iterate while the set
// changes.
func (t *Tracker) Snapshot() []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()

	clients := make([]*Client, 0, len(t.clients))
	for c := range t.clients {
		clients = append(clients, c)
	}
	return clients
}
