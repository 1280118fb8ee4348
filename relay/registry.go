package relay

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Akif-Ali-10p/BotInterpreter/metrics"
)

// Registry maps session ids to their live member connections. Every
// operation is total: unknown session ids behave as empty sets, never as
// errors, because membership legitimately races with message delivery.
//
// Invariant: a session entry exists iff its member set is non-empty. The
// last Leave deletes the entry so one-off sessions cannot accumulate.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	logger   *zap.SugaredLogger
}

func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		sessions: make(map[string]map[*Client]struct{}),
		logger:   logger,
	}
}

// Join adds c to the session, creating it if absent. Joining a session the
// client is already a member of is a no-op.
func (r *Registry) Join(sessionID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.sessions[sessionID]
	if !ok {
		members = make(map[*Client]struct{})
		r.sessions[sessionID] = members
		metrics.ActiveSessions.Inc()
		r.logger.Infow("session created", "session_id", sessionID)
	}
	members[c] = struct{}{}
}

// Leave removes c from the session. Removing the last member deletes the
// session entry. Unknown sessions and non-members are no-ops.
func (r *Registry) Leave(sessionID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.sessions, sessionID)
		metrics.ActiveSessions.Dec()
		r.logger.Infow("session destroyed", "session_id", sessionID)
	}
}

// MemberCount returns the session's size, 0 for unknown sessions.
func (r *Registry) MemberCount(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID])
}

// Members returns a snapshot of the session's member set. The snapshot is
// safe to iterate while members join and leave.
func (r *Registry) Members(sessionID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Client, 0, len(r.sessions[sessionID]))
	for c := range r.sessions[sessionID] {
		members = append(members, c)
	}
	return members
}

// AllClients returns a snapshot of every registered client across all
// sessions.
func (r *Registry) AllClients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*Client
	for _, members := range r.sessions {
		for c := range members {
			clients = append(clients, c)
		}
	}
	return clients
}

// SessionCount returns the number of live sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast delivers payload to every open member of the session. Members
// in any other state are skipped; a failed send force-closes that member
// (its own teardown removes it) and never interrupts delivery to the rest.
// Unknown sessions are a no-op.
func (r *Registry) Broadcast(sessionID string, payload interface{}) {
	for _, c := range r.Members(sessionID) {
		if !c.Open() {
			continue
		}
		if err := c.WriteJSON(payload); err != nil {
			r.logger.Warnw("broadcast send failed, closing connection",
				"session_id", sessionID, "client_id", c.ID, "error", err)
			c.ForceClose()
			continue
		}
		metrics.MessagesSent.Inc()
	}
}

// CloseAll gracefully closes every registered client. Used at server
// shutdown.
func (r *Registry) CloseAll(code int, reason string) {
	for _, c := range r.AllClients() {
		c.Close(code, reason)
	}
}
