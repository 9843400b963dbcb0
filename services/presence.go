package services

import (
	"sync"

	"github.com/felixzhu97/whatschat-sub002/utils"
)

// PresenceRegistry is the process-wide map of user id to active connection.
// A user has at most one entry; registering over an existing entry replaces
// it (last writer wins, e.g. a reconnect from another device).
type PresenceRegistry struct {
	mu     sync.RWMutex
	conns  map[string]Connection
	logger *utils.Logger
}

func NewPresenceRegistry(logger *utils.Logger) *PresenceRegistry {
	return &PresenceRegistry{
		conns:  make(map[string]Connection),
		logger: logger,
	}
}

// Register inserts or overwrites the presence entry for the connection's
// user. The displaced connection, if any, is returned so the caller can
// close it.
func (r *PresenceRegistry) Register(conn Connection) Connection {
	r.mu.Lock()
	previous := r.conns[conn.UserID()]
	r.conns[conn.UserID()] = conn
	r.mu.Unlock()

	r.logger.Debug("presence registered", "user_id", conn.UserID(), "conn_id", conn.ID())
	return previous
}

// Unregister removes the presence entry, but only if it still belongs to the
// given connection. A reconnect that already overwrote the entry is left
// alone. Reports whether an entry was removed.
func (r *PresenceRegistry) Unregister(conn Connection) bool {
	r.mu.Lock()
	current, ok := r.conns[conn.UserID()]
	if ok && current.ID() == conn.ID() {
		delete(r.conns, conn.UserID())
	} else {
		ok = false
	}
	r.mu.Unlock()

	if ok {
		r.logger.Debug("presence removed", "user_id", conn.UserID(), "conn_id", conn.ID())
	}
	return ok
}

// Lookup returns the active connection for the user, if any.
func (r *PresenceRegistry) Lookup(userID string) (Connection, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

// IsOnline reports whether the user has an active connection.
func (r *PresenceRegistry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Count returns the number of active connections.
func (r *PresenceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// OnlineUserIDs returns a snapshot of every online user id.
func (r *PresenceRegistry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast emits the event to every online connection except the excluded
// user. Pass an empty string to reach everyone.
func (r *PresenceRegistry) Broadcast(event string, data interface{}, exceptUserID string) {
	r.mu.RLock()
	targets := make([]Connection, 0, len(r.conns))
	for userID, conn := range r.conns {
		if userID == exceptUserID {
			continue
		}
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	for _, conn := range targets {
		conn.Emit(event, data)
	}
}
