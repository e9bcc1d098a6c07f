package wsserver

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the websocket transport this package writes to.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// entry is one live principal: its transport and the rooms it has joined.
type entry struct {
	conn  Conn
	rooms map[uint]struct{}
}

// Registry is the in-memory table of live principals and their room
// memberships. Connection handlers run on separate goroutines, so every
// mutation is guarded by the mutex.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register inserts a principal with an empty room set. When the principal
// already has a live entry, the new transport replaces it and the
// superseded transport is returned so the caller can close it.
func (r *Registry) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var superseded Conn
	if prev, ok := r.entries[userID]; ok {
		superseded = prev.conn
	}
	r.entries[userID] = &entry{
		conn:  conn,
		rooms: make(map[uint]struct{}),
	}
	return superseded
}

// Unregister removes the principal's entry. The conn guard keeps the
// reader of a superseded connection from evicting the entry its
// replacement just registered.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[userID]; ok && e.conn == conn {
		delete(r.entries, userID)
	}
}

// Has reports whether the principal has a live entry.
func (r *Registry) Has(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// JoinRoom adds a room to the principal's room set. Joining an
// already-joined room is a no-op success. Returns false when the principal
// has no entry (it disconnected while the room lookup was in flight).
func (r *Registry) JoinRoom(userID string, roomID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		return false
	}
	e.rooms[roomID] = struct{}{}
	return true
}

// LeaveRoom removes a room from the principal's room set, reporting
// whether it was actually present.
func (r *Registry) LeaveRoom(userID string, roomID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		return false
	}
	if _, present := e.rooms[roomID]; !present {
		return false
	}
	delete(e.rooms, roomID)
	return true
}

// IsMember reports whether the principal currently has roomID in its set.
func (r *Registry) IsMember(userID string, roomID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[userID]
	if !ok {
		return false
	}
	_, member := e.rooms[roomID]
	return member
}

// Count returns the number of live principals.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Broadcast delivers payload to every principal whose room set contains
// roomID. Recipients are snapshotted under the read lock and written to
// outside it; a failed write is logged and never blocks the rest. Returns
// the number of successful deliveries.
func (r *Registry) Broadcast(roomID uint, payload []byte) int {
	r.mu.RLock()
	var ids []string
	var conns []Conn
	for userID, e := range r.entries {
		if _, member := e.rooms[roomID]; member {
			ids = append(ids, userID)
			conns = append(conns, e.conn)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for i, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("[wsserver] Broadcast write to %s failed: %v", ids[i], err)
			continue
		}
		delivered++
	}
	return delivered
}
