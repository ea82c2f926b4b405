package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Conn is one live duplex channel attached to a user. Production uses
// a gorilla/websocket wrapper; tests substitute fakes.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Registry is the process-wide table mapping a user id to the set of
// that user's live connections. A user may hold several at once (one
// per device/tab); register/unregister/send run concurrently from
// arbitrarily many connection handlers.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]map[Conn]struct{})}
}

func (r *Registry) Register(userID uint64, c Conn) {
	r.mu.Lock()
	set := r.conns[userID]
	if set == nil {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[c] = struct{}{}
	r.mu.Unlock()
}

// Unregister removes the connection; an emptied set is dropped entirely
// so the table never accumulates entries for departed users.
func (r *Registry) Unregister(userID uint64, c Conn) {
	r.mu.Lock()
	if set, ok := r.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.conns, userID)
		}
	}
	r.mu.Unlock()
}

// SendToUser serializes event once and delivers it to every open
// connection registered for userID, at most once each. A user with no
// connections is a normal no-op. Sends happen outside the lock so a
// slow receiver cannot stall register/unregister; connections whose
// send fails are reaped.
func (r *Registry) SendToUser(userID uint64, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal event for user=%d failed: %v", userID, err)
		return
	}

	r.mu.RLock()
	set, ok := r.conns[userID]
	if !ok {
		r.mu.RUnlock()
		return
	}
	targets := make([]Conn, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(data); err != nil {
			r.Unregister(userID, c)
		}
	}
}

// ConnCount reports how many live connections a user holds.
func (r *Registry) ConnCount(userID uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Users reports how many users currently hold at least one connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
