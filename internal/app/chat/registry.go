/*
Package chat contains the core logic for live chat sessions: the in-memory room
registry, the session hub, the WebSocket client lifecycle, and the realtime
event protocol.

This file defines the Registry, the authoritative in-memory view of which live
connections are listening to which room right now. It is independent of the
persisted membership stored on room documents and is rebuilt empty on restart.
*/
package chat

import (
	"sync"
)

// Registry tracks live room subscriptions. All mutating operations on a given
// room are linearizable with respect to each other; no operation touches I/O.
// No other component reads or writes subscriber sets directly.
type Registry struct {
	mu sync.RWMutex

	// rooms maps room ID to the set of subscribed connection IDs.
	rooms map[string]map[string]struct{}

	// conns is the reverse index: connection ID to the set of room IDs it
	// subscribes to. Kept so DisconnectAll is a single-lock sweep.
	conns map[string]map[string]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room's subscriber set. Re-joining an already
// subscribed connection does not double-count. It returns the updated live
// count and whether the connection was newly added.
func (reg *Registry) Join(roomID, connID string) (int, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	subscribers, ok := reg.rooms[roomID]
	if !ok {
		subscribers = make(map[string]struct{})
		reg.rooms[roomID] = subscribers
	}

	if _, already := subscribers[connID]; already {
		return len(subscribers), false
	}

	subscribers[connID] = struct{}{}

	roomsOfConn, ok := reg.conns[connID]
	if !ok {
		roomsOfConn = make(map[string]struct{})
		reg.conns[connID] = roomsOfConn
	}
	roomsOfConn[roomID] = struct{}{}

	return len(subscribers), true
}

// Leave removes the connection from the room's subscriber set and returns the
// updated count, floored at zero. Removing a non-member is a no-op returning
// the current count.
func (reg *Registry) Leave(roomID, connID string) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return reg.leaveLocked(roomID, connID)
}

func (reg *Registry) leaveLocked(roomID, connID string) int {
	subscribers, ok := reg.rooms[roomID]
	if !ok {
		return 0
	}

	delete(subscribers, connID)

	if roomsOfConn, ok := reg.conns[connID]; ok {
		delete(roomsOfConn, roomID)
		if len(roomsOfConn) == 0 {
			delete(reg.conns, connID)
		}
	}

	count := len(subscribers)
	if count == 0 {
		delete(reg.rooms, roomID)
	}

	return count
}

// DisconnectAll removes the connection from every room it was subscribed to,
// atomically with respect to concurrent Join/Leave calls for the same
// connection. It returns the updated count per affected room.
func (reg *Registry) DisconnectAll(connID string) map[string]int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	roomsOfConn := reg.conns[connID]
	affected := make(map[string]int, len(roomsOfConn))

	for roomID := range roomsOfConn {
		affected[roomID] = reg.leaveLocked(roomID, connID)
	}

	delete(reg.conns, connID)

	return affected
}

// CountOf returns the current live count for the room, 0 if the room is unknown.
func (reg *Registry) CountOf(roomID string) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.rooms[roomID])
}

// Subscribers returns a snapshot of the connection IDs currently subscribed to
// the room. Fan-out iterates the snapshot so delivery never holds the lock.
func (reg *Registry) Subscribers(roomID string) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	subscribers := reg.rooms[roomID]
	snapshot := make([]string, 0, len(subscribers))
	for connID := range subscribers {
		snapshot = append(snapshot, connID)
	}

	return snapshot
}
