package gateway

import (
	"sync"

	"github.com/taskstream/taskstream/internal/domain"
)

// Conn is one live session. Send reports false when the session's outbound
// buffer is full or the session is gone; the caller drops the frame.
type Conn interface {
	Send(msg []byte) bool
	Close()
}

type connState struct {
	userID domain.UserID
	rooms  map[domain.ProjectID]struct{}
}

// Registry tracks sessions by user and by joined project room. A user may
// hold any number of concurrent sessions; each is addressed independently.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.ProjectID]map[Conn]struct{}
	users map[domain.UserID]map[Conn]struct{}
	conns map[Conn]*connState
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.ProjectID]map[Conn]struct{}),
		users: make(map[domain.UserID]map[Conn]struct{}),
		conns: make(map[Conn]*connState),
	}
}

// Register adds a session under its authenticated user.
func (r *Registry) Register(c Conn, userID domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; ok {
		return
	}
	r.conns[c] = &connState{userID: userID, rooms: make(map[domain.ProjectID]struct{})}
	set, ok := r.users[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.users[userID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes the session from its user set and every room it
// joined. Safe to call for a session that was never registered.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.conns[c]
	if !ok {
		return
	}
	delete(r.conns, c)
	for projectID := range st.rooms {
		r.removeFromRoom(c, projectID)
	}
	if set, ok := r.users[st.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.users, st.userID)
		}
	}
}

// JoinRoom subscribes the session to a project room. Joining twice is a
// no-op. Reports false when the session is not registered.
func (r *Registry) JoinRoom(c Conn, projectID domain.ProjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.conns[c]
	if !ok {
		return false
	}
	st.rooms[projectID] = struct{}{}
	room, ok := r.rooms[projectID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[projectID] = room
	}
	room[c] = struct{}{}
	return true
}

// LeaveRoom unsubscribes the session from a project room.
func (r *Registry) LeaveRoom(c Conn, projectID domain.ProjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.conns[c]
	if !ok {
		return
	}
	delete(st.rooms, projectID)
	r.removeFromRoom(c, projectID)
}

// removeFromRoom requires r.mu held for writing.
func (r *Registry) removeFromRoom(c Conn, projectID domain.ProjectID) {
	room, ok := r.rooms[projectID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(r.rooms, projectID)
	}
}

// RoomConns returns a snapshot of the sessions joined to a project room.
func (r *Registry) RoomConns(projectID domain.ProjectID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[projectID]
	out := make([]Conn, 0, len(room))
	for c := range room {
		out = append(out, c)
	}
	return out
}

// UserConns returns a snapshot of every live session of a user.
func (r *Registry) UserConns(userID domain.UserID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
