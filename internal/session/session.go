// Package session owns the single-active-room state of each connected
// user. Joining a room activates a session; the previous session's
// subscriptions are always torn down before the new ones start, so a user
// can never hold two live subscription pairs.
package session

import "sync"

// Teardown cancels one live subscription. Teardowns are best-effort and
// must not block.
type Teardown func()

type session struct {
	roomID    string
	teardowns []Teardown
}

// Manager tracks the active room session of every user.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*session)}
}

// Activate makes roomID the user's active room and registers the
// subscriptions' teardowns. Any previously active session is deactivated
// first, running its teardowns before the new session exists.
func (m *Manager) Activate(userID, roomID string, teardowns ...Teardown) {
	m.mu.Lock()
	prev := m.sessions[userID]
	m.sessions[userID] = &session{roomID: roomID, teardowns: teardowns}
	m.mu.Unlock()

	if prev != nil {
		runTeardowns(prev.teardowns)
	}
}

// Deactivate clears the user's active session and runs its teardowns.
// Returns the room that was active, if any.
func (m *Manager) Deactivate(userID string) (string, bool) {
	m.mu.Lock()
	prev := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if prev == nil {
		return "", false
	}
	runTeardowns(prev.teardowns)
	return prev.roomID, true
}

// ActiveRoom returns the user's active room, if any.
func (m *Manager) ActiveRoom(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return "", false
	}
	return s.roomID, true
}

// UsersInRoom returns every user whose session is active on roomID.
func (m *Manager) UsersInRoom(roomID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []string
	for userID, s := range m.sessions {
		if s.roomID == roomID {
			users = append(users, userID)
		}
	}
	return users
}

// DeactivateRoom tears down every session active on roomID, returning the
// affected users. Used when a room ends or is deleted.
func (m *Manager) DeactivateRoom(roomID string) []string {
	m.mu.Lock()
	var users []string
	var torn [][]Teardown
	for userID, s := range m.sessions {
		if s.roomID == roomID {
			users = append(users, userID)
			torn = append(torn, s.teardowns)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	for _, t := range torn {
		runTeardowns(t)
	}
	return users
}

func runTeardowns(teardowns []Teardown) {
	for _, t := range teardowns {
		if t != nil {
			t()
		}
	}
}
