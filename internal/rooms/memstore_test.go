package rooms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
)

// memStore is an in-memory Store with the same atomicity semantics as the
// Postgres implementation: every membership mutation is a guarded set
// operation under one lock, and the capacity check shares the critical
// section with the append.
type memStore struct {
	mu       sync.Mutex
	rooms    map[string]*models.Room
	users    map[string]*models.User
	messages map[string][]models.Message
	seq      int
	base     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    make(map[string]*models.Room),
		users:    make(map[string]*models.User),
		messages: make(map[string][]models.Message),
		base:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addUser(id, name string) *models.User {
	u := &models.User{ID: id, DisplayName: name, Email: id + "@example.com"}
	m.mu.Lock()
	m.users[id] = u
	m.mu.Unlock()
	return u
}

func (m *memStore) CreateRoom(_ context.Context, room *models.Room) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	r := *room
	r.ID = fmt.Sprintf("room-%d", m.seq)
	r.Members = []string{room.CreatedBy}
	r.Moderators = []string{room.CreatedBy}
	r.CreatedAt = m.base
	r.UpdatedAt = m.base
	m.rooms[r.ID] = &r

	out := r
	return &out, nil
}

func (m *memStore) GetRoom(_ context.Context, id string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	out := *r
	out.Members = append([]string(nil), r.Members...)
	out.Moderators = append([]string(nil), r.Moderators...)
	return &out, nil
}

func (m *memStore) ActiveRooms(_ context.Context) ([]models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rooms []models.Room
	for _, r := range m.rooms {
		if r.Status == models.RoomStatusActive {
			out := *r
			out.Members = append([]string(nil), r.Members...)
			rooms = append(rooms, out)
		}
	}
	return rooms, nil
}

func (m *memStore) AddMember(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return false, roomerr.ErrNotFound
	}
	if contains(r.Members, userID) {
		return false, nil
	}
	if r.MaxParticipants > 0 && len(r.Members) >= r.MaxParticipants {
		return false, roomerr.ErrCapacityExceeded
	}
	r.Members = append(r.Members, userID)
	return true, nil
}

func (m *memStore) RemoveMember(_ context.Context, roomID, userID string, alsoModerator bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return false, nil
	}
	present := contains(r.Members, userID)
	if alsoModerator && contains(r.Moderators, userID) {
		present = true
		r.Moderators = remove(r.Moderators, userID)
	}
	r.Members = remove(r.Members, userID)
	return present, nil
}

func (m *memStore) AddModerator(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return false, nil
	}
	if contains(r.Moderators, userID) {
		return false, nil
	}
	r.Moderators = append(r.Moderators, userID)
	return true, nil
}

func (m *memStore) SetRoomStatus(_ context.Context, roomID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[roomID]; ok {
		r.Status = status
	}
	return nil
}

func (m *memStore) EndIfEmpty(_ context.Context, roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok || r.Status != models.RoomStatusActive || len(r.Members) > 0 {
		return false, nil
	}
	r.Status = models.RoomStatusEnded
	return true, nil
}

func (m *memStore) IsMember(_ context.Context, roomID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	return ok && contains(r.Members, userID), nil
}

func (m *memStore) DeleteRoomCascade(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, roomID)
	delete(m.messages, roomID)
	return nil
}

func (m *memStore) InsertMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("%026d", m.seq)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.base.Add(time.Duration(m.seq) * time.Millisecond)
	}
	m.messages[msg.RoomID] = append(m.messages[msg.RoomID], *msg)
	return nil
}

func (m *memStore) RecentMessages(_ context.Context, roomID string, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.messages[roomID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}

	// Deliver newest-first, the way the live query does.
	out := make([]models.Message, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *memStore) roomMessages(roomID string) []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages[roomID]...)
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
