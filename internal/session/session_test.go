package session

import (
	"sort"
	"testing"
)

func TestActivateReplacesPreviousSession(t *testing.T) {
	t.Parallel()

	m := NewManager()
	var tornDown []string

	m.Activate("u1", "room-a", func() { tornDown = append(tornDown, "a") })
	m.Activate("u1", "room-b", func() { tornDown = append(tornDown, "b") })

	room, ok := m.ActiveRoom("u1")
	if !ok || room != "room-b" {
		t.Fatalf("active room = %q, %v; want room-b", room, ok)
	}
	if len(tornDown) != 1 || tornDown[0] != "a" {
		t.Errorf("teardowns = %v, want the first session's only", tornDown)
	}
}

func TestDeactivateRunsTeardownsInOrder(t *testing.T) {
	t.Parallel()

	m := NewManager()
	var order []int
	m.Activate("u1", "room-a",
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	)

	room, ok := m.Deactivate("u1")
	if !ok || room != "room-a" {
		t.Fatalf("Deactivate = %q, %v", room, ok)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("teardown order = %v, want [1 2]", order)
	}

	if _, ok := m.ActiveRoom("u1"); ok {
		t.Error("session survived deactivation")
	}
	if _, ok := m.Deactivate("u1"); ok {
		t.Error("second deactivate reported a session")
	}
}

func TestAtMostOneActiveRoomPerUser(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.Activate("u1", "room-a")
	m.Activate("u1", "room-b")
	m.Activate("u1", "room-c")

	if users := m.UsersInRoom("room-a"); len(users) != 0 {
		t.Errorf("room-a still holds %v", users)
	}
	if users := m.UsersInRoom("room-b"); len(users) != 0 {
		t.Errorf("room-b still holds %v", users)
	}
	if users := m.UsersInRoom("room-c"); len(users) != 1 || users[0] != "u1" {
		t.Errorf("room-c holds %v, want [u1]", users)
	}
}

func TestDeactivateRoomTearsDownEverySession(t *testing.T) {
	t.Parallel()

	m := NewManager()
	torn := make(map[string]bool)
	m.Activate("u1", "shared", func() { torn["u1"] = true })
	m.Activate("u2", "shared", func() { torn["u2"] = true })
	m.Activate("u3", "other", func() { torn["u3"] = true })

	users := m.DeactivateRoom("shared")
	sort.Strings(users)
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Fatalf("affected users = %v, want [u1 u2]", users)
	}
	if !torn["u1"] || !torn["u2"] {
		t.Error("shared-room teardowns did not run")
	}
	if torn["u3"] {
		t.Error("unrelated session was torn down")
	}

	if room, ok := m.ActiveRoom("u3"); !ok || room != "other" {
		t.Errorf("u3 active room = %q, %v; want other", room, ok)
	}
}

func TestNilTeardownIsSkipped(t *testing.T) {
	t.Parallel()

	m := NewManager()
	ran := false
	m.Activate("u1", "room-a", nil, func() { ran = true })
	m.Deactivate("u1")
	if !ran {
		t.Error("non-nil teardown did not run")
	}
}
