package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
	"voxroom/server/internal/session"
)

// fakeNotifier records every fan-out call.
type fakeNotifier struct {
	mu       sync.Mutex
	updated  []string
	ended    []string
	removed  []string
	messages []models.Message
	dirChgs  int
}

func (n *fakeNotifier) RoomUpdated(room *models.Room) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, room.ID)
}

func (n *fakeNotifier) RoomEnded(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ended = append(n.ended, roomID)
}

func (n *fakeNotifier) MemberRemoved(roomID, userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, roomID+":"+userID)
}

func (n *fakeNotifier) MessageCreated(msg *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, *msg)
}

func (n *fakeNotifier) DirectoryChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dirChgs++
}

func newTestService() (*Service, *memStore, *fakeNotifier) {
	st := newMemStore()
	notify := &fakeNotifier{}
	svc := NewService(st, nil, session.NewManager(), notify, zerolog.Nop())
	return svc, st, notify
}

func mustCreate(t *testing.T, svc *Service, creator *models.User, in CreateRoomInput) *models.Room {
	t.Helper()
	room, err := svc.Create(context.Background(), creator, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return room
}

func mustJoin(t *testing.T, svc *Service, user *models.User, roomID string) *models.Room {
	t.Helper()
	room, err := svc.Join(context.Background(), user, roomID)
	if err != nil {
		t.Fatalf("Join(%s, %s): %v", user.ID, roomID, err)
	}
	return room
}

func systemMessages(msgs []models.Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Type == models.MessageTypeSystem {
			out = append(out, m.Content)
		}
	}
	return out
}

func TestCreateSeedsCreatorAndWelcome(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("cr-alice", "Alice")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "  Go talk  ", Description: " weekly "})

	if room.Title != "Go talk" {
		t.Errorf("title = %q, want trimmed %q", room.Title, "Go talk")
	}
	if room.Topic != models.DefaultTopic {
		t.Errorf("topic = %q, want default %q", room.Topic, models.DefaultTopic)
	}
	if len(room.Members) != 1 || room.Members[0] != alice.ID {
		t.Errorf("members = %v, want [%s]", room.Members, alice.ID)
	}
	if len(room.Moderators) != 1 || room.Moderators[0] != alice.ID {
		t.Errorf("moderators = %v, want [%s]", room.Moderators, alice.ID)
	}
	if room.Status != models.RoomStatusActive {
		t.Errorf("status = %q, want active", room.Status)
	}

	msgs := st.roomMessages(room.ID)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want the welcome message", len(msgs))
	}
	want := "Welcome to Go talk! This room was created by Alice."
	if msgs[0].Content != want || msgs[0].Type != models.MessageTypeSystem || msgs[0].SenderID != models.SystemSenderID {
		t.Errorf("welcome = %+v, want system message %q", msgs[0], want)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("cv-alice", "Alice")
	ctx := context.Background()

	if _, err := svc.Create(ctx, alice, CreateRoomInput{Title: "   "}); !errors.Is(err, roomerr.ErrValidation) {
		t.Errorf("blank title: err = %v, want validation error", err)
	}
	if _, err := svc.Create(ctx, alice, CreateRoomInput{Title: "x", Topic: "Quantum Basket Weaving"}); !errors.Is(err, roomerr.ErrValidation) {
		t.Errorf("unknown topic: err = %v, want validation error", err)
	}
}

func TestCreateClampsMaxParticipants(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero is unlimited", 0, 0},
		{"below floor", 1, 2},
		{"within range", 50, 50},
		{"above ceiling", 500, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, _ := newTestService()
			alice := st.addUser("cl-alice", "Alice")
			room := mustCreate(t, svc, alice, CreateRoomInput{Title: "t", MaxParticipants: tt.in})
			if room.MaxParticipants != tt.want {
				t.Errorf("maxParticipants = %d, want %d", room.MaxParticipants, tt.want)
			}
		})
	}
}

func TestJoinAddsMemberOnce(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("jn-alice", "Alice")
	bob := st.addUser("jn-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	joined := mustJoin(t, svc, bob, room.ID)

	if !joined.HasMember(bob.ID) {
		t.Fatalf("members = %v, want bob present", joined.Members)
	}

	// Re-joining is idempotent: no duplicate member, no duplicate message.
	again := mustJoin(t, svc, bob, room.ID)
	count := 0
	for _, id := range again.Members {
		if id == bob.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("bob appears %d times in members, want 1", count)
	}

	joins := 0
	for _, content := range systemMessages(st.roomMessages(room.ID)) {
		if content == "Bob joined the room." {
			joins++
		}
	}
	if joins != 1 {
		t.Errorf("got %d join messages, want 1", joins)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	svc, st, _ := newTestService()
	bob := st.addUser("ju-bob", "Bob")

	if _, err := svc.Join(context.Background(), bob, "no-such-room"); !errors.Is(err, roomerr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestJoinPrivateRoomRequiresMembership(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("pv-alice", "Alice")
	mallory := st.addUser("pv-mallory", "Mallory")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "private", IsPrivate: true})

	if _, err := svc.Join(context.Background(), mallory, room.ID); !errors.Is(err, roomerr.ErrAccessDenied) {
		t.Fatalf("outsider join: err = %v, want access denied", err)
	}

	// The creator is always admitted regardless of the member set.
	mustJoin(t, svc, alice, room.ID)
}

func TestJoinAtCapacityFailsWithoutMutation(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("cap-alice", "Alice")
	bob := st.addUser("cap-bob", "Bob")
	carol := st.addUser("cap-carol", "Carol")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "small", MaxParticipants: 2})
	mustJoin(t, svc, bob, room.ID)

	_, err := svc.Join(context.Background(), carol, room.ID)
	if !errors.Is(err, roomerr.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want capacity exceeded", err)
	}

	got, _ := st.GetRoom(context.Background(), room.ID)
	if len(got.Members) != 2 || got.HasMember(carol.ID) {
		t.Errorf("members = %v, want the pre-join pair untouched", got.Members)
	}
	if _, ok := svc.Sessions().ActiveRoom(carol.ID); ok {
		t.Error("rejected joiner has an active session")
	}
}

func TestLeaveLastMemberEndsRoom(t *testing.T) {
	svc, st, notify := newTestService()
	alice := st.addUser("lv-alice", "Alice")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "solo"})
	mustJoin(t, svc, alice, room.ID)

	if err := svc.Leave(context.Background(), alice); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	got, _ := st.GetRoom(context.Background(), room.ID)
	if got.Status != models.RoomStatusEnded {
		t.Errorf("status = %q, want ended after the last member left", got.Status)
	}
	if len(notify.ended) != 1 || notify.ended[0] != room.ID {
		t.Errorf("ended notifications = %v, want [%s]", notify.ended, room.ID)
	}
	if _, ok := svc.Sessions().ActiveRoom(alice.ID); ok {
		t.Error("leaver still has an active session")
	}
}

func TestLeaveWithOthersKeepsRoomActive(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("lo-alice", "Alice")
	bob := st.addUser("lo-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "duo"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	if err := svc.Leave(context.Background(), bob); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	got, _ := st.GetRoom(context.Background(), room.ID)
	if got.Status != models.RoomStatusActive {
		t.Errorf("status = %q, want still active", got.Status)
	}
	if got.HasMember(bob.ID) {
		t.Errorf("members = %v, bob should be gone", got.Members)
	}
	if !got.HasMember(alice.ID) {
		t.Errorf("members = %v, alice should remain", got.Members)
	}

	found := false
	for _, content := range systemMessages(st.roomMessages(room.ID)) {
		if content == "Bob left the room." {
			found = true
		}
	}
	if !found {
		t.Error("missing leave message")
	}
}

func TestLeaveNonCreatorDrainingKeepsRoomActive(t *testing.T) {
	svc, st, notify := newTestService()
	alice := st.addUser("dr-alice", "Alice")
	bob := st.addUser("dr-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "drain"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	ctx := context.Background()
	if err := svc.Leave(ctx, alice); err != nil {
		t.Fatalf("creator leave: %v", err)
	}
	got, _ := st.GetRoom(ctx, room.ID)
	if got.Status != models.RoomStatusActive {
		t.Fatalf("status after creator leave = %q, want active while bob remains", got.Status)
	}

	// Bob draining the room does not end it: only the creator leaving as
	// the last member does.
	if err := svc.Leave(ctx, bob); err != nil {
		t.Fatalf("bob leave: %v", err)
	}
	got, _ = st.GetRoom(ctx, room.ID)
	if got.Status != models.RoomStatusActive {
		t.Errorf("status after drain = %q, want active", got.Status)
	}
	if len(got.Members) != 0 {
		t.Errorf("members = %v, want empty", got.Members)
	}
	if len(notify.ended) != 0 {
		t.Errorf("ended notifications = %v, want none", notify.ended)
	}
}

func TestLeaveWithoutActiveRoomIsNoop(t *testing.T) {
	svc, st, _ := newTestService()
	bob := st.addUser("ln-bob", "Bob")

	if err := svc.Leave(context.Background(), bob); err != nil {
		t.Errorf("Leave with no session: %v", err)
	}
}

func TestPromoteRequiresModerator(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("pm-alice", "Alice")
	bob := st.addUser("pm-bob", "Bob")
	carol := st.addUser("pm-carol", "Carol")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, bob, room.ID)
	mustJoin(t, svc, carol, room.ID)

	if err := svc.Promote(context.Background(), bob, carol.ID); !errors.Is(err, roomerr.ErrPermissionDenied) {
		t.Errorf("non-moderator promote: err = %v, want permission denied", err)
	}
}

func TestPromoteIsIdempotentButAlwaysAnnounced(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("pi-alice", "Alice")
	bob := st.addUser("pi-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	ctx := context.Background()
	if err := svc.Promote(ctx, alice, bob.ID); err != nil {
		t.Fatalf("first promote: %v", err)
	}
	if err := svc.Promote(ctx, alice, bob.ID); err != nil {
		t.Fatalf("repeat promote: %v", err)
	}

	got, _ := st.GetRoom(ctx, room.ID)
	count := 0
	for _, id := range got.Moderators {
		if id == bob.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("bob appears %d times in moderators, want 1", count)
	}

	// The announcement names the actor and fires on every call, even the
	// no-op repeat.
	announcements := 0
	for _, content := range systemMessages(st.roomMessages(room.ID)) {
		if content == "Alice promoted a user to moderator." {
			announcements++
		}
	}
	if announcements != 2 {
		t.Errorf("got %d promote announcements, want 2", announcements)
	}
}

func TestRemoveClearsBothSets(t *testing.T) {
	svc, st, notify := newTestService()
	alice := st.addUser("rm-alice", "Alice")
	bob := st.addUser("rm-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	ctx := context.Background()
	if err := svc.Promote(ctx, alice, bob.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := svc.Remove(ctx, alice, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, _ := st.GetRoom(ctx, room.ID)
	if got.HasMember(bob.ID) || got.HasModerator(bob.ID) {
		t.Errorf("bob still present: members=%v moderators=%v", got.Members, got.Moderators)
	}
	if _, ok := svc.Sessions().ActiveRoom(bob.ID); ok {
		t.Error("removed user still has an active session")
	}
	if len(notify.removed) != 1 || notify.removed[0] != room.ID+":"+bob.ID {
		t.Errorf("removed notifications = %v", notify.removed)
	}

	found := false
	for _, content := range systemMessages(st.roomMessages(room.ID)) {
		if content == "Bob was removed from the room." {
			found = true
		}
	}
	if !found {
		t.Error("missing removal message")
	}
}

func TestRemoveCreatorIsForbidden(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("rc-alice", "Alice")
	bob := st.addUser("rc-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	ctx := context.Background()
	if err := svc.Promote(ctx, alice, bob.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := svc.Remove(ctx, bob, alice.ID); !errors.Is(err, roomerr.ErrPermissionDenied) {
		t.Errorf("remove creator: err = %v, want permission denied", err)
	}

	got, _ := st.GetRoom(ctx, room.ID)
	if !got.HasMember(alice.ID) {
		t.Errorf("members = %v, creator must remain", got.Members)
	}
}

func TestRemoveRequiresModerator(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("rq-alice", "Alice")
	bob := st.addUser("rq-bob", "Bob")
	carol := st.addUser("rq-carol", "Carol")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, bob, room.ID)
	mustJoin(t, svc, carol, room.ID)

	if err := svc.Remove(context.Background(), bob, carol.ID); !errors.Is(err, roomerr.ErrPermissionDenied) {
		t.Errorf("non-moderator remove: err = %v, want permission denied", err)
	}
}

func TestEndIsCreatorOnly(t *testing.T) {
	svc, st, notify := newTestService()
	alice := st.addUser("en-alice", "Alice")
	bob := st.addUser("en-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	ctx := context.Background()
	if err := svc.End(ctx, bob, room.ID); !errors.Is(err, roomerr.ErrPermissionDenied) {
		t.Fatalf("non-creator end: err = %v, want permission denied", err)
	}
	if err := svc.End(ctx, alice, room.ID); err != nil {
		t.Fatalf("End: %v", err)
	}

	got, _ := st.GetRoom(ctx, room.ID)
	if got.Status != models.RoomStatusEnded {
		t.Errorf("status = %q, want ended", got.Status)
	}
	if len(notify.ended) != 1 {
		t.Errorf("ended notifications = %v, want one", notify.ended)
	}

	// Every session on the room is gone.
	if _, ok := svc.Sessions().ActiveRoom(alice.ID); ok {
		t.Error("creator session survived end")
	}
	if _, ok := svc.Sessions().ActiveRoom(bob.ID); ok {
		t.Error("member session survived end")
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("dl-alice", "Alice")
	bob := st.addUser("dl-bob", "Bob")

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "room"})
	mustJoin(t, svc, alice, room.ID)

	ctx := context.Background()
	if err := svc.Delete(ctx, bob, room.ID); !errors.Is(err, roomerr.ErrPermissionDenied) {
		t.Fatalf("non-creator delete: err = %v, want permission denied", err)
	}
	if err := svc.Delete(ctx, alice, room.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got, _ := st.GetRoom(ctx, room.ID); got != nil {
		t.Error("room still exists after delete")
	}
	if msgs := st.roomMessages(room.ID); len(msgs) != 0 {
		t.Errorf("%d messages survived the cascade", len(msgs))
	}
	if err := svc.Delete(ctx, alice, room.ID); !errors.Is(err, roomerr.ErrNotFound) {
		t.Errorf("repeat delete: err = %v, want not found", err)
	}
}

func TestJoinSwitchesActiveRoom(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("sw-alice", "Alice")
	bob := st.addUser("sw-bob", "Bob")

	first := mustCreate(t, svc, alice, CreateRoomInput{Title: "first"})
	second := mustCreate(t, svc, bob, CreateRoomInput{Title: "second"})

	mustJoin(t, svc, alice, first.ID)
	mustJoin(t, svc, alice, second.ID)

	active, ok := svc.Sessions().ActiveRoom(alice.ID)
	if !ok || active != second.ID {
		t.Errorf("active room = %q, want %q", active, second.ID)
	}
}

func TestFullRoomLifecycle(t *testing.T) {
	svc, st, _ := newTestService()
	alice := st.addUser("fl-alice", "Alice")
	bob := st.addUser("fl-bob", "Bob")
	carol := st.addUser("fl-carol", "Carol")

	ctx := context.Background()

	room := mustCreate(t, svc, alice, CreateRoomInput{Title: "pair", MaxParticipants: 2})
	mustJoin(t, svc, alice, room.ID)
	mustJoin(t, svc, bob, room.ID)

	if _, err := svc.Join(ctx, carol, room.ID); !errors.Is(err, roomerr.ErrCapacityExceeded) {
		t.Fatalf("third join: err = %v, want capacity exceeded", err)
	}

	if err := svc.Remove(ctx, alice, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ := st.GetRoom(ctx, room.ID)
	if len(got.Members) != 1 || got.Members[0] != alice.ID {
		t.Fatalf("members = %v, want just the creator", got.Members)
	}

	if err := svc.Leave(ctx, alice); err != nil {
		t.Fatalf("leave: %v", err)
	}
	got, _ = st.GetRoom(ctx, room.ID)
	if got.Status != models.RoomStatusEnded {
		t.Errorf("status = %q, want ended", got.Status)
	}

	want := []string{
		"Welcome to pair! This room was created by Alice.",
		"Bob joined the room.",
		"Bob was removed from the room.",
		"Alice left the room.",
	}
	msgs := systemMessages(st.roomMessages(room.ID))
	if len(msgs) != len(want) {
		t.Fatalf("system messages = %v, want %v", msgs, want)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, msgs[i], want[i])
		}
	}
}
