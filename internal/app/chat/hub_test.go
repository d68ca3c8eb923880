package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"

	"roomchat/internal/app/message"
	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

// fakeRoomStore keeps rooms in memory and mirrors the store adapter's
// membership classification.
type fakeRoomStore struct {
	publicRooms  map[string]*room.PublicRoom
	privateRooms map[string]*room.PrivateRoom
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{
		publicRooms:  make(map[string]*room.PublicRoom),
		privateRooms: make(map[string]*room.PrivateRoom),
	}
}

func (s *fakeRoomStore) JoinPublic(_ context.Context, roomID, userID string) (*room.PublicRoom, error) {
	r, ok := s.publicRooms[roomID]
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	switch r.MembershipOf(userID) {
	case room.MembershipBanned:
		return nil, errs.NewError(errs.ErrBannedFromRoom)
	case room.MembershipMember:
		return r, nil
	}

	if r.MaxMembers > 0 && len(r.Members) >= r.MaxMembers {
		return nil, errs.NewError(errs.ErrRoomIsFull)
	}

	r.Members = append(r.Members, userID)
	return r, nil
}

func (s *fakeRoomStore) PublicMembership(_ context.Context, roomID, userID string) (room.Membership, error) {
	r, ok := s.publicRooms[roomID]
	if !ok {
		return room.MembershipNone, errs.NewError(errs.ErrRoomNotFound)
	}
	return r.MembershipOf(userID), nil
}

func (s *fakeRoomStore) FetchPrivate(_ context.Context, id string) (*room.PrivateRoom, error) {
	r, ok := s.privateRooms[id]
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}
	return r, nil
}

// fakeMessageStore records inserts and can be told to fail.
type fakeMessageStore struct {
	inserted []message.Message
	failNext bool
}

func (s *fakeMessageStore) Insert(_ context.Context, m message.Message) (*message.Message, error) {
	if s.failNext {
		s.failNext = false
		return nil, errors.New("insert failed")
	}

	m.ID = fmt.Sprintf("msg-%d", len(s.inserted)+1)
	s.inserted = append(s.inserted, m)
	return &m, nil
}

type fakeUserStore struct {
	users map[string]*user.User
}

func (s *fakeUserStore) FetchByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	return u, nil
}

type testEnv struct {
	hub      *Hub
	rooms    *fakeRoomStore
	messages *fakeMessageStore
	users    *fakeUserStore
}

func newTestEnv() *testEnv {
	rooms := newFakeRoomStore()
	messages := &fakeMessageStore{}
	users := &fakeUserStore{users: make(map[string]*user.User)}

	return &testEnv{
		hub:      NewHub(rooms, messages, users),
		rooms:    rooms,
		messages: messages,
		users:    users,
	}
}

func (env *testEnv) addPublicRoom(id string, members, banned []string, maxMembers int) {
	env.rooms.publicRooms[id] = &room.PublicRoom{
		ID:         id,
		Name:       "room " + id,
		MaxMembers: maxMembers,
		Members:    slices.Clone(members),
		BanList:    slices.Clone(banned),
	}
}

func (env *testEnv) addPrivateRoom(id, member1, member2 string) {
	env.rooms.privateRooms[id] = &room.PrivateRoom{ID: id, Member1: member1, Member2: member2}
	env.users.users[member1] = &user.User{ID: member1, IsActive: true}
	env.users.users[member2] = &user.User{ID: member2, IsActive: true}
}

// connect registers a client backed by no transport; tests read its queued
// frames directly from the send channel.
func (env *testEnv) connect(connID, userID string) *Client {
	c := NewClient(env.hub, nil, connID, userID)
	env.hub.Register(c)
	drainEvents(c)
	return c
}

func dispatch(t *testing.T, env *testEnv, c *Client, name string, payload any) {
	t.Helper()

	raw, err := json.Marshal(Event{Name: name, Data: payload})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	env.hub.Dispatch(context.Background(), c, raw)
}

type receivedEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func drainEvents(c *Client) []receivedEvent {
	var events []receivedEvent

	for {
		select {
		case raw := <-c.send:
			var ev receivedEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				continue
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventsNamed(events []receivedEvent, name string) []receivedEvent {
	var matched []receivedEvent
	for _, ev := range events {
		if ev.Name == name {
			matched = append(matched, ev)
		}
	}
	return matched
}

func requireErrorEvent(t *testing.T, c *Client, wantCode int) {
	t.Helper()

	errorEvents := eventsNamed(drainEvents(c), EventError)
	if len(errorEvents) != 1 {
		t.Fatalf("got %d error events, want 1", len(errorEvents))
	}

	var payload ErrorPayload
	if err := json.Unmarshal(errorEvents[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}

	if payload.Code != wantCode {
		t.Fatalf("error code = %d, want %d", payload.Code, wantCode)
	}
}

func TestHub_RegisterBroadcastsClientCount(t *testing.T) {
	env := newTestEnv()

	c1 := NewClient(env.hub, nil, "conn-1", "user-1")
	env.hub.Register(c1)

	events := eventsNamed(drainEvents(c1), EventClientCount)
	if len(events) != 1 {
		t.Fatalf("got %d client_count events, want 1", len(events))
	}

	var count int
	if err := json.Unmarshal(events[0].Data, &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count != 1 {
		t.Errorf("client_count = %d, want 1", count)
	}

	c2 := NewClient(env.hub, nil, "conn-2", "user-2")
	env.hub.Register(c2)

	events = eventsNamed(drainEvents(c1), EventClientCount)
	if len(events) != 1 {
		t.Fatalf("got %d client_count events after second connect, want 1", len(events))
	}
	if err := json.Unmarshal(events[0].Data, &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count != 2 {
		t.Errorf("client_count = %d, want 2", count)
	}
}

func TestHub_JoinPublicRoom(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	if got := env.hub.Registry().CountOf("room-1"); got != 1 {
		t.Errorf("registry count = %d, want 1", got)
	}

	if !slices.Contains(env.rooms.publicRooms["room-1"].Members, "user-1") {
		t.Error("store membership was not updated")
	}

	events := drainEvents(c)
	if got := eventsNamed(events, EventRoomCount); len(got) != 1 {
		t.Errorf("got %d room_count events, want 1", len(got))
	}
	if got := eventsNamed(events, EventUserJoined); len(got) != 1 {
		t.Errorf("got %d user_joined events, want 1", len(got))
	}
}

func TestHub_RejoinEmitsNoDuplicateUserJoined(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})
	drainEvents(c)

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	if got := env.hub.Registry().CountOf("room-1"); got != 1 {
		t.Errorf("registry count after rejoin = %d, want 1", got)
	}

	events := drainEvents(c)
	if got := eventsNamed(events, EventUserJoined); len(got) != 0 {
		t.Errorf("got %d user_joined events on rejoin, want 0", len(got))
	}
	if got := eventsNamed(events, EventRoomCount); len(got) != 1 {
		t.Errorf("got %d room_count events on rejoin, want 1", len(got))
	}
}

func TestHub_JoinPublicRoomBanned(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, []string{"user-1"}, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	requireErrorEvent(t, c, errs.ErrBannedFromRoom)

	if got := env.hub.Registry().CountOf("room-1"); got != 0 {
		t.Errorf("registry count = %d, want 0 (banned user admitted)", got)
	}
}

func TestHub_JoinPublicRoomFull(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", []string{"user-2"}, nil, 1)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	requireErrorEvent(t, c, errs.ErrRoomIsFull)

	if got := env.hub.Registry().CountOf("room-1"); got != 0 {
		t.Errorf("registry count = %d, want 0", got)
	}
}

func TestHub_JoinPublicRoomNotFound(t *testing.T) {
	env := newTestEnv()

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-missing", UserID: "user-1"})

	requireErrorEvent(t, c, errs.ErrRoomNotFound)
}

func TestHub_PayloadIdentityMismatch(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-2"})

	requireErrorEvent(t, c, errs.ErrUnauthorized)

	if got := env.hub.Registry().CountOf("room-1"); got != 0 {
		t.Errorf("registry count = %d, want 0", got)
	}
}

func TestHub_InvalidFrame(t *testing.T) {
	env := newTestEnv()

	c := env.connect("conn-1", "user-1")

	env.hub.Dispatch(context.Background(), c, []byte("{not json"))

	requireErrorEvent(t, c, errs.ErrInvalidJSONFormat)
}

func TestHub_UnsupportedEvent(t *testing.T) {
	env := newTestEnv()

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, "teleport", RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	requireErrorEvent(t, c, errs.ErrInvalidParams)
}

func TestHub_SendPublicMessage(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	sender := env.connect("conn-1", "user-1")
	listener := env.connect("conn-2", "user-2")
	drainEvents(sender)

	dispatch(t, env, sender, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})
	dispatch(t, env, listener, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-2"})
	drainEvents(sender)
	drainEvents(listener)

	dispatch(t, env, sender, EventSendPublicMessage, SendMessagePayload{
		RoomID: "room-1", UserID: "user-1", Message: "hello",
	})

	if len(env.messages.inserted) != 1 {
		t.Fatalf("got %d persisted messages, want 1", len(env.messages.inserted))
	}
	if env.messages.inserted[0].RoomType != message.RoomTypePublic {
		t.Errorf("room type = %q, want %q", env.messages.inserted[0].RoomType, message.RoomTypePublic)
	}

	for _, c := range []*Client{sender, listener} {
		events := eventsNamed(drainEvents(c), EventMessage)
		if len(events) != 1 {
			t.Fatalf("client %s got %d message events, want 1", c.ID(), len(events))
		}

		var payload MessagePayload
		if err := json.Unmarshal(events[0].Data, &payload); err != nil {
			t.Fatalf("unmarshal message payload: %v", err)
		}
		if payload.Content != "hello" {
			t.Errorf("content = %q, want %q", payload.Content, "hello")
		}
		if payload.SID != "conn-1" {
			t.Errorf("sid = %q, want %q", payload.SID, "conn-1")
		}
		if payload.UserID != "user-1" {
			t.Errorf("user_id = %q, want %q", payload.UserID, "user-1")
		}
	}
}

func TestHub_SendPublicMessageNotMember(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventSendPublicMessage, SendMessagePayload{
		RoomID: "room-1", UserID: "user-1", Message: "hello",
	})

	requireErrorEvent(t, c, errs.ErrNotRoomMember)

	if len(env.messages.inserted) != 0 {
		t.Errorf("got %d persisted messages, want 0", len(env.messages.inserted))
	}
}

func TestHub_SendPublicMessageBanned(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, []string{"user-1"}, 0)

	c := env.connect("conn-1", "user-1")

	dispatch(t, env, c, EventSendPublicMessage, SendMessagePayload{
		RoomID: "room-1", UserID: "user-1", Message: "hello",
	})

	requireErrorEvent(t, c, errs.ErrBannedFromRoom)

	if len(env.messages.inserted) != 0 {
		t.Errorf("got %d persisted messages, want 0", len(env.messages.inserted))
	}
}

func TestHub_SendPublicMessageStoreFailure(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", []string{"user-1", "user-2"}, nil, 0)

	sender := env.connect("conn-1", "user-1")
	listener := env.connect("conn-2", "user-2")
	drainEvents(sender)

	dispatch(t, env, sender, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})
	dispatch(t, env, listener, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-2"})
	drainEvents(sender)
	drainEvents(listener)

	env.messages.failNext = true

	dispatch(t, env, sender, EventSendPublicMessage, SendMessagePayload{
		RoomID: "room-1", UserID: "user-1", Message: "hello",
	})

	// The failure surfaces to the sender only; nothing is fanned out.
	requireErrorEvent(t, sender, errs.ErrStoreFailure)

	if got := eventsNamed(drainEvents(listener), EventMessage); len(got) != 0 {
		t.Errorf("listener got %d message events after store failure, want 0", len(got))
	}
}

func TestHub_PrivateRoomFlow(t *testing.T) {
	env := newTestEnv()
	env.addPrivateRoom("pair-1", "user-1", "user-2")

	c1 := env.connect("conn-1", "user-1")
	c2 := env.connect("conn-2", "user-2")
	drainEvents(c1)

	dispatch(t, env, c1, EventJoinPrivateRoom, RoomEventPayload{RoomID: "pair-1", UserID: "user-1"})
	dispatch(t, env, c2, EventJoinPrivateRoom, RoomEventPayload{RoomID: "pair-1", UserID: "user-2"})
	drainEvents(c1)
	drainEvents(c2)

	dispatch(t, env, c1, EventSendPrivateMessage, SendMessagePayload{
		RoomID: "pair-1", UserID: "user-1", Message: "hi there",
	})

	if len(env.messages.inserted) != 1 {
		t.Fatalf("got %d persisted messages, want 1", len(env.messages.inserted))
	}
	if env.messages.inserted[0].RoomType != message.RoomTypePrivate {
		t.Errorf("room type = %q, want %q", env.messages.inserted[0].RoomType, message.RoomTypePrivate)
	}

	events := eventsNamed(drainEvents(c2), EventMessage)
	if len(events) != 1 {
		t.Fatalf("peer got %d message events, want 1", len(events))
	}

	var payload MessagePayload
	if err := json.Unmarshal(events[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal message payload: %v", err)
	}
	if payload.MessageID == "" {
		t.Error("private message event has no message_id")
	}
	if payload.Content != "hi there" {
		t.Errorf("content = %q, want %q", payload.Content, "hi there")
	}
}

func TestHub_JoinPrivateRoomNonMember(t *testing.T) {
	env := newTestEnv()
	env.addPrivateRoom("pair-1", "user-1", "user-2")

	outsider := env.connect("conn-3", "user-3")

	dispatch(t, env, outsider, EventJoinPrivateRoom, RoomEventPayload{RoomID: "pair-1", UserID: "user-3"})

	requireErrorEvent(t, outsider, errs.ErrNotRoomMember)

	if got := env.hub.Registry().CountOf("pair-1"); got != 0 {
		t.Errorf("registry count = %d, want 0", got)
	}
}

func TestHub_LeaveRoom(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)

	c1 := env.connect("conn-1", "user-1")
	c2 := env.connect("conn-2", "user-2")
	drainEvents(c1)

	dispatch(t, env, c1, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})
	dispatch(t, env, c2, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-2"})
	drainEvents(c1)
	drainEvents(c2)

	dispatch(t, env, c1, EventLeaveRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})

	if got := env.hub.Registry().CountOf("room-1"); got != 1 {
		t.Errorf("registry count = %d, want 1", got)
	}

	events := drainEvents(c2)
	if got := eventsNamed(events, EventUserLeft); len(got) != 1 {
		t.Errorf("remaining member got %d user_left events, want 1", len(got))
	}

	roomCounts := eventsNamed(events, EventRoomCount)
	if len(roomCounts) != 1 {
		t.Fatalf("remaining member got %d room_count events, want 1", len(roomCounts))
	}

	var count int
	if err := json.Unmarshal(roomCounts[0].Data, &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count != 1 {
		t.Errorf("room_count = %d, want 1", count)
	}
}

func TestHub_UnregisterSweepsSubscriptions(t *testing.T) {
	env := newTestEnv()
	env.addPublicRoom("room-1", nil, nil, 0)
	env.addPublicRoom("room-2", nil, nil, 0)

	c1 := env.connect("conn-1", "user-1")
	c2 := env.connect("conn-2", "user-2")
	drainEvents(c1)

	dispatch(t, env, c1, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-1"})
	dispatch(t, env, c1, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-2", UserID: "user-1"})
	dispatch(t, env, c2, EventJoinPublicRoom, RoomEventPayload{RoomID: "room-1", UserID: "user-2"})
	drainEvents(c1)
	drainEvents(c2)

	// Transport drops conn-1 without a leave_room for either room.
	env.hub.Unregister(c1)

	if got := env.hub.Registry().CountOf("room-1"); got != 1 {
		t.Errorf("room-1 count = %d, want 1", got)
	}
	if got := env.hub.Registry().CountOf("room-2"); got != 0 {
		t.Errorf("room-2 count = %d, want 0", got)
	}
	if got := env.hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	events := drainEvents(c2)
	if got := eventsNamed(events, EventUserLeft); len(got) != 1 {
		t.Errorf("remaining member got %d user_left events, want 1", len(got))
	}
	if got := eventsNamed(events, EventClientCount); len(got) != 1 {
		t.Errorf("remaining member got %d client_count events, want 1", len(got))
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	env := newTestEnv()

	c := env.connect("conn-1", "user-1")

	env.hub.Unregister(c)
	env.hub.Unregister(c)

	if got := env.hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}
