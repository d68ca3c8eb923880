/*
Package chat contains the core logic for live chat sessions.

This file defines the Hub, the session manager owning every live connection.
It is the single place that combines persisted-membership checks with the live
Registry and the message store: registry mutations happen only after the store
confirms permission, and fan-out happens only after successful persistence.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/app/message"
	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// RoomStore is the persisted-room capability surface the Hub consumes.
type RoomStore interface {
	// JoinPublic atomically adds the user to the room's persisted membership,
	// classifying bans, caps, and missing rooms as errors.
	JoinPublic(ctx context.Context, roomID, userID string) (*room.PublicRoom, error)

	// PublicMembership classifies the user's persisted standing in the room.
	PublicMembership(ctx context.Context, roomID, userID string) (room.Membership, error)

	// FetchPrivate returns the private room with the given identifier.
	FetchPrivate(ctx context.Context, id string) (*room.PrivateRoom, error)
}

// MessageStore is the append-only persistence surface the Hub consumes.
type MessageStore interface {
	Insert(ctx context.Context, m message.Message) (*message.Message, error)
}

// UserStore resolves user references on the private-message path.
type UserStore interface {
	FetchByID(ctx context.Context, id string) (*user.User, error)
}

// Hub owns all live connections and routes their events. Each connection's
// events are dispatched serially from its own read goroutine, preserving
// per-connection ordering; the Hub itself only guards its connection table.
type Hub struct {
	registry *Registry

	rooms    RoomStore
	messages MessageStore
	users    UserStore

	// mu protects concurrent access to the clients map.
	mu sync.RWMutex

	// clients maps connection ID to the live client.
	clients map[string]*Client

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub with an empty registry and connection table.
func NewHub(rooms RoomStore, messages MessageStore, users UserStore) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		registry: NewRegistry(),
		rooms:    rooms,
		messages: messages,
		users:    users,
		clients:  make(map[string]*Client),
		logger:   hubLogger,
	}
}

// Registry exposes the live subscription registry for read-side consumers.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Register adds a new live connection and broadcasts the updated client count
// to every connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", c.userID).
		Int("total_clients", total).
		Msg("Client connected.")

	h.emitToAll(Event{Name: EventClientCount, Data: total})
}

// Unregister removes a live connection, sweeps it out of every room it was
// subscribed to, and notifies the remaining members of each affected room.
// Subscriptions never outlive the connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.id]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()

	affected := h.registry.DisconnectAll(c.id)

	for roomID, count := range affected {
		h.emitToRoom(roomID, Event{Name: EventRoomCount, Data: count})
		h.emitToRoom(roomID, Event{Name: EventUserLeft, Data: c.userID})
	}

	h.logger.Info().
		Str("conn_id", c.id).
		Str("user_id", c.userID).
		Int("rooms_left", len(affected)).
		Int("total_clients", total).
		Msg("Client disconnected.")

	h.emitToAll(Event{Name: EventClientCount, Data: total})
}

// Dispatch parses a raw inbound frame, validates the payload at the boundary,
// and routes the event. Called from the client's read goroutine only.
func (h *Hub) Dispatch(ctx context.Context, c *Client, raw []byte) {
	var inbound inboundEvent
	if err := json.Unmarshal(raw, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch inbound.Name {
	case EventJoinPublicRoom:
		var payload RoomEventPayload
		if !decodePayload(c, inbound.Data, &payload) {
			return
		}
		h.handleJoinPublic(ctx, c, payload)

	case EventJoinPrivateRoom:
		var payload RoomEventPayload
		if !decodePayload(c, inbound.Data, &payload) {
			return
		}
		h.handleJoinPrivate(ctx, c, payload)

	case EventLeaveRoom:
		var payload RoomEventPayload
		if !decodePayload(c, inbound.Data, &payload) {
			return
		}
		h.handleLeave(c, payload)

	case EventSendPublicMessage:
		var payload SendMessagePayload
		if !decodePayload(c, inbound.Data, &payload) {
			return
		}
		h.handleSendPublic(ctx, c, payload)

	case EventSendPrivateMessage:
		var payload SendMessagePayload
		if !decodePayload(c, inbound.Data, &payload) {
			return
		}
		h.handleSendPrivate(ctx, c, payload)

	default:
		c.logger.Warn().Str("event", inbound.Name).Msg("Client sent unsupported event")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// decodePayload unmarshals and validates an inbound payload, emitting an error
// event to the sender on failure.
func decodePayload[P interface{ Validate() *errs.CustomError }](c *Client, data json.RawMessage, dst *P) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid event payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return false
	}

	if customErr := (*dst).Validate(); customErr != nil {
		c.SendError(customErr)
		return false
	}

	return true
}

// authorize verifies the payload's user identifier matches the identity the
// connection authenticated as.
func (h *Hub) authorize(c *Client, userID string) bool {
	if userID != c.userID {
		c.logger.Warn().
			Str("claimed_user_id", userID).
			Msg("Payload user does not match authenticated identity.")
		c.SendError(errs.NewError(errs.ErrUnauthorized))
		return false
	}
	return true
}

// handleJoinPublic admits the connection to a public room. The persisted
// member add (ban check, cap check) happens first; only a confirmed join
// mutates the registry, so an unauthorized subscriber is never admitted live.
func (h *Hub) handleJoinPublic(ctx context.Context, c *Client, p RoomEventPayload) {
	if !h.authorize(c, p.UserID) {
		return
	}

	if _, err := h.rooms.JoinPublic(ctx, p.RoomID, p.UserID); err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	count, added := h.registry.Join(p.RoomID, c.id)

	h.logger.Info().
		Str("room_id", p.RoomID).
		Str("user_id", p.UserID).
		Int("room_count", count).
		Msg("User joined public room.")

	h.emitToRoom(p.RoomID, Event{Name: EventRoomCount, Data: count})
	if added {
		h.emitToRoom(p.RoomID, Event{Name: EventUserJoined, Data: p.UserID})
	}
}

// handleJoinPrivate admits the connection to its one-to-one room. Membership
// is fixed: the identity must be one of the two members recorded at creation.
func (h *Hub) handleJoinPrivate(ctx context.Context, c *Client, p RoomEventPayload) {
	if !h.authorize(c, p.UserID) {
		return
	}

	privateRoom, err := h.rooms.FetchPrivate(ctx, p.RoomID)
	if err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	if !privateRoom.HasMember(p.UserID) {
		c.SendError(errs.NewError(errs.ErrNotRoomMember))
		return
	}

	_, added := h.registry.Join(p.RoomID, c.id)

	h.logger.Info().
		Str("room_id", p.RoomID).
		Str("user_id", p.UserID).
		Msg("User joined private room.")

	if added {
		h.emitToRoom(p.RoomID, Event{Name: EventUserJoined, Data: p.UserID})
	}
}

// handleLeave drops the live subscription and notifies the remaining
// subscribers. Persisted membership is untouched; leaving is a live-state
// operation only.
func (h *Hub) handleLeave(c *Client, p RoomEventPayload) {
	if !h.authorize(c, p.UserID) {
		return
	}

	count := h.registry.Leave(p.RoomID, c.id)

	h.logger.Info().
		Str("room_id", p.RoomID).
		Str("user_id", p.UserID).
		Int("room_count", count).
		Msg("User left room.")

	h.emitToRoom(p.RoomID, Event{Name: EventRoomCount, Data: count})
	h.emitToRoom(p.RoomID, Event{Name: EventUserLeft, Data: p.UserID})
}

// handleSendPublic persists a public message and fans it out to the room's
// live subscribers. The sender must be a persisted member and not banned; the
// fan-out reaches live listeners only, never offline persisted members.
func (h *Hub) handleSendPublic(ctx context.Context, c *Client, p SendMessagePayload) {
	if !h.authorize(c, p.UserID) {
		return
	}

	membership, err := h.rooms.PublicMembership(ctx, p.RoomID, p.UserID)
	if err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	switch membership {
	case room.MembershipBanned:
		c.SendError(errs.NewError(errs.ErrBannedFromRoom))
		return
	case room.MembershipNone:
		c.SendError(errs.NewError(errs.ErrNotRoomMember))
		return
	}

	persisted, err := h.messages.Insert(ctx, message.Message{
		UserID:   p.UserID,
		RoomID:   p.RoomID,
		RoomType: message.RoomTypePublic,
		Content:  p.Message,
		MediaKey: p.MediaKey,
	})
	if err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	h.emitToRoom(p.RoomID, Event{Name: EventMessage, Data: MessagePayload{
		SID:      c.id,
		Content:  persisted.Content,
		MediaKey: persisted.MediaKey,
		UserID:   p.UserID,
	}})
}

// handleSendPrivate persists a private message and fans it out to the pair's
// live subscribers.
func (h *Hub) handleSendPrivate(ctx context.Context, c *Client, p SendMessagePayload) {
	if !h.authorize(c, p.UserID) {
		return
	}

	privateRoom, err := h.rooms.FetchPrivate(ctx, p.RoomID)
	if err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	if !privateRoom.HasMember(p.UserID) {
		c.SendError(errs.NewError(errs.ErrNotRoomMember))
		return
	}

	if _, err := h.users.FetchByID(ctx, privateRoom.PeerOf(p.UserID)); err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	persisted, err := h.messages.Insert(ctx, message.Message{
		UserID:   p.UserID,
		RoomID:   p.RoomID,
		RoomType: message.RoomTypePrivate,
		Content:  p.Message,
		MediaKey: p.MediaKey,
	})
	if err != nil {
		c.SendError(errs.FromError(err))
		return
	}

	h.emitToRoom(p.RoomID, Event{Name: EventMessage, Data: MessagePayload{
		SID:       c.id,
		Content:   persisted.Content,
		MessageID: persisted.ID,
		MediaKey:  persisted.MediaKey,
		UserID:    p.UserID,
	}})
}

// emitToRoom marshals the event once and queues it on every connection
// currently subscribed to the room.
func (h *Hub) emitToRoom(roomID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event", ev.Name).Msg("Error marshaling room event.")
		return
	}

	subscribers := h.registry.Subscribers(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, connID := range subscribers {
		if c, ok := h.clients[connID]; ok {
			c.enqueue(data)
		}
	}
}

// emitToAll marshals the event once and queues it on every live connection.
func (h *Hub) emitToAll(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event", ev.Name).Msg("Error marshaling broadcast event.")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.enqueue(data)
	}
}

// Shutdown closes every live connection's send queue, terminating their write
// pumps. Read pumps observe the closed transport and unregister themselves.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
