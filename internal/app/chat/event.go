/*
Package chat contains the core logic for live chat sessions.

This file defines the realtime event protocol: the wire envelope, the event
names exchanged with clients, and the payload schemas. Inbound payloads are
validated at this boundary before any domain logic runs.
*/
package chat

import (
	"encoding/json"

	"roomchat/internal/pkg/errs"
)

// Client-to-server event names.
const (
	EventJoinPublicRoom     = "joining_public_room"
	EventJoinPrivateRoom    = "joining_private_room"
	EventLeaveRoom          = "leave_room"
	EventSendPublicMessage  = "send_public_message"
	EventSendPrivateMessage = "send_private_message"
)

// Server-to-client event names.
const (
	EventClientCount = "client_count"
	EventRoomCount   = "room_count"
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventMessage     = "message"
	EventError       = "error"
)

// Event is the wire envelope for every realtime message in both directions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// inboundEvent defers payload decoding until the event name is known.
type inboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RoomEventPayload is the payload of join and leave events.
type RoomEventPayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// Validate rejects payloads missing required identifier fields.
func (p RoomEventPayload) Validate() *errs.CustomError {
	if p.RoomID == "" || p.UserID == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// SendMessagePayload is the payload of send_public_message and send_private_message.
type SendMessagePayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	MediaKey string `json:"media_key,omitempty"`
}

// Validate rejects payloads missing required fields. A message may carry text,
// a media key, or both, but never neither.
func (p SendMessagePayload) Validate() *errs.CustomError {
	if p.RoomID == "" || p.UserID == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if p.Message == "" && p.MediaKey == "" {
		return errs.NewError(errs.ErrEmptyMessage)
	}
	if len(p.Message) > MaxContentBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}
	return nil
}

// MessagePayload is the fan-out payload of the message event.
type MessagePayload struct {
	// SID is the sender's live connection identifier.
	SID string `json:"sid"`

	Content string `json:"content,omitempty"`

	// MessageID is the persisted message identifier; set on private messages.
	MessageID string `json:"message_id,omitempty"`

	MediaKey string `json:"media_key,omitempty"`
	UserID   string `json:"user_id"`
}

// ErrorPayload is the payload of error events emitted to the requester only.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
