/*
Package message contains the persisted chat message model and its store adapter.

Messages are append-only: they are inserted once on the realtime send path and
never mutated or deleted. History retrieval is by room, newest-first capped.
*/
package message

import (
	"time"
)

// Room kind tags stored alongside each message.
const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"
)

// Message represents one persisted chat message.
type Message struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	RoomID string `json:"room_id"`

	// RoomType tags the target room kind, "public" or "private".
	RoomType string `json:"room_type"`

	// Content is the optional text body.
	Content string `json:"content,omitempty"`

	// MediaKey is the optional storage key of an attached media object.
	MediaKey string `json:"media_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
