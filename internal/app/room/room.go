/*
Package room contains the chat room models and their store adapters.

Two room kinds share a capability surface (fetch by id, check membership) so
the Session Manager never branches on storage shape: PublicRoom carries owned
membership/ban/moderator state, PrivateRoom is a fixed unordered pair of users.
*/
package room

import (
	"slices"
	"time"
)

// Membership classifies a user's persisted standing in a room.
type Membership int

const (
	// MembershipNone means the user is neither a member nor banned.
	MembershipNone Membership = iota

	// MembershipMember means the user is a current member and not banned.
	MembershipMember

	// MembershipBanned means the user is on the ban list. Banned users are
	// never simultaneously members.
	MembershipBanned
)

// PublicRoom represents a named, owner-created room with open membership.
type PublicRoom struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// MaxMembers caps persisted membership; 0 means unlimited.
	MaxMembers int `json:"max_members,omitempty"`

	WelcomeMessage   string `json:"welcome_message,omitempty"`
	Rules            string `json:"rules,omitempty"`
	AllowFileSharing bool   `json:"allow_file_sharing"`

	// AllowMessageHistory gates history retrieval for members.
	AllowMessageHistory bool `json:"allow_message_history"`

	// MaxHistoryMessages caps how many latest messages members may fetch; 0 means no cap.
	MaxHistoryMessages int `json:"max_history_messages,omitempty"`

	Members    []string `json:"members"`
	BanList    []string `json:"ban_list"`
	Moderators []string `json:"moderators"`

	CreatedAt time.Time `json:"created_at"`
}

// MembershipOf classifies the given user against the room's persisted state.
func (r *PublicRoom) MembershipOf(userID string) Membership {
	if slices.Contains(r.BanList, userID) {
		return MembershipBanned
	}
	if slices.Contains(r.Members, userID) {
		return MembershipMember
	}
	return MembershipNone
}

// NormalizePair orders a user pair canonically so (A,B) and (B,A) name the
// same private room. Every stored pair uses this ordering; the store's unique
// pair index backstops it against rows written by other means.
func NormalizePair(userID, peerID string) (string, string) {
	if peerID < userID {
		return peerID, userID
	}
	return userID, peerID
}

// PrivateRoom represents a one-to-one room between exactly two distinct users.
// Membership is fixed at creation and invariant under argument order.
type PrivateRoom struct {
	ID        string    `json:"id"`
	Member1   string    `json:"member1"`
	Member2   string    `json:"member2"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether the given user is one of the two fixed members.
func (r *PrivateRoom) HasMember(userID string) bool {
	return userID == r.Member1 || userID == r.Member2
}

// PeerOf returns the other member of the pair, or "" if userID is not a member.
func (r *PrivateRoom) PeerOf(userID string) string {
	switch userID {
	case r.Member1:
		return r.Member2
	case r.Member2:
		return r.Member1
	default:
		return ""
	}
}
