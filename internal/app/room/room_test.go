package room

import "testing"

func TestPublicRoom_MembershipOf(t *testing.T) {
	r := &PublicRoom{
		Members: []string{"user-1", "user-2"},
		BanList: []string{"user-3"},
	}

	tests := []struct {
		name   string
		userID string
		want   Membership
	}{
		{"member", "user-1", MembershipMember},
		{"other member", "user-2", MembershipMember},
		{"banned", "user-3", MembershipBanned},
		{"stranger", "user-4", MembershipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.MembershipOf(tt.userID); got != tt.want {
				t.Errorf("MembershipOf(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestPublicRoom_BanWinsOverMembership(t *testing.T) {
	// A user somehow present on both lists is classified as banned.
	r := &PublicRoom{
		Members: []string{"user-1"},
		BanList: []string{"user-1"},
	}

	if got := r.MembershipOf("user-1"); got != MembershipBanned {
		t.Errorf("MembershipOf() = %v, want MembershipBanned", got)
	}
}

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		wantFirst  string
		wantSecond string
	}{
		{"already ordered", "user-1", "user-2", "user-1", "user-2"},
		{"reversed", "user-2", "user-1", "user-1", "user-2"},
		{"uuid ordering", "b7e2", "a1c9", "a1c9", "b7e2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := NormalizePair(tt.a, tt.b)
			if first != tt.wantFirst || second != tt.wantSecond {
				t.Errorf("NormalizePair(%q, %q) = (%q, %q), want (%q, %q)",
					tt.a, tt.b, first, second, tt.wantFirst, tt.wantSecond)
			}
		})
	}
}

func TestNormalizePair_Symmetry(t *testing.T) {
	// Both argument orders name the same pair, so create(A,B) and create(B,A)
	// target the same stored room.
	pairs := [][2]string{
		{"user-1", "user-2"},
		{"3f8a6c2e", "9d41b7aa"},
		{"alice", "bob"},
	}

	for _, p := range pairs {
		f1, s1 := NormalizePair(p[0], p[1])
		f2, s2 := NormalizePair(p[1], p[0])

		if f1 != f2 || s1 != s2 {
			t.Errorf("NormalizePair(%q, %q) = (%q, %q) but reversed = (%q, %q)",
				p[0], p[1], f1, s1, f2, s2)
		}
		if f1 >= s1 {
			t.Errorf("NormalizePair(%q, %q) = (%q, %q), want first < second", p[0], p[1], f1, s1)
		}
	}
}

func TestPrivateRoom_MembershipInvariantUnderNormalization(t *testing.T) {
	// A room stored with the normalized pair still answers membership for both
	// users regardless of which one initiated creation.
	first, second := NormalizePair("user-9", "user-2")
	r := &PrivateRoom{Member1: first, Member2: second}

	if !r.HasMember("user-9") || !r.HasMember("user-2") {
		t.Error("normalized room lost a member")
	}
	if got := r.PeerOf("user-9"); got != "user-2" {
		t.Errorf("PeerOf(user-9) = %q, want %q", got, "user-2")
	}
	if got := r.PeerOf("user-2"); got != "user-9" {
		t.Errorf("PeerOf(user-2) = %q, want %q", got, "user-9")
	}
}

func TestPrivateRoom_HasMember(t *testing.T) {
	r := &PrivateRoom{Member1: "user-1", Member2: "user-2"}

	if !r.HasMember("user-1") {
		t.Error("HasMember(user-1) = false, want true")
	}
	if !r.HasMember("user-2") {
		t.Error("HasMember(user-2) = false, want true")
	}
	if r.HasMember("user-3") {
		t.Error("HasMember(user-3) = true, want false")
	}
}

func TestPrivateRoom_PeerOf(t *testing.T) {
	r := &PrivateRoom{Member1: "user-1", Member2: "user-2"}

	if got := r.PeerOf("user-1"); got != "user-2" {
		t.Errorf("PeerOf(user-1) = %q, want %q", got, "user-2")
	}
	if got := r.PeerOf("user-2"); got != "user-1" {
		t.Errorf("PeerOf(user-2) = %q, want %q", got, "user-1")
	}
	if got := r.PeerOf("user-3"); got != "" {
		t.Errorf("PeerOf(user-3) = %q, want empty", got)
	}
}
