package chat

import (
	"sync"
	"testing"
)

func TestRegistry_JoinAndCount(t *testing.T) {
	reg := NewRegistry()

	count, added := reg.Join("room-a", "conn-1")
	if count != 1 || !added {
		t.Fatalf("Join() = (%d, %v), want (1, true)", count, added)
	}

	count, added = reg.Join("room-a", "conn-2")
	if count != 2 || !added {
		t.Fatalf("Join() = (%d, %v), want (2, true)", count, added)
	}

	if got := reg.CountOf("room-a"); got != 2 {
		t.Errorf("CountOf() = %d, want 2", got)
	}

	if got := reg.CountOf("room-unknown"); got != 0 {
		t.Errorf("CountOf(unknown) = %d, want 0", got)
	}
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	reg.Join("room-a", "conn-1")

	count, added := reg.Join("room-a", "conn-1")
	if count != 1 {
		t.Errorf("re-Join() count = %d, want 1", count)
	}
	if added {
		t.Error("re-Join() added = true, want false")
	}
}

func TestRegistry_LeaveFloorsAtZero(t *testing.T) {
	reg := NewRegistry()

	if got := reg.Leave("room-a", "conn-1"); got != 0 {
		t.Errorf("Leave(unknown room) = %d, want 0", got)
	}

	reg.Join("room-a", "conn-1")

	if got := reg.Leave("room-a", "conn-2"); got != 1 {
		t.Errorf("Leave(non-member) = %d, want 1", got)
	}

	if got := reg.Leave("room-a", "conn-1"); got != 0 {
		t.Errorf("Leave() = %d, want 0", got)
	}

	// Repeated leave on an already empty room stays at zero.
	if got := reg.Leave("room-a", "conn-1"); got != 0 {
		t.Errorf("repeated Leave() = %d, want 0", got)
	}
}

func TestRegistry_EmptyRoomsArePruned(t *testing.T) {
	reg := NewRegistry()

	reg.Join("room-a", "conn-1")
	reg.Leave("room-a", "conn-1")

	reg.mu.RLock()
	_, roomExists := reg.rooms["room-a"]
	_, connExists := reg.conns["conn-1"]
	reg.mu.RUnlock()

	if roomExists {
		t.Error("empty room entry was not pruned")
	}
	if connExists {
		t.Error("empty connection entry was not pruned")
	}
}

func TestRegistry_DisconnectAll(t *testing.T) {
	reg := NewRegistry()

	reg.Join("room-a", "conn-1")
	reg.Join("room-a", "conn-2")
	reg.Join("room-b", "conn-1")

	affected := reg.DisconnectAll("conn-1")

	if len(affected) != 2 {
		t.Fatalf("DisconnectAll() affected %d rooms, want 2", len(affected))
	}
	if got := affected["room-a"]; got != 1 {
		t.Errorf("affected[room-a] = %d, want 1", got)
	}
	if got := affected["room-b"]; got != 0 {
		t.Errorf("affected[room-b] = %d, want 0", got)
	}

	if got := reg.CountOf("room-a"); got != 1 {
		t.Errorf("CountOf(room-a) after disconnect = %d, want 1", got)
	}
	if got := reg.CountOf("room-b"); got != 0 {
		t.Errorf("CountOf(room-b) after disconnect = %d, want 0", got)
	}
}

func TestRegistry_DisconnectAllUnknownConnection(t *testing.T) {
	reg := NewRegistry()

	affected := reg.DisconnectAll("conn-ghost")
	if len(affected) != 0 {
		t.Errorf("DisconnectAll(unknown) affected %d rooms, want 0", len(affected))
	}
}

func TestRegistry_Subscribers(t *testing.T) {
	reg := NewRegistry()

	reg.Join("room-a", "conn-1")
	reg.Join("room-a", "conn-2")

	subs := reg.Subscribers("room-a")
	if len(subs) != 2 {
		t.Fatalf("Subscribers() returned %d entries, want 2", len(subs))
	}

	seen := make(map[string]bool)
	for _, id := range subs {
		seen[id] = true
	}
	if !seen["conn-1"] || !seen["conn-2"] {
		t.Errorf("Subscribers() = %v, want conn-1 and conn-2", subs)
	}

	if got := reg.Subscribers("room-unknown"); len(got) != 0 {
		t.Errorf("Subscribers(unknown) = %v, want empty", got)
	}
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()

	const workers = 32
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()

			connID := string(rune('a' + id%26))
			for i := 0; i < iterations; i++ {
				reg.Join("room-shared", connID)
				reg.CountOf("room-shared")
				reg.Subscribers("room-shared")
				reg.Leave("room-shared", connID)
			}
		}(w)
	}

	wg.Wait()

	// After every worker has paired each Join with a Leave, the room is empty.
	if got := reg.CountOf("room-shared"); got != 0 {
		t.Errorf("CountOf() after soak = %d, want 0", got)
	}
}

func TestRegistry_DisconnectWithoutLeaveRestoresCounts(t *testing.T) {
	reg := NewRegistry()

	reg.Join("room-a", "conn-1")
	reg.Join("room-a", "conn-2")

	// conn-2 disappears without ever sending leave_room.
	reg.DisconnectAll("conn-2")

	if got := reg.CountOf("room-a"); got != 1 {
		t.Errorf("CountOf() = %d, want 1", got)
	}

	// A later join by the same identity on a fresh connection counts once.
	count, added := reg.Join("room-a", "conn-3")
	if count != 2 || !added {
		t.Errorf("Join() after disconnect = (%d, %v), want (2, true)", count, added)
	}
}
