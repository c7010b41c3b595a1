package registry

import (
	"slices"
	"testing"
)

func TestBind_LastWriteWins(t *testing.T) {
	r := New()

	r.Bind("c1", "room-a", RoleCandidate)
	r.Bind("c1", "room-b", RoleDirector)

	b, ok := r.Lookup("c1")
	if !ok || b.RoomID != "room-b" || b.Role != RoleDirector {
		t.Fatalf("want (room-b, director), got %+v ok=%v", b, ok)
	}
	if members := r.Members("room-a"); len(members) != 0 {
		t.Fatalf("rebinding should leave the old room, still member of: %v", members)
	}
}

func TestUnbind_ReturnsPriorBinding(t *testing.T) {
	r := New()
	r.Bind("c1", "room-a", RoleDirector)

	prior, ok := r.Unbind("c1")
	if !ok || prior.RoomID != "room-a" || prior.Role != RoleDirector {
		t.Fatalf("want prior (room-a, director), got %+v ok=%v", prior, ok)
	}

	if _, ok := r.Unbind("c1"); ok {
		t.Fatalf("second unbind should report no binding")
	}
	if _, ok := r.Lookup("c1"); ok {
		t.Fatalf("binding should be gone after unbind")
	}
}

func TestMembers(t *testing.T) {
	r := New()
	r.Bind("d1", "room-a", RoleDirector)
	r.Bind("c1", "room-a", RoleCandidate)
	r.Bind("c2", "room-b", RoleCandidate)

	got := r.Members("room-a")
	slices.Sort(got)
	if !slices.Equal(got, []string{"c1", "d1"}) {
		t.Fatalf("want [c1 d1], got %v", got)
	}
	if got := r.Members("missing"); len(got) != 0 {
		t.Fatalf("unknown room should have no members, got %v", got)
	}
}
