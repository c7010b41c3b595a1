// Package registry tracks which room and role each live connection has bound
// to. Bindings are best-effort metadata for routing; authorization is always
// re-checked against the room's director on each operation.
package registry

type Role string

const (
	RoleDirector  Role = "director"
	RoleCandidate Role = "candidate"
)

type Binding struct {
	RoomID string
	Role   Role
}

// Registry is owned by the hub loop and is not safe for concurrent use.
type Registry struct {
	bindings map[string]Binding            // connection id -> binding
	members  map[string]map[string]struct{} // room id -> connection ids
}

func New() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
		members:  make(map[string]map[string]struct{}),
	}
}

// Bind records or overwrites the (room, role) binding for a connection.
// Last write wins.
func (r *Registry) Bind(connID, roomID string, role Role) {
	if prior, ok := r.bindings[connID]; ok {
		r.dropMember(prior.RoomID, connID)
	}
	r.bindings[connID] = Binding{RoomID: roomID, Role: role}
	if r.members[roomID] == nil {
		r.members[roomID] = make(map[string]struct{})
	}
	r.members[roomID][connID] = struct{}{}
}

// Unbind removes the binding for a connection and reports the prior binding,
// if any, so the caller can decide on teardown.
func (r *Registry) Unbind(connID string) (Binding, bool) {
	prior, ok := r.bindings[connID]
	if !ok {
		return Binding{}, false
	}
	delete(r.bindings, connID)
	r.dropMember(prior.RoomID, connID)
	return prior, true
}

// Lookup returns the current binding for a connection.
func (r *Registry) Lookup(connID string) (Binding, bool) {
	b, ok := r.bindings[connID]
	return b, ok
}

// Members returns the connection ids currently bound to a room, in
// unspecified order.
func (r *Registry) Members(roomID string) []string {
	out := make([]string, 0, len(r.members[roomID]))
	for connID := range r.members[roomID] {
		out = append(out, connID)
	}
	return out
}

func (r *Registry) dropMember(roomID, connID string) {
	delete(r.members[roomID], connID)
	if len(r.members[roomID]) == 0 {
		delete(r.members, roomID)
	}
}
