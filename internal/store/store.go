// Package store holds the in-memory room records. It is the single source of
// truth for room state while the process runs; nothing is persisted.
package store

import (
	"crypto/rand"
	"math/big"

	"github.com/samber/lo"

	"github.com/quizcast/quizcast/internal/quiz"
)

// Summary is the per-room line item sent on get-rooms and room-list pushes.
type Summary struct {
	ID             string `json:"id"`
	CandidateCount int    `json:"candidateCount"`
	Active         bool   `json:"active"`
}

// Store is owned by the hub loop and is not safe for concurrent use.
type Store struct {
	rooms map[string]quiz.Room
}

func New() *Store {
	return &Store{rooms: make(map[string]quiz.Room)}
}

// GenerateID returns a short random room identifier. Collisions only need to
// be unlikely, not impossible; Create retries on the rare hit.
func GenerateID() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	id := make([]byte, 9)
	for i := range id {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		id[i] = charset[num.Int64()]
	}
	return string(id), nil
}

// Create stores a room under the given id, generating one when id is empty.
// An existing room under the same id is overwritten wholesale.
func (s *Store) Create(id string, room quiz.Room) (string, error) {
	if id == "" {
		for {
			generated, err := GenerateID()
			if err != nil {
				return "", err
			}
			if _, taken := s.rooms[generated]; !taken {
				id = generated
				break
			}
		}
	}
	room.ID = id
	s.rooms[id] = room
	return id, nil
}

func (s *Store) Get(id string) (quiz.Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

// Put replaces the stored room wholesale. Rooms are always read-modify-written
// as a unit, there is no partial-field update path.
func (s *Store) Put(id string, room quiz.Room) {
	s.rooms[id] = room
}

func (s *Store) Delete(id string) {
	delete(s.rooms, id)
}

// All returns every stored room, in unspecified order.
func (s *Store) All() []quiz.Room {
	return lo.Values(s.rooms)
}

// ListSummaries returns one Summary per room, in unspecified order.
func (s *Store) ListSummaries() []Summary {
	return lo.Map(lo.Values(s.rooms), func(r quiz.Room, _ int) Summary {
		return Summary{
			ID:             r.ID,
			CandidateCount: len(r.Candidates),
			Active:         r.Phase == quiz.PhaseActive,
		}
	})
}
