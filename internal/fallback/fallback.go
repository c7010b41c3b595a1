// Package fallback is the out-of-band collaborator for hosts that cannot keep
// a persistent connection. Rooms are mirrored as one JSON file each; clients
// poll instead of receiving pushes. The files round-trip the same room shape
// the websocket protocol uses.
package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/samber/lo"

	"github.com/quizcast/quizcast/internal/quiz"
)

var ErrNotFound = errors.New("room snapshot not found")
var ErrBadRoomID = errors.New("invalid room id")

var roomIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,64}$`)

// Summary is one line of the fallback listing.
type Summary struct {
	ID         string    `json:"id"`
	Active     bool      `json:"active"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewStore creates the storage directory if needed. ttl is the staleness
// cutoff applied when listing.
func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the stored room JSON verbatim.
func (s *Store) Get(roomID string) (json.RawMessage, error) {
	path, err := s.path(roomID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read room snapshot: %w", err)
	}
	return data, nil
}

// Update replaces the stored room wholesale, stamping lastActivity
// server-side so polling clients cannot forge freshness.
func (s *Store) Update(roomID string, data []byte) error {
	path, err := s.path(roomID)
	if err != nil {
		return err
	}

	var room map[string]json.RawMessage
	if err := json.Unmarshal(data, &room); err != nil {
		return fmt.Errorf("decode room snapshot: %w", err)
	}
	if room == nil {
		// A JSON null decodes into a nil map without error.
		return errors.New("decode room snapshot: not an object")
	}
	stamp, err := json.Marshal(s.now())
	if err != nil {
		return fmt.Errorf("encode timestamp: %w", err)
	}
	room["lastActivity"] = stamp

	out, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room snapshot: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write room snapshot: %w", err)
	}
	return nil
}

// List returns summaries for rooms updated within the staleness cutoff.
func (s *Store) List() ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "room_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list room snapshots: %w", err)
	}

	cutoff := s.now().Add(-s.ttl)
	summaries := lo.FilterMap(paths, func(path string, _ int) (Summary, bool) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Summary{}, false
		}
		var room struct {
			ID           string     `json:"id"`
			Phase        quiz.Phase `json:"phase"`
			LastActivity time.Time  `json:"lastActivity"`
		}
		if err := json.Unmarshal(data, &room); err != nil {
			return Summary{}, false
		}
		if !room.LastActivity.After(cutoff) {
			return Summary{}, false
		}
		return Summary{
			ID:         room.ID,
			Active:     room.Phase == quiz.PhaseActive,
			LastUpdate: room.LastActivity,
		}, true
	})
	return summaries, nil
}

func (s *Store) path(roomID string) (string, error) {
	if !roomIDPattern.MatchString(roomID) {
		return "", ErrBadRoomID
	}
	return filepath.Join(s.dir, "room_"+roomID+".json"), nil
}
