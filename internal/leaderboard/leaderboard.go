// Package leaderboard keeps the global ranking of completed-session results.
// Entries outlive the room they came from; a reaped room's scores stay ranked.
package leaderboard

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxRetained bounds stored entries; oldest are dropped first.
	MaxRetained = 1000
	// TopSize is how many ranked entries are exposed to clients.
	TopSize = 100
)

type Entry struct {
	ResultID      string    `json:"resultId"`
	CorrectCount  int       `json:"correctCount"`
	TotalCount    int       `json:"totalCount"`
	SubmitterInfo string    `json:"submitterInfo"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// Ratio is the ranking key. A zero TotalCount ranks as zero rather than
// dividing by it.
func (e Entry) Ratio() float64 {
	if e.TotalCount == 0 {
		return 0
	}
	return float64(e.CorrectCount) / float64(e.TotalCount)
}

// Board is owned by the hub loop and is not safe for concurrent use.
type Board struct {
	byInsertion []Entry
	ranked      []Entry
	now         func() time.Time
}

func New() *Board {
	return &Board{now: time.Now}
}

// Submit appends an entry with a generated id and timestamp, trims retention
// to the newest MaxRetained, and re-ranks the retained list. Ranking is a
// stable sort descending by ratio, so ties keep submission order.
func (b *Board) Submit(e Entry) Entry {
	e.ResultID = uuid.NewString()
	e.RecordedAt = b.now()

	b.byInsertion = append(b.byInsertion, e)
	if len(b.byInsertion) > MaxRetained {
		b.byInsertion = b.byInsertion[len(b.byInsertion)-MaxRetained:]
	}

	b.ranked = make([]Entry, len(b.byInsertion))
	copy(b.ranked, b.byInsertion)
	sort.SliceStable(b.ranked, func(i, j int) bool {
		return b.ranked[i].Ratio() > b.ranked[j].Ratio()
	})

	return e
}

// TopN returns the first n ranked entries.
func (b *Board) TopN(n int) []Entry {
	if n > len(b.ranked) {
		n = len(b.ranked)
	}
	out := make([]Entry, n)
	copy(out, b.ranked[:n])
	return out
}

// Len reports how many entries are currently retained.
func (b *Board) Len() int {
	return len(b.byInsertion)
}
