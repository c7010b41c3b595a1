package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_AssignsIDAndTimestamp(t *testing.T) {
	b := New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	got := b.Submit(Entry{CorrectCount: 5, TotalCount: 10, SubmitterInfo: "anna"})

	assert.NotEmpty(t, got.ResultID)
	assert.Equal(t, now, got.RecordedAt)
	assert.Equal(t, 1, b.Len())
}

func TestTopN_OrdersByRatioWithStableTies(t *testing.T) {
	b := New()

	first := b.Submit(Entry{CorrectCount: 9, TotalCount: 10, SubmitterInfo: "first-90"})
	mid := b.Submit(Entry{CorrectCount: 5, TotalCount: 10, SubmitterInfo: "fifty"})
	second := b.Submit(Entry{CorrectCount: 18, TotalCount: 20, SubmitterInfo: "second-90"})

	top := b.TopN(3)
	require.Len(t, top, 3)

	// Both 0.9 entries in submission order, then the 0.5 entry.
	assert.Equal(t, first.ResultID, top[0].ResultID)
	assert.Equal(t, second.ResultID, top[1].ResultID)
	assert.Equal(t, mid.ResultID, top[2].ResultID)
}

func TestTopN_ClampsToAvailable(t *testing.T) {
	b := New()
	b.Submit(Entry{CorrectCount: 1, TotalCount: 2})

	assert.Len(t, b.TopN(TopSize), 1)
	assert.Empty(t, New().TopN(TopSize))
}

func TestSubmit_RetainsNewestThousand(t *testing.T) {
	b := New()

	for i := 0; i <= MaxRetained; i++ {
		b.Submit(Entry{CorrectCount: 1, TotalCount: 1, SubmitterInfo: fmt.Sprintf("p%d", i)})
	}

	require.Equal(t, MaxRetained, b.Len())

	// Every retained entry ties at ratio 1.0, so the stable ranking preserves
	// insertion order and the first submission must be gone.
	top := b.TopN(MaxRetained)
	assert.Equal(t, "p1", top[0].SubmitterInfo)
	assert.Equal(t, fmt.Sprintf("p%d", MaxRetained), top[len(top)-1].SubmitterInfo)
}

func TestRatio_ZeroTotalRanksLast(t *testing.T) {
	b := New()

	zero := b.Submit(Entry{CorrectCount: 10, TotalCount: 0, SubmitterInfo: "empty"})
	scored := b.Submit(Entry{CorrectCount: 1, TotalCount: 10, SubmitterInfo: "low"})

	assert.Equal(t, float64(0), zero.Ratio())

	top := b.TopN(2)
	require.Len(t, top, 2)
	assert.Equal(t, scored.ResultID, top[0].ResultID)
	assert.Equal(t, zero.ResultID, top[1].ResultID)
}
