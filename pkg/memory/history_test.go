package memory

import (
	"fmt"
	"testing"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeExchange(i int) (core.Request, core.Result) {
	req := core.NewRequest(core.CapabilityAnalysis, fmt.Sprintf("x = %d", i), core.LanguagePython)
	res := core.SuccessResult(map[string]interface{}{"index": i})
	return req, res
}

func TestBoundedHistoryAppendAndRecent(t *testing.T) {
	h := NewBoundedHistory(5)

	for i := 0; i < 3; i++ {
		req, res := makeExchange(i)
		seq, err := h.Append(req, res)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}

	entries, err := h.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most-recent-last ordering
	assert.Equal(t, uint64(2), entries[0].Seq)
	assert.Equal(t, uint64(3), entries[1].Seq)
}

func TestBoundedHistoryEviction(t *testing.T) {
	const capacity = 5
	h := NewBoundedHistory(capacity)

	// Append well past capacity
	for i := 0; i < capacity*3; i++ {
		req, res := makeExchange(i)
		_, err := h.Append(req, res)
		require.NoError(t, err)
	}

	n, err := h.Len()
	require.NoError(t, err)
	assert.Equal(t, capacity, n, "entry count never exceeds capacity")

	entries, err := h.Recent(capacity * 3)
	require.NoError(t, err)
	require.Len(t, entries, capacity)

	// The survivors are the most recent appends, oldest first
	for i, entry := range entries {
		assert.Equal(t, uint64(capacity*2+i+1), entry.Seq)
	}
}

func TestBoundedHistoryRecentEdgeCases(t *testing.T) {
	h := NewBoundedHistory(3)
	req, res := makeExchange(0)
	_, err := h.Append(req, res)
	require.NoError(t, err)

	t.Run("Zero and negative n", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			entries, err := h.Recent(n)
			require.NoError(t, err)
			assert.Empty(t, entries)
		}
	})

	t.Run("n larger than store", func(t *testing.T) {
		entries, err := h.Recent(10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestBoundedHistorySequenceAcrossClear(t *testing.T) {
	h := NewBoundedHistory(10)

	req, res := makeExchange(0)
	seq, err := h.Append(req, res)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	require.NoError(t, h.Clear())
	n, err := h.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	// Sequence numbering keeps increasing after Clear
	seq, err = h.Append(req, res)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestBoundedHistoryDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewBoundedHistory(0).Capacity())
	assert.Equal(t, DefaultCapacity, NewBoundedHistory(-7).Capacity())
}

func TestSQLiteHistory(t *testing.T) {
	h, err := NewSQLiteHistory(":memory:", 3)
	require.NoError(t, err)
	defer h.Close()

	t.Run("Append evicts beyond capacity", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			req, res := makeExchange(i)
			seq, err := h.Append(req, res)
			require.NoError(t, err)
			assert.Equal(t, uint64(i+1), seq)
		}

		n, err := h.Len()
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		entries, err := h.Recent(10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, uint64(3), entries[0].Seq)
		assert.Equal(t, uint64(5), entries[2].Seq)
		assert.Equal(t, "x = 4", entries[2].Request.Payload)
	})

	t.Run("Recent with non-positive n", func(t *testing.T) {
		entries, err := h.Recent(0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Sequence survives Clear", func(t *testing.T) {
		require.NoError(t, h.Clear())

		req, res := makeExchange(99)
		seq, err := h.Append(req, res)
		require.NoError(t, err)
		assert.Greater(t, seq, uint64(5), "AUTOINCREMENT keeps numbering forward")
	})
}
