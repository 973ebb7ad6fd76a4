package metrics

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

func entry(id string, total int, sides int, rolls ...int) RollEntry {
	return RollEntry{
		ID:        id,
		Notation:  fmt.Sprintf("%dd%d", len(rolls), sides),
		Total:     total,
		Results:   []dice.RollResult{{Dice: dice.New(len(rolls), sides), Rolls: rolls, Kept: rolls, Total: total}},
		Timestamp: time.Now(),
	}
}

func TestCollectorSnapshot(t *testing.T) {
	c := NewRollCollector(10)
	c.Record(entry("a", 7, 6, 3, 4))
	c.Record(entry("b", 6, 6, 6))
	c.Record(entry("c", 20, 20, 20))
	c.RecordRejected()

	stats := c.Snapshot()
	assert.Equal(t, int64(3), stats.Rolls)
	assert.Equal(t, int64(4), stats.DiceRolled)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.InDelta(t, 11.0, stats.AverageTotal, 1e-9)
	assert.Equal(t, map[int]map[int]int64{
		6:  {3: 1, 4: 1, 6: 1},
		20: {20: 1},
	}, stats.Faces)

	// Snapshots are copies.
	stats.Faces[6][3] = 100
	assert.Equal(t, int64(1), c.Snapshot().Faces[6][3])

	_, err := json.Marshal(stats)
	require.NoError(t, err)
}

func TestCollectorHistoryBounded(t *testing.T) {
	c := NewRollCollector(3)
	for i := 0; i < 5; i++ {
		c.Record(entry(fmt.Sprint(i), i, 6, 1))
	}

	history := c.History(0)
	require.Len(t, history, 3)
	assert.Equal(t, "2", history[0].ID)
	assert.Equal(t, "4", history[2].ID)

	latest := c.History(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "3", latest[0].ID)
	assert.Equal(t, "4", latest[1].ID)

	assert.Len(t, c.History(50), 3)
	// Totals still count evicted rolls.
	assert.Equal(t, int64(5), c.Snapshot().Rolls)
}

func TestCollectorHistoryWindow(t *testing.T) {
	c := NewRollCollector(10)
	old := entry("old", 1, 6, 1)
	old.Timestamp = time.Now().Add(-time.Hour)
	c.Record(old)
	c.Record(entry("new", 2, 6, 2))

	window := c.HistoryWindow(time.Minute)
	require.Len(t, window, 1)
	assert.Equal(t, "new", window[0].ID)
}

func TestCollectorReset(t *testing.T) {
	c := NewRollCollector(0)
	c.Record(entry("a", 1, 6, 1))
	c.RecordRejected()
	c.Reset()

	stats := c.Snapshot()
	assert.Zero(t, stats.Rolls)
	assert.Zero(t, stats.Rejected)
	assert.Zero(t, stats.AverageTotal)
	assert.Empty(t, stats.Faces)
	assert.Empty(t, c.History(0))
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewRollCollector(100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(entry("x", 3, 6, 3))
				_ = c.Snapshot()
				_ = c.History(10)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), c.Snapshot().Rolls)
}
