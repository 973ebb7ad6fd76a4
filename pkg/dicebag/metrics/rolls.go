package metrics

import (
	"sync"
	"time"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

// RollEntry is one completed roll as kept in the collector history.
type RollEntry struct {
	ID        string            `json:"id"`
	Notation  string            `json:"notation"`
	Total     int               `json:"total"`
	Text      string            `json:"text"`
	Results   []dice.RollResult `json:"results"`
	Timestamp time.Time         `json:"timestamp"`
}

// RollStats summarizes everything a collector has seen.
type RollStats struct {
	Rolls      int64 `json:"rolls"`
	DiceRolled int64 `json:"dice_rolled"`
	Rejected   int64 `json:"rejected"`
	// AverageTotal is the mean of every roll's grand total.
	AverageTotal float64 `json:"average_total"`
	// Faces counts generated values per die size: Faces[6][4] is how many
	// times a d6 came up 4.
	Faces     map[int]map[int]int64 `json:"faces"`
	Timestamp time.Time             `json:"timestamp"`
}

type RollCollector struct {
	mu         sync.RWMutex
	history    []RollEntry
	maxHistory int
	rolls      int64
	diceRolled int64
	rejected   int64
	totalSum   int64
	faces      map[int]map[int]int64
}

func NewRollCollector(maxHistory int) *RollCollector {
	if maxHistory <= 0 {
		maxHistory = 1000 // Default history size
	}
	return &RollCollector{
		history:    make([]RollEntry, 0, maxHistory),
		maxHistory: maxHistory,
		faces:      make(map[int]map[int]int64),
	}
}

// Record adds a completed roll to the statistics and the history.
func (rc *RollCollector) Record(entry RollEntry) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.rolls++
	rc.totalSum += int64(entry.Total)
	for _, result := range entry.Results {
		rc.diceRolled += int64(len(result.Rolls))
		counts, ok := rc.faces[result.Dice.Sides]
		if !ok {
			counts = make(map[int]int64)
			rc.faces[result.Dice.Sides] = counts
		}
		for _, value := range result.Rolls {
			counts[value]++
		}
	}

	rc.history = append(rc.history, entry)
	if len(rc.history) > rc.maxHistory {
		// Remove oldest entry
		copy(rc.history, rc.history[1:])
		rc.history = rc.history[:rc.maxHistory]
	}
}

// RecordRejected counts a notation that was refused.
func (rc *RollCollector) RecordRejected() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.rejected++
}

// History returns up to limit of the most recent entries, oldest first.
// A limit of zero or less returns the whole history.
func (rc *RollCollector) History(limit int) []RollEntry {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(rc.history) {
		start = len(rc.history) - limit
	}

	// Return a copy to prevent data races
	history := make([]RollEntry, len(rc.history)-start)
	copy(history, rc.history[start:])
	return history
}

func (rc *RollCollector) HistoryWindow(duration time.Duration) []RollEntry {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	cutoff := time.Now().Add(-duration)
	result := []RollEntry{}
	for _, entry := range rc.history {
		if entry.Timestamp.After(cutoff) {
			result = append(result, entry)
		}
	}
	return result
}

func (rc *RollCollector) Snapshot() RollStats {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	stats := RollStats{
		Rolls:      rc.rolls,
		DiceRolled: rc.diceRolled,
		Rejected:   rc.rejected,
		Faces:      make(map[int]map[int]int64, len(rc.faces)),
		Timestamp:  time.Now(),
	}
	if rc.rolls > 0 {
		stats.AverageTotal = float64(rc.totalSum) / float64(rc.rolls)
	}
	for sides, counts := range rc.faces {
		copied := make(map[int]int64, len(counts))
		for face, n := range counts {
			copied[face] = n
		}
		stats.Faces[sides] = copied
	}
	return stats
}

// Reset clears all statistics (useful for testing)
func (rc *RollCollector) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.history = rc.history[:0]
	rc.rolls = 0
	rc.diceRolled = 0
	rc.rejected = 0
	rc.totalSum = 0
	rc.faces = make(map[int]map[int]int64)
}
