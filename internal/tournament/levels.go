package tournament

import (
	"time"

	"pokerhub/models"
)

// LevelIndex maps elapsed tournament time onto the blind ladder. Each level
// runs for its duration; the last level is open ended. Levels never move
// backwards because elapsed time never shrinks.
func LevelIndex(levels []models.BlindLevel, elapsed time.Duration) int {
	if len(levels) == 0 {
		return 0
	}
	var cumulative time.Duration
	for i, lvl := range levels {
		cumulative += time.Duration(lvl.Duration) * time.Second
		if elapsed < cumulative {
			return i
		}
	}
	return len(levels) - 1
}

// DefaultLadder builds a doubling blind ladder starting from the given
// small blind, every level the same length. Used when a tournament is
// created without an explicit ladder.
func DefaultLadder(smallBlind, count, durationSeconds int) []models.BlindLevel {
	if smallBlind <= 0 {
		smallBlind = 10
	}
	if count <= 0 {
		count = 10
	}
	if durationSeconds <= 0 {
		durationSeconds = 600
	}
	levels := make([]models.BlindLevel, count)
	sb := smallBlind
	for i := range levels {
		levels[i] = models.BlindLevel{
			Level:      i + 1,
			SmallBlind: sb,
			BigBlind:   sb * 2,
			Duration:   durationSeconds,
		}
		sb *= 2
	}
	return levels
}
