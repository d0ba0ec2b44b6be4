package srs

import (
	"math"
	"time"

	"github.com/phrazzld/mastery-api/internal/domain"
)

const day = 24 * time.Hour

// calculateNewLevel moves the mastery level after an answer.
//
// A correct answer raises the level by one, capped at params.MaxLevel.
// An incorrect answer drops it by params.LapseLevelDrop, floored at 0, so a
// fresh item answered wrongly stays at level 0.
func calculateNewLevel(level int, correct bool, params *Params) int {
	if correct {
		if level+1 > params.MaxLevel {
			return params.MaxLevel
		}
		return level + 1
	}

	if level-params.LapseLevelDrop < domain.MinMasteryLevel {
		return domain.MinMasteryLevel
	}
	return level - params.LapseLevelDrop
}

// calculateNewEaseFactor adjusts the ease factor after an answer.
//
// Parameters:
//   - currentEF: The ease factor before the answer
//   - newLevel: The mastery level after the answer (already moved)
//   - correct: Whether the answer was correct
//   - params: Configuration parameters for the updater
//
// Returns:
//   - The new ease factor, never below params.MinEaseFactor
//
// Algorithm behavior:
//   - Correct: ease + EaseBonus - (MaxLevel - newLevel) * LevelPenalty, so items
//     still far from mastered gain ease more slowly
//   - Incorrect: ease - LapseEasePenalty
func calculateNewEaseFactor(currentEF float64, newLevel int, correct bool, params *Params) float64 {
	var newEF float64
	if correct {
		newEF = currentEF + params.EaseBonus - float64(params.MaxLevel-newLevel)*params.LevelPenalty
	} else {
		newEF = currentEF - params.LapseEasePenalty
	}

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the number of days until the next review.
//
// Parameters:
//   - previousInterval: The interval before the answer, in days
//   - newLevel: The mastery level after the answer
//   - easeFactor: The ease factor after the answer
//   - correct: Whether the answer was correct
//   - params: Configuration parameters for the updater
//
// Algorithm behavior:
//   - Incorrect: always 1 day
//   - Level 0 or 1: 1 day
//   - Level 2: at least SecondLevelMinInterval days, or the previous interval if longer
//   - Level 3 and above: previous interval multiplied by the ease factor, rounded
//   - The result is never below 1 day nor above MaxIntervalDays
func calculateNewInterval(
	previousInterval int,
	newLevel int,
	easeFactor float64,
	correct bool,
	params *Params,
) int {
	if !correct {
		return 1
	}

	var interval int
	switch {
	case newLevel <= 1:
		interval = 1
	case newLevel == 2:
		interval = previousInterval
		if interval < params.SecondLevelMinInterval {
			interval = params.SecondLevelMinInterval
		}
	default:
		scaled := math.Round(float64(previousInterval) * easeFactor)
		if scaled > float64(params.MaxIntervalDays) {
			scaled = float64(params.MaxIntervalDays)
		}
		interval = int(scaled)
	}

	if interval > params.MaxIntervalDays {
		interval = params.MaxIntervalDays
	}
	if interval < 1 {
		interval = 1
	}

	return interval
}

// calculateNextReviewDate returns now advanced by intervalDays whole days.
func calculateNextReviewDate(intervalDays int, now time.Time) time.Time {
	return now.Add(time.Duration(intervalDays) * day)
}

// calculateNextState is the pure SM-2 update. The input is clamped first and is
// never modified; a new value is returned.
func calculateNextState(
	current *domain.WordMastery,
	correct bool,
	now time.Time,
	params *Params,
) *domain.WordMastery {
	next := current.Clamp()
	if next.EaseFactor < params.MinEaseFactor {
		next.EaseFactor = params.MinEaseFactor
	}
	if next.MasteryLevel > params.MaxLevel {
		next.MasteryLevel = params.MaxLevel
	}

	now = now.UTC()
	next.MasteryLevel = calculateNewLevel(next.MasteryLevel, correct, params)
	next.EaseFactor = calculateNewEaseFactor(next.EaseFactor, next.MasteryLevel, correct, params)
	next.IntervalDays = calculateNewInterval(
		next.IntervalDays,
		next.MasteryLevel,
		next.EaseFactor,
		correct,
		params,
	)
	next.NextReviewAt = calculateNextReviewDate(next.IntervalDays, now)
	next.ReviewCount++
	reviewedAt := now
	next.LastReviewAt = &reviewedAt

	return &next
}
