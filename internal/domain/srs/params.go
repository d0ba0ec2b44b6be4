package srs

import (
	"github.com/phrazzld/mastery-api/internal/domain"
)

// Params defines all configurable parameters for the SM-2 updater
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxLevel      int

	// Adjustments applied on a correct answer
	EaseBonus    float64 // added to the ease factor before the level penalty
	LevelPenalty float64 // subtracted per level below MaxLevel

	// Adjustments applied on an incorrect answer
	LapseEasePenalty float64
	LapseLevelDrop   int

	// Interval floor once an item reaches level 2
	SecondLevelMinInterval int

	// Upper bound on any interval, in days
	MaxIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor          float64
	MaxLevel               int
	EaseBonus              float64
	LevelPenalty           float64
	LapseEasePenalty       float64
	LapseLevelDrop         int
	SecondLevelMinInterval int
	MaxIntervalDays        int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxLevel:      domain.MaxMasteryLevel,

		EaseBonus:    0.1,
		LevelPenalty: 0.02,

		LapseEasePenalty: 0.2,
		LapseLevelDrop:   2,

		SecondLevelMinInterval: 3,
		MaxIntervalDays:        domain.MaxIntervalDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxLevel > 0 {
		params.MaxLevel = config.MaxLevel
	}
	if config.EaseBonus > 0 {
		params.EaseBonus = config.EaseBonus
	}
	if config.LevelPenalty > 0 {
		params.LevelPenalty = config.LevelPenalty
	}
	if config.LapseEasePenalty > 0 {
		params.LapseEasePenalty = config.LapseEasePenalty
	}
	if config.LapseLevelDrop > 0 {
		params.LapseLevelDrop = config.LapseLevelDrop
	}
	if config.SecondLevelMinInterval > 0 {
		params.SecondLevelMinInterval = config.SecondLevelMinInterval
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	return params
}
