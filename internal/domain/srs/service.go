package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/mastery-api/internal/domain"
)

// Common errors
var (
	ErrNilMastery = errors.New("word mastery cannot be nil")
)

// Service defines the interface for SM-2 updater operations
type Service interface {
	// Update computes the memory state after one answer. The input is not modified.
	// It fails only when state is nil.
	Update(state *domain.WordMastery, correct bool, now time.Time) (*domain.WordMastery, error)

	// Params returns the parameters the service was built with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Update implements Service.Update
func (s *defaultService) Update(
	state *domain.WordMastery,
	correct bool,
	now time.Time,
) (*domain.WordMastery, error) {
	if state == nil {
		return nil, ErrNilMastery
	}

	return calculateNextState(state, correct, now, s.params), nil
}

// Params implements Service.Params
func (s *defaultService) Params() Params {
	return *s.params
}
