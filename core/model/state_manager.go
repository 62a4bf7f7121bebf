// Package model provides core interfaces and state management for estimators.
package model

import (
	"sync"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// Meta-learners embed it by composition and record the shape seen by Fit so
// that Predict can reject mismatching input.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	NFeatures int
	NSamples  int
	NLabels   int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state. Fit calls it first so that a failed refit
// never leaves a half-replaced model marked as fitted.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
	s.NLabels = 0
}

// SetDimensions sets the number of features, samples and labels seen during fitting.
func (s *StateManager) SetDimensions(nFeatures, nSamples, nLabels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
	s.NLabels = nLabels
}

// GetDimensions returns the number of features, samples and labels seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples, nLabels int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples, s.NLabels
}

// RequireFitted returns a NotFittedError if the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// RequireFeatures checks a prediction-time feature count against the one seen by Fit.
func (s *StateManager) RequireFeatures(op string, nFeatures int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if nFeatures != s.NFeatures {
		return errors.NewDimensionError(op, s.NFeatures, nFeatures, 1)
	}
	return nil
}
