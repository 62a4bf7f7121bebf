package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("BinaryRelevance", "Predict")
	var notFitted *errors.NotFittedError
	require.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "BinaryRelevance", notFitted.ModelName)

	s.SetDimensions(4, 100, 6)
	s.SetFitted()
	assert.NoError(t, s.RequireFitted("BinaryRelevance", "Predict"))
	assert.NoError(t, s.RequireFeatures("Predict", 4))

	err = s.RequireFeatures("Predict", 5)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 5, dimErr.Got)

	nFeatures, nSamples, nLabels := s.GetDimensions()
	assert.Equal(t, []int{4, 100, 6}, []int{nFeatures, nSamples, nLabels})

	s.Reset()
	assert.False(t, s.IsFitted())
	_, _, nLabels = s.GetDimensions()
	assert.Zero(t, nLabels)
}
