package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr), "expected PanicError, got %T", err)
	assert.Equal(t, "TestOperation", panicErr.Operation)
	assert.Equal(t, "test panic message", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in TestOperation: test panic message", panicErr.Error())
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	assert.NoError(t, testFunc())
}

// TestRecover_WithExistingError tests Recover when function has existing error and panic occurs
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in TestOperation")
	assert.Contains(t, err.Error(), "original error")
	assert.True(t, Is(err, originalErr), "original error must stay reachable")
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, SafeExecute("op", func() error { return nil }))
	})

	t.Run("function error is returned unchanged", func(t *testing.T) {
		originalErr := fmt.Errorf("function error")
		err := SafeExecute("op", func() error { return originalErr })
		assert.Same(t, originalErr, err)
	})

	t.Run("panic becomes PanicError", func(t *testing.T) {
		err := SafeExecute("fit label 2", func() error {
			var m map[string]int
			m["boom"]++
			return nil
		})
		var panicErr *PanicError
		require.True(t, As(err, &panicErr))
		assert.Equal(t, "fit label 2", panicErr.Operation)
		assert.True(t, strings.Contains(panicErr.String(), "Stack trace:"))
	})
}
