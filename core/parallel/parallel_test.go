package parallel

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

func TestResolveJobs(t *testing.T) {
	tests := []struct {
		name  string
		nJobs int
		items int
		want  int
	}{
		{"zero is serial", 0, 10, 1},
		{"one is serial", 1, 10, 1},
		{"explicit", 3, 10, 3},
		{"capped by items", 8, 2, 2},
		{"all cpus", -1, 1 << 20, runtime.NumCPU()},
		{"never below one", -1 - runtime.NumCPU(), 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveJobs(tt.nJobs, tt.items))
		})
	}
}

func TestDo(t *testing.T) {
	for _, nJobs := range []int{1, 4, -1} {
		t.Run(fmt.Sprintf("n_jobs=%d", nJobs), func(t *testing.T) {
			out := make([]int, 100)
			err := Do(nJobs, len(out), func(i int) error {
				out[i] = i * i
				return nil
			})
			require.NoError(t, err)
			for i, v := range out {
				assert.Equal(t, i*i, v)
			}
		})
	}
}

func TestDo_PropagatesError(t *testing.T) {
	sentinel := errors.New("fit failed")
	var calls int64
	err := Do(4, 20, func(i int) error {
		atomic.AddInt64(&calls, 1)
		if i == 7 {
			return sentinel
		}
		return nil
	})
	assert.True(t, errors.Is(err, sentinel))
}

func TestDo_RecoversPanic(t *testing.T) {
	err := Do(2, 4, func(i int) error {
		if i == 3 {
			panic("bad classifier")
		}
		return nil
	})
	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "task 3", panicErr.Operation)
}

func TestChunks(t *testing.T) {
	covered := make([]int32, 103)
	err := Chunks(4, len(covered), func(start, end int) error {
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
		return nil
	})
	require.NoError(t, err)
	for i, c := range covered {
		assert.Equal(t, int32(1), c, "row %d", i)
	}
	assert.NoError(t, Chunks(4, 0, func(int, int) error { return errors.New("unreachable") }))
}
