package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// smallBench keeps the synthetic problem tiny so every algorithm trains quickly.
var smallBench = []string{
	"bench",
	"--samples", "60",
	"--features", "4",
	"--labels", "3",
	"--k", "2",
	"--n-clfs", "3",
	"--n-samples", "10",
	"--max-iter", "50",
	"--log-level", "error",
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mlearn dev"))
}

func TestBench(t *testing.T) {
	out, err := execute(t, smallBench...)
	require.NoError(t, err)

	assert.Contains(t, out, "n_samples=60 n_features=4 n_labels=3 (train 42 / test 18)")
	assert.Contains(t, out, "HAMMING")
	for _, name := range strings.Split(defaultAlgorithms, ",") {
		assert.Contains(t, out, "\n"+name+" ", "missing row for %s", name)
	}
}

func TestBench_Plot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.png")
	out, err := execute(t, append(smallBench, "--algorithms", "br,cc", "--plot", path)...)
	require.NoError(t, err)
	assert.Contains(t, out, "chart written to "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBench_PassiveAggressiveBase(t *testing.T) {
	out, err := execute(t, append(smallBench, "--base", "pa", "--scaler", "minmax", "--algorithms", "br,pcc-f1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "\nbr ")
	assert.Contains(t, out, "\npcc-f1 ")

	out, err = execute(t, append(smallBench, "--scaler", "none", "--algorithms", "rakel")...)
	require.NoError(t, err)
	assert.Contains(t, out, "\nrakel ")
}

func TestBench_ConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("labels: 4\nalgorithms: br\n"), 0o600))

	args := []string{"bench", "--config", cfg, "--samples", "40", "--features", "3", "--log-level", "error"}
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "n_labels=4")
	assert.Contains(t, out, "\nbr ")
	assert.NotContains(t, out, "\ncsrpe ")
}

func TestBench_Env(t *testing.T) {
	t.Setenv("MLEARN_FEATURES", "2")
	t.Setenv("MLEARN_ALGORITHMS", "cc")

	out, err := execute(t, "bench", "--samples", "40", "--labels", "2", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "n_features=2")
	assert.Contains(t, out, "\ncc ")

	// コマンドラインのフラグが環境変数より優先される
	out, err = execute(t, "bench", "--samples", "40", "--labels", "2", "--features", "3", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "n_features=3")
}

func TestBench_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		param string
	}{
		{"unknown algorithm", []string{"--algorithms", "br,svm"}, "algorithms"},
		{"empty algorithm list", []string{"--algorithms", " , "}, "algorithms"},
		{"csrpe loss", []string{"--algorithms", "csrpe", "--csrpe-loss", "jaccard"}, "csrpe-loss"},
		{"log level", []string{"--log-level", "verbose"}, "log_level"},
		{"base", []string{"--base", "svm"}, "base"},
		{"scaler", []string{"--scaler", "robust"}, "scaler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(append([]string{}, smallBench...), tt.args...)...)
			require.Error(t, err)

			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}
}

func TestBench_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "bench", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
