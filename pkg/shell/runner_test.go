package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

func TestRunExecutesCommand(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	r := New(&types.Options{})
	err := r.Run("touch", []string{marker}, RunOptions{})
	require.NoError(t, err)

	_, err = os.Stat(marker)
	assert.NoError(t, err)
}

func TestRunDryRunPerformsNothing(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	r := New(&types.Options{DryRun: true})
	err := r.Run("touch", []string{marker}, RunOptions{})
	require.NoError(t, err)

	_, err = os.Stat(marker)
	assert.True(t, os.IsNotExist(err), "dry-run must not touch the filesystem")
}

func TestRunFailurePropagates(t *testing.T) {
	r := New(&types.Options{})
	err := r.Run("false", nil, RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCommandFailed))
}

func TestRunPassFailures(t *testing.T) {
	r := New(&types.Options{})
	err := r.Run("false", nil, RunOptions{PassFailures: true})
	assert.NoError(t, err, "pass-failures converts failure into a reported, non-fatal outcome")
}

func TestRunDryRunSwallowsFailingCommand(t *testing.T) {
	r := New(&types.Options{DryRun: true})
	assert.NoError(t, r.Run("false", nil, RunOptions{}))
}

func TestRunLocalVerboseOverride(t *testing.T) {
	// The override only affects output routing; the command still runs and
	// the global options are untouched afterwards.
	opts := &types.Options{Verbose: 1}
	r := New(opts)

	quiet := false
	err := r.Run("true", nil, RunOptions{Verbose: &quiet})
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Verbose)
}

func TestLookPath(t *testing.T) {
	r := New(&types.Options{})

	path, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = r.LookPath("definitely-not-a-real-utility-xyz")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingDependency))
}

func TestCallerLocationFormat(t *testing.T) {
	loc := callerLocation(1)
	assert.Regexp(t, `^[^:]+:[^:]+\.go:\d+$`, loc)
}
