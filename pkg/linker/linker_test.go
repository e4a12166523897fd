package linker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/filesystem"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

func newTestLinker(opts *types.Options) *Linker {
	if opts == nil {
		opts = &types.Options{Backup: types.DefaultBackupPolicy()}
	}
	return New(filesystem.NewOS(), opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "repo", "aliases.sh")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0755))
	writeFile(t, source, "alias ll='ls -l'")

	l := newTestLinker(nil)

	t.Run("absent", func(t *testing.T) {
		state, err := l.Inspect(types.LinkRequest{Source: source, Target: filepath.Join(dir, ".aliases.sh")})
		require.NoError(t, err)
		assert.Equal(t, types.StateAbsent, state)
	})

	t.Run("linked", func(t *testing.T) {
		target := filepath.Join(dir, ".linked")
		require.NoError(t, os.Symlink(source, target))
		state, err := l.Inspect(types.LinkRequest{Source: source, Target: target})
		require.NoError(t, err)
		assert.Equal(t, types.StateLinked, state)
	})

	t.Run("wrong link", func(t *testing.T) {
		target := filepath.Join(dir, ".wrong")
		require.NoError(t, os.Symlink(filepath.Join(dir, "elsewhere"), target))
		state, err := l.Inspect(types.LinkRequest{Source: source, Target: target})
		require.NoError(t, err)
		assert.Equal(t, types.StateWrongLink, state)
	})

	t.Run("regular file", func(t *testing.T) {
		target := filepath.Join(dir, ".regular")
		writeFile(t, target, "data")
		state, err := l.Inspect(types.LinkRequest{Source: source, Target: target})
		require.NoError(t, err)
		assert.Equal(t, types.StateExists, state)
	})

	t.Run("directory", func(t *testing.T) {
		target := filepath.Join(dir, ".dir")
		require.NoError(t, os.Mkdir(target, 0755))
		state, err := l.Inspect(types.LinkRequest{Source: source, Target: target})
		require.NoError(t, err)
		assert.Equal(t, types.StateExists, state)
	})
}

func opTypes(ops []types.Operation) []types.OperationType {
	out := make([]types.OperationType, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Type)
	}
	return out
}

func TestPlanAbsentTarget(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "gitconfig")
	writeFile(t, source, "[user]")
	target := filepath.Join(dir, "home", ".gitconfig")

	l := newTestLinker(nil)
	ops, state, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t, types.StateAbsent, state)
	assert.Equal(t,
		[]types.OperationType{types.OperationCreateDir, types.OperationCreateSymlink},
		opTypes(ops),
		"missing parent is created before the link")
	assert.Equal(t, filepath.Dir(target), ops[0].Target)
	assert.Equal(t, source, ops[1].Source)
	assert.Equal(t, target, ops[1].Target)
}

func TestPlanAbsentTargetExistingParent(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "gitconfig")
	writeFile(t, source, "[user]")
	target := filepath.Join(dir, ".gitconfig")

	l := newTestLinker(nil)
	ops, _, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t, []types.OperationType{types.OperationCreateSymlink}, opTypes(ops))
}

func TestPlanAlreadyLinkedIsNoop(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "vimrc")
	writeFile(t, source, "set nu")
	target := filepath.Join(dir, ".vimrc")
	require.NoError(t, os.Symlink(source, target))

	l := newTestLinker(nil)
	ops, state, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t, types.StateLinked, state)
	assert.Empty(t, ops, "already linked plans zero operations")
}

func TestPlanOccupiedTargetBacksUpFirst(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "gitconfig")
	writeFile(t, source, "new")
	target := filepath.Join(dir, ".gitconfig")
	writeFile(t, target, "old")

	l := newTestLinker(nil)
	ops, state, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t, types.StateExists, state)
	assert.Equal(t,
		[]types.OperationType{types.OperationBackup, types.OperationDeleteFile, types.OperationCreateSymlink},
		opTypes(ops))
}

func TestPlanWrongLinkBacksUpFirst(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "zshrc")
	writeFile(t, source, "x")
	other := filepath.Join(dir, "other")
	writeFile(t, other, "y")
	target := filepath.Join(dir, ".zshrc")
	require.NoError(t, os.Symlink(other, target))

	l := newTestLinker(nil)
	ops, state, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t, types.StateWrongLink, state)
	assert.Equal(t,
		[]types.OperationType{types.OperationBackup, types.OperationDeleteFile, types.OperationCreateSymlink},
		opTypes(ops))
}

func TestPlanBackupDisabled(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "gitconfig")
	writeFile(t, source, "new")
	target := filepath.Join(dir, ".gitconfig")
	writeFile(t, target, "old")

	opts := &types.Options{Backup: types.BackupPolicy{Disabled: true}}
	l := newTestLinker(opts)
	ops, _, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	assert.Equal(t,
		[]types.OperationType{types.OperationDeleteFile, types.OperationCreateSymlink},
		opTypes(ops))
}

func TestPlanEscalateFlagPropagates(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "f")
	writeFile(t, source, "x")
	target := filepath.Join(dir, ".f")
	writeFile(t, target, "y")

	opts := &types.Options{Escalate: true, Backup: types.DefaultBackupPolicy()}
	l := newTestLinker(opts)
	ops, _, err := l.Plan(types.LinkRequest{Source: source, Target: target})
	require.NoError(t, err)

	for _, op := range ops {
		if op.Type == types.OperationDeleteFile {
			assert.True(t, op.Escalate)
		}
	}
}

func TestPlanMissingSource(t *testing.T) {
	dir := t.TempDir()

	l := newTestLinker(nil)
	_, _, err := l.Plan(types.LinkRequest{
		Source: filepath.Join(dir, "absent"),
		Target: filepath.Join(dir, ".absent"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSourceNotFound))
}
