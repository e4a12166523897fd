// Package linker implements the destination state machine for symlink
// installation. For each link request it inspects the destination and plans
// the operations that bring it to the linked state: nothing when already
// linked, a plain symlink when the destination is absent, and
// backup-remove-link when something else occupies it.
package linker

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// Linker plans per-destination operations. It never mutates the filesystem
// itself; plans are handed to the executor, which owns dry-run gating.
type Linker struct {
	fsys   types.FS
	opts   *types.Options
	logger zerolog.Logger
}

// New creates a Linker bound to the run's filesystem and options.
func New(fsys types.FS, opts *types.Options) *Linker {
	return &Linker{
		fsys:   fsys,
		opts:   opts,
		logger: logging.GetLogger("linker"),
	}
}

// Inspect classifies the destination of a link request.
func (l *Linker) Inspect(req types.LinkRequest) (types.LinkState, error) {
	info, err := l.fsys.Lstat(req.Target)
	if err != nil {
		if os.IsNotExist(err) {
			return types.StateAbsent, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", req.Target)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return types.StateExists, nil
	}

	current, err := l.fsys.Readlink(req.Target)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read symlink %s", req.Target)
	}
	if filepath.Clean(current) == filepath.Clean(req.Source) {
		return types.StateLinked, nil
	}
	return types.StateWrongLink, nil
}

// Plan validates the request and returns the operations that install the
// link, together with the observed destination state. A missing source is a
// recoverable SOURCE_NOT_FOUND error; the caller skips the entry and
// continues the batch.
func (l *Linker) Plan(req types.LinkRequest) ([]types.Operation, types.LinkState, error) {
	if _, err := l.fsys.Lstat(req.Source); err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Newf(errors.ErrSourceNotFound,
				"link source does not exist: %s", req.Source)
		}
		return nil, "", errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", req.Source)
	}

	state, err := l.Inspect(req)
	if err != nil {
		return nil, "", err
	}

	var ops []types.Operation

	switch state {
	case types.StateLinked:
		// Terminal state, nothing to do. Reported as already linked.
		l.logger.Debug().
			Str("source", req.Source).
			Str("target", req.Target).
			Msg("already linked")
		return nil, state, nil

	case types.StateAbsent:
		ops = l.appendParentDir(ops, req.Target)

	case types.StateWrongLink, types.StateExists:
		if !l.opts.Backup.Disabled {
			ops = append(ops, types.Operation{
				Type:        types.OperationBackup,
				Source:      req.Target,
				Description: "back up existing destination " + req.Target,
			})
		}
		ops = append(ops, types.Operation{
			Type:        types.OperationDeleteFile,
			Target:      req.Target,
			Escalate:    l.opts.Escalate,
			Description: "remove existing destination " + req.Target,
		})
	}

	ops = append(ops, types.Operation{
		Type:        types.OperationCreateSymlink,
		Source:      req.Source,
		Target:      req.Target,
		Description: "symlink " + req.Target + " -> " + req.Source,
	})

	l.logger.Trace().
		Str("source", req.Source).
		Str("target", req.Target).
		Str("state", string(state)).
		Int("operations", len(ops)).
		Msg("planned link")

	return ops, state, nil
}

// appendParentDir adds a create-dir operation when the destination's parent
// is missing.
func (l *Linker) appendParentDir(ops []types.Operation, target string) []types.Operation {
	parent := filepath.Dir(target)
	if _, err := l.fsys.Lstat(parent); os.IsNotExist(err) {
		ops = append(ops, types.Operation{
			Type:        types.OperationCreateDir,
			Target:      parent,
			Description: "create parent directory " + parent,
		})
	}
	return ops
}
