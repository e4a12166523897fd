// Package synthfs executes planned operations. Filesystem mutations run
// through the synthfs operation pipeline; backups and deletions run through
// the types.FS abstraction so uniquified names and privilege escalation keep
// working; commands run through the shell runner. Apply is the single
// chokepoint where the dry-run flag gates filesystem mutation.
package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/dotlink-dev/dotlink/pkg/backup"
	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/shell"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// ApplyResult reports side effects of an Apply call the caller needs to
// surface, currently the location of any backup taken.
type ApplyResult struct {
	BackupPath string
}

// Executor applies operation plans.
type Executor struct {
	logger zerolog.Logger
	fsys   types.FS
	opts   *types.Options
	runner *shell.Runner
	sfs    synthfs.FileSystem
}

// NewExecutor creates an executor bound to the run's filesystem, options and
// command runner.
func NewExecutor(fsys types.FS, opts *types.Options, runner *shell.Runner) *Executor {
	return &Executor{
		logger: logging.GetLogger("executor"),
		fsys:   fsys,
		opts:   opts,
		runner: runner,
		sfs:    filesystem.NewOSFileSystem("/"),
	}
}

// Apply executes ops strictly in order. Under dry-run it reports each
// operation and performs nothing. Contiguous runs of synthfs-compatible
// operations are flushed as one pipeline; backups, deletions and commands
// are handled between flushes so ordering is preserved.
func (e *Executor) Apply(ops []types.Operation) (ApplyResult, error) {
	var result ApplyResult

	if e.opts.DryRun {
		for _, op := range ops {
			e.logDryRun(op)
		}
		return result, nil
	}

	var pending []synthfs.Operation
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := e.runPipeline(pending)
		pending = nil
		return err
	}

	for _, op := range ops {
		switch op.Type {
		case types.OperationBackup:
			if err := flush(); err != nil {
				return result, err
			}
			path, err := backup.File(e.fsys, op.Source, e.opts.Backup)
			if err != nil {
				// Nothing to back up counts as success.
				if errors.IsCode(err, errors.ErrSourceNotFound) {
					continue
				}
				return result, err
			}
			result.BackupPath = path

		case types.OperationDeleteFile:
			if err := flush(); err != nil {
				return result, err
			}
			if err := e.delete(op); err != nil {
				return result, err
			}

		case types.OperationMoveFile:
			if err := flush(); err != nil {
				return result, err
			}
			if err := e.fsys.Rename(op.Source, op.Target); err != nil {
				return result, errors.Wrapf(err, errors.ErrFileAccess,
					"failed to move %s to %s", op.Source, op.Target)
			}

		case types.OperationExecute:
			if err := flush(); err != nil {
				return result, err
			}
			if err := e.runner.Run(op.Command, op.Args, shell.RunOptions{}); err != nil {
				return result, err
			}

		default:
			synthOp, err := e.convert(op)
			if err != nil {
				return result, err
			}
			pending = append(pending, synthOp)
		}
	}

	return result, flush()
}

// runPipeline executes a batch of synthfs operations.
func (e *Executor) runPipeline(ops []synthfs.Operation) error {
	pipeline := synthfs.NewMemPipeline()
	for _, op := range ops {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrInternal,
				"failed to add operation to pipeline")
		}
	}

	executor := synthfs.NewExecutor()
	result := executor.Run(context.Background(), pipeline, e.sfs)
	if result.GetError() != nil {
		return errors.Wrap(result.GetError(), errors.ErrInternal,
			"pipeline execution failed")
	}
	return nil
}

// delete removes the destination. A missing target is a no-op so that a
// preceding move-style backup, which frees the path, does not fail the plan.
// Permission failures retry via sudo when escalation was requested.
func (e *Executor) delete(op types.Operation) error {
	info, err := e.fsys.Lstat(op.Target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", op.Target)
	}

	if info.IsDir() {
		err = e.fsys.RemoveAll(op.Target)
	} else {
		err = e.fsys.Remove(op.Target)
	}
	if err == nil {
		return nil
	}

	if os.IsPermission(err) && op.Escalate && e.runner != nil {
		e.logger.Info().
			Str("target", op.Target).
			Msg("removal needs elevated privileges, retrying with sudo")
		return e.runner.Run("sudo", []string{"rm", "-rf", op.Target}, shell.RunOptions{})
	}

	return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", op.Target)
}

// convert maps a planned operation onto a synthfs operation. Paths are made
// relative to / as synthfs expects.
func (e *Executor) convert(op types.Operation) (synthfs.Operation, error) {
	switch op.Type {
	case types.OperationCreateDir:
		return e.convertCreateDir(op)
	case types.OperationCreateSymlink:
		return e.convertCreateSymlink(op)
	case types.OperationCopyFile:
		return e.convertCopyFile(op)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unsupported operation type: %s", op.Type)
	}
}

func (e *Executor) convertCreateDir(op types.Operation) (synthfs.Operation, error) {
	if op.Target == "" {
		return nil, errors.New(errors.ErrInvalidInput,
			"create directory operation requires target")
	}

	relPath, err := relFromRoot(op.Target)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(0755)
	if op.Mode != nil {
		mode = os.FileMode(*op.Mode)
	}

	opID := core.OperationID(fmt.Sprintf("create-dir-%s", op.Target))
	createOp := operations.NewCreateDirectoryOperation(opID, relPath)
	createOp.SetItem(&directoryItem{path: relPath, mode: mode})

	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

func (e *Executor) convertCreateSymlink(op types.Operation) (synthfs.Operation, error) {
	if op.Source == "" || op.Target == "" {
		return nil, errors.New(errors.ErrInvalidInput,
			"symlink operation requires source and target")
	}

	relTarget, err := relFromRoot(op.Target)
	if err != nil {
		return nil, err
	}
	relSource, err := relFromRoot(op.Source)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("source", op.Source).
		Str("target", op.Target).
		Msg("creating symlink")

	opID := core.OperationID(fmt.Sprintf("symlink-%s", op.Target))
	symlinkOp := operations.NewCreateSymlinkOperation(opID, relTarget)
	symlinkOp.SetDescriptionDetail("target", relSource)
	symlinkOp.SetItem(&symlinkItem{path: relTarget, target: relSource})

	return synthfs.NewOperationsPackageAdapter(symlinkOp), nil
}

func (e *Executor) convertCopyFile(op types.Operation) (synthfs.Operation, error) {
	if op.Source == "" || op.Target == "" {
		return nil, errors.New(errors.ErrInvalidInput,
			"copy file operation requires source and target")
	}

	relSource, err := relFromRoot(op.Source)
	if err != nil {
		return nil, err
	}
	relTarget, err := relFromRoot(op.Target)
	if err != nil {
		return nil, err
	}

	opID := core.OperationID(fmt.Sprintf("copy-%s-to-%s", filepath.Base(op.Source), op.Target))
	copyOp := operations.NewCopyOperation(opID, relTarget)
	copyOp.SetPaths(relSource, relTarget)

	return synthfs.NewOperationsPackageAdapter(copyOp), nil
}

func relFromRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to normalize path: %s", path)
	}
	rel, err := filepath.Rel("/", abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", path)
	}
	return rel, nil
}

func (e *Executor) logDryRun(op types.Operation) {
	logger := e.logger.With().Str("mode", "dry-run").Logger()
	switch op.Type {
	case types.OperationCreateSymlink:
		logger.Info().Str("source", op.Source).Str("target", op.Target).Msg("would create symlink")
	case types.OperationCreateDir:
		logger.Info().Str("target", op.Target).Msg("would create directory")
	case types.OperationBackup:
		logger.Info().Str("source", op.Source).Msg("would back up existing destination")
	case types.OperationDeleteFile:
		logger.Info().Str("target", op.Target).Msg("would remove")
	case types.OperationCopyFile:
		logger.Info().Str("source", op.Source).Str("target", op.Target).Msg("would copy")
	case types.OperationMoveFile:
		logger.Info().Str("source", op.Source).Str("target", op.Target).Msg("would move")
	case types.OperationExecute:
		logger.Info().Str("command", op.Command).Strs("args", op.Args).Msg("would run command")
	default:
		logger.Info().Str("description", op.Description).Msg("would execute operation")
	}
}

// Item types backing the synthfs operations.

type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }

type symlinkItem struct {
	path   string
	target string
}

func (s *symlinkItem) Path() string   { return s.path }
func (s *symlinkItem) Type() string   { return "symlink" }
func (s *symlinkItem) Target() string { return s.target }
