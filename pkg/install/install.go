// Package install orchestrates dotlink runs: discovery, per-entry
// backup-then-link, status reporting, unlinking and adoption. Entries are
// processed strictly in order; one bad entry is recorded and the batch
// continues.
package install

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/linker"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/shell"
	"github.com/dotlink-dev/dotlink/pkg/synthfs"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// Installer ties the linker and the executor together for one run.
type Installer struct {
	fsys     types.FS
	opts     *types.Options
	linker   *linker.Linker
	executor *synthfs.Executor
	logger   zerolog.Logger
}

// New creates an Installer for the run's filesystem and options.
func New(fsys types.FS, opts *types.Options) *Installer {
	runner := shell.New(opts)
	return &Installer{
		fsys:     fsys,
		opts:     opts,
		linker:   linker.New(fsys, opts),
		executor: synthfs.NewExecutor(fsys, opts, runner),
		logger:   logging.GetLogger("install"),
	}
}

// Install processes the requests sequentially: plan, then apply, recording
// a per-entry result. Running it twice with no intervening changes yields
// only already-linked entries the second time.
func (i *Installer) Install(requests []types.LinkRequest) *types.InstallResult {
	result := &types.InstallResult{DryRun: i.opts.DryRun}

	for _, req := range requests {
		entry := i.installOne(req)
		result.Entries = append(result.Entries, entry)

		switch entry.Status {
		case types.StatusFailed:
			i.logger.Error().
				Err(entry.Err).
				Str("source", req.Source).
				Str("target", req.Target).
				Msg("entry failed, continuing batch")
		case types.StatusSkipped:
			i.logger.Warn().
				Err(entry.Err).
				Str("source", req.Source).
				Msg("entry skipped, continuing batch")
		}
	}

	return result
}

func (i *Installer) installOne(req types.LinkRequest) types.EntryResult {
	entry := types.EntryResult{Request: req}

	ops, state, err := i.linker.Plan(req)
	if err != nil {
		if errors.IsCode(err, errors.ErrSourceNotFound) {
			entry.Status = types.StatusSkipped
		} else {
			entry.Status = types.StatusFailed
		}
		entry.Err = err
		return entry
	}

	if state == types.StateLinked {
		entry.Status = types.StatusAlreadyLinked
		return entry
	}

	applied, err := i.executor.Apply(ops)
	if err != nil {
		entry.Status = types.StatusFailed
		entry.Err = err
		return entry
	}

	entry.Status = types.StatusLinked
	entry.BackupPath = applied.BackupPath
	return entry
}

// StatusEntry is one candidate's state for the status command.
type StatusEntry struct {
	Request       types.LinkRequest `json:"request" yaml:"request"`
	State         types.LinkState   `json:"state" yaml:"state"`
	SourceMissing bool              `json:"source_missing,omitempty" yaml:"source_missing,omitempty"`
}

// Status inspects every candidate without mutating anything.
func (i *Installer) Status(requests []types.LinkRequest) ([]StatusEntry, error) {
	entries := make([]StatusEntry, 0, len(requests))
	for _, req := range requests {
		entry := StatusEntry{Request: req}
		if _, err := i.fsys.Lstat(req.Source); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", req.Source)
			}
			entry.SourceMissing = true
		}
		state, err := i.linker.Inspect(req)
		if err != nil {
			return nil, err
		}
		entry.State = state
		entries = append(entries, entry)
	}
	return entries, nil
}

// Unlink removes the symlinks dotlink owns: only destinations that are
// symlinks pointing back into the request's source are touched. Everything
// else is reported and left alone.
func (i *Installer) Unlink(requests []types.LinkRequest) *types.InstallResult {
	result := &types.InstallResult{DryRun: i.opts.DryRun}

	for _, req := range requests {
		entry := types.EntryResult{Request: req}

		state, err := i.linker.Inspect(req)
		if err != nil {
			entry.Status = types.StatusFailed
			entry.Err = err
			result.Entries = append(result.Entries, entry)
			continue
		}

		if state != types.StateLinked {
			entry.Status = types.StatusSkipped
			result.Entries = append(result.Entries, entry)
			continue
		}

		_, err = i.executor.Apply([]types.Operation{{
			Type:        types.OperationDeleteFile,
			Target:      req.Target,
			Escalate:    i.opts.Escalate,
			Description: "remove symlink " + req.Target,
		}})
		if err != nil {
			entry.Status = types.StatusFailed
			entry.Err = err
		} else {
			entry.Status = types.StatusUnlinked
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// Adopt moves an existing home-directory file into the dotfiles repository
// and links it back. The home path must exist and must not already be a
// symlink; the repository path must be free.
func (i *Installer) Adopt(homePath, repoPath string) (types.EntryResult, error) {
	entry := types.EntryResult{
		Request: types.LinkRequest{Source: repoPath, Target: homePath},
	}

	info, err := i.fsys.Lstat(homePath)
	if err != nil {
		if os.IsNotExist(err) {
			return entry, errors.Newf(errors.ErrSourceNotFound,
				"nothing to adopt at %s", homePath)
		}
		return entry, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", homePath)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return entry, errors.Newf(errors.ErrInvalidInput,
			"%s is already a symlink; nothing to adopt", homePath)
	}
	if _, err := i.fsys.Lstat(repoPath); err == nil {
		return entry, errors.Newf(errors.ErrInvalidInput,
			"repository path already exists: %s", repoPath)
	}

	var ops []types.Operation
	repoParent := filepath.Dir(repoPath)
	if _, err := i.fsys.Lstat(repoParent); os.IsNotExist(err) {
		ops = append(ops, types.Operation{
			Type:        types.OperationCreateDir,
			Target:      repoParent,
			Description: "create " + repoParent,
		})
	}
	ops = append(ops,
		types.Operation{
			Type:        types.OperationMoveFile,
			Source:      homePath,
			Target:      repoPath,
			Description: "move " + homePath + " into repository",
		},
		types.Operation{
			Type:        types.OperationCreateSymlink,
			Source:      repoPath,
			Target:      homePath,
			Description: "symlink " + homePath + " -> " + repoPath,
		},
	)

	if _, err := i.executor.Apply(ops); err != nil {
		entry.Status = types.StatusFailed
		entry.Err = err
		return entry, err
	}

	entry.Status = types.StatusLinked
	return entry, nil
}
