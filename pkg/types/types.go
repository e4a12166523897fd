// Package types holds the shared data model for dotlink: the filesystem
// abstraction, link requests, backup policies, operations and run options.
package types

import (
	"io/fs"
)

// FS is the filesystem interface used by all dotlink components.
// Production code uses the OS implementation in pkg/filesystem; tests may
// substitute their own.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// LinkRequest is a single symlink to install: Source is the file inside the
// dotfiles repository, Target is where the symlink goes in the user's home.
// Both are absolute after home expansion.
type LinkRequest struct {
	Source string
	Target string
}

// BackupPlacement selects where a backup of an overwritten file goes.
type BackupPlacement string

const (
	// PlaceSuffix keeps the backup next to the original with a .bak suffix.
	PlaceSuffix BackupPlacement = "suffix"
	// PlaceDirectory moves backups into a designated backup directory,
	// stripping the leading dot from the name.
	PlaceDirectory BackupPlacement = "directory"
)

// BackupPreservation selects whether the original survives the backup.
type BackupPreservation string

const (
	// PreserveCopy copies the original; it remains at its source path.
	PreserveCopy BackupPreservation = "copy"
	// PreserveMove moves the original; the source path is freed.
	PreserveMove BackupPreservation = "move"
)

// BackupPolicy describes how an existing destination is preserved before
// dotlink overwrites it.
type BackupPolicy struct {
	// Disabled skips backups entirely. Existing destinations are removed.
	Disabled bool
	// Placement picks suffix or directory placement. Ignored when Disabled.
	Placement BackupPlacement
	// Preservation picks copy or move. Ignored when Disabled.
	Preservation BackupPreservation
	// Directory is the backup directory for PlaceDirectory.
	Directory string
}

// DefaultBackupPolicy is copy-to-.bak, the safe default for installs.
func DefaultBackupPolicy() BackupPolicy {
	return BackupPolicy{
		Placement:    PlaceSuffix,
		Preservation: PreserveCopy,
	}
}

// LinkState is the state of a destination path before the linker acts.
type LinkState string

const (
	// StateAbsent means nothing exists at the destination.
	StateAbsent LinkState = "absent"
	// StateLinked means the destination is already a symlink to the source.
	StateLinked LinkState = "linked"
	// StateWrongLink means the destination is a symlink to something else.
	StateWrongLink LinkState = "wrong-link"
	// StateExists means a regular file or directory occupies the destination.
	StateExists LinkState = "exists"
)

// OperationType identifies a kind of filesystem or command mutation.
type OperationType string

const (
	OperationCreateDir     OperationType = "create_dir"
	OperationCreateSymlink OperationType = "create_symlink"
	OperationCopyFile      OperationType = "copy_file"
	OperationMoveFile      OperationType = "move_file"
	OperationDeleteFile    OperationType = "delete_file"
	OperationBackup        OperationType = "backup"
	OperationExecute       OperationType = "execute"
)

// Operation is a single planned mutation. Operations are produced by the
// linker and executed by the executor, which is the only place the DryRun
// flag is consulted for filesystem changes.
type Operation struct {
	Type        OperationType
	Source      string
	Target      string
	Mode        *uint32
	Description string

	// Command fields, used only by OperationExecute.
	Command string
	Args    []string

	// Escalate requests elevated privileges for removal of destinations the
	// current user cannot write.
	Escalate bool
}

// EntryStatus is the per-candidate outcome of an install run.
type EntryStatus string

const (
	StatusLinked        EntryStatus = "linked"
	StatusAlreadyLinked EntryStatus = "already-linked"
	StatusUnlinked      EntryStatus = "unlinked"
	StatusSkipped       EntryStatus = "skipped"
	StatusFailed        EntryStatus = "failed"
)

// EntryResult records what happened to one candidate.
type EntryResult struct {
	Request    LinkRequest
	Status     EntryStatus
	BackupPath string
	Err        error
}

// InstallResult is the outcome of one installer run.
type InstallResult struct {
	Entries []EntryResult
	DryRun  bool
}

// Failed returns the entries that did not complete.
func (r *InstallResult) Failed() []EntryResult {
	var out []EntryResult
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Changed reports whether the run performed (or, under dry-run, would have
// performed) any mutation.
func (r *InstallResult) Changed() bool {
	for _, e := range r.Entries {
		if e.Status == StatusLinked {
			return true
		}
	}
	return false
}

// Options is the read-only configuration for one dotlink run. It is built
// once by the CLI and passed by reference into the installer entry points;
// nothing mutates it after startup.
type Options struct {
	// DryRun disables every mutation; intended actions are reported instead.
	DryRun bool
	// Verbose is the -v count. At 1 command output is shown, at 2+ debug
	// logging is enabled.
	Verbose int
	// Quiet suppresses stdout rendering. The log file still honors LogLevel.
	Quiet bool
	// Force answers yes to interactive confirmations.
	Force bool
	// Escalate allows privileged removal of destinations the user cannot
	// write.
	Escalate bool

	// HomeDir is the target home directory.
	HomeDir string
	// DotfilesRoot is the repository the installer links out of.
	DotfilesRoot string

	Backup BackupPolicy
}
