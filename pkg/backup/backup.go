// Package backup preserves files, directories and symlinks before the
// installer overwrites them. Placement is either alongside the original with
// a .bak suffix or inside a designated backup directory; preservation is by
// copy or by move. Backup names are uniquified so repeated installs never
// clobber an earlier backup.
package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/types"
	"github.com/dotlink-dev/dotlink/pkg/uniquepath"
)

// Suffix appended to backups placed alongside the original.
const Suffix = ".bak"

// File preserves path according to policy and returns the backup location.
// A disabled policy returns an empty path and no error. A missing source
// returns ErrSourceNotFound, which callers treat as "nothing to back up".
func File(fsys types.FS, path string, policy types.BackupPolicy) (string, error) {
	if policy.Disabled {
		return "", nil
	}

	logger := logging.GetLogger("backup")

	info, err := fsys.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrSourceNotFound, "nothing to back up at %s", path)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
	}

	target, err := backupTarget(fsys, path, policy)
	if err != nil {
		return "", err
	}

	switch policy.Preservation {
	case types.PreserveMove:
		if err := fsys.Rename(path, target); err != nil {
			return "", errors.Wrapf(err, errors.ErrBackupFailed,
				"failed to move %s to %s", path, target)
		}
	default:
		if err := copyAny(fsys, path, target, info); err != nil {
			return "", err
		}
	}

	logger.Debug().
		Str("source", path).
		Str("backup", target).
		Str("preservation", string(policy.Preservation)).
		Msg("backed up existing destination")

	return target, nil
}

// backupTarget computes the collision-free destination for the backup.
func backupTarget(fsys types.FS, path string, policy types.BackupPolicy) (string, error) {
	switch policy.Placement {
	case types.PlaceDirectory:
		dir := policy.Directory
		if dir == "" {
			return "", errors.New(errors.ErrInvalidInput,
				"directory backup placement requires a backup directory")
		}
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create backup directory %s", dir)
		}
		name := strings.TrimPrefix(filepath.Base(path), ".")
		return uniquepath.Next(fsys, filepath.Join(dir, name), "-", uniquepath.ModeInfix)
	default:
		return uniquepath.Next(fsys, path+Suffix, ".", uniquepath.ModeSuffix)
	}
}

// copyAny copies a file, symlink or directory tree. Symlinks are preserved
// as links, never dereferenced.
func copyAny(fsys types.FS, src, dst string, info fs.FileInfo) error {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		linkTarget, err := fsys.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackupFailed, "failed to read symlink %s", src)
		}
		if err := fsys.Symlink(linkTarget, dst); err != nil {
			return errors.Wrapf(err, errors.ErrBackupFailed,
				"failed to recreate symlink %s at %s", src, dst)
		}
		return nil

	case info.IsDir():
		return copyDir(fsys, src, dst)

	default:
		return copyFile(fsys, src, dst, info.Mode().Perm())
	}
}

func copyFile(fsys types.FS, src, dst string, perm fs.FileMode) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to read %s", src)
	}
	if err := fsys.WriteFile(dst, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to write %s", dst)
	}
	return nil
}

func copyDir(fsys types.FS, src, dst string) error {
	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", src)
	}
	if err := fsys.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		info, err := fsys.Lstat(srcPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", srcPath)
		}
		if err := copyAny(fsys, srcPath, dstPath, info); err != nil {
			return err
		}
	}
	return nil
}
