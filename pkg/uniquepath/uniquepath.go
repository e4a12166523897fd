// Package uniquepath derives filesystem paths that are guaranteed not to
// collide with existing entries, by appending an incrementing counter.
package uniquepath

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// Mode selects where the counter is inserted.
type Mode string

const (
	// ModeSuffix appends the counter after the full name: file.txt.1
	ModeSuffix Mode = "suffix"
	// ModeInfix inserts the counter before the extension: file-1.txt
	ModeInfix Mode = "infix"
)

// compoundSuffixes are two-level extensions treated as a single unit when
// splitting a name in infix mode.
var compoundSuffixes = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tar.zst",
}

// Split breaks a filename (no directory component) into base and extension.
// Compound archive suffixes count as one extension; otherwise the extension
// is the final dot-segment. Dotfiles like ".vimrc" have no extension.
func Split(name string) (base, ext string) {
	lower := strings.ToLower(name)
	for _, s := range compoundSuffixes {
		if strings.HasSuffix(lower, s) && len(name) > len(s) {
			return name[:len(name)-len(s)], name[len(name)-len(s):]
		}
	}
	ext = filepath.Ext(name)
	if ext == name {
		// The whole name is a dot-segment (".vimrc"); no extension.
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}

// Next returns candidate unchanged when nothing exists there, otherwise the
// first counter-decorated variant that is free. The counter starts at 1 and
// has no upper bound. Lstat is used so broken symlinks still count as
// occupied. The existence probe is the only filesystem interaction; the
// result is only as fresh as the snapshot it was computed against.
func Next(fsys types.FS, candidate string, sep string, mode Mode) (string, error) {
	occupied, err := exists(fsys, candidate)
	if err != nil {
		return "", err
	}
	if !occupied {
		return candidate, nil
	}

	dir := filepath.Dir(candidate)
	name := filepath.Base(candidate)
	base, ext := Split(name)

	for n := 1; ; n++ {
		var variant string
		switch mode {
		case ModeInfix:
			variant = base + sep + strconv.Itoa(n) + ext
		default:
			variant = name + sep + strconv.Itoa(n)
		}
		path := filepath.Join(dir, variant)
		occupied, err := exists(fsys, path)
		if err != nil {
			return "", err
		}
		if !occupied {
			return path, nil
		}
	}
}

func exists(fsys types.FS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to probe %s", path)
}
