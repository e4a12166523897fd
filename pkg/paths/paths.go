// Package paths centralizes path handling for dotlink: home-directory
// expansion, dotfiles-root resolution and the XDG-based state and lock
// locations.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/dotlink-dev/dotlink/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot overrides the dotfiles repository location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// DefaultDotfilesDir is the default repository directory under home
	DefaultDotfilesDir = "dotfiles"

	// appDir is the subdirectory used under the XDG state home
	appDir = "dotlink"

	// LockFileName is the advisory lock file under the state directory
	LockFileName = "dotlink.lock"
)

// HomeDirectory returns the user's home directory, preferring
// os.UserHomeDir and falling back to $HOME. It never guesses a default.
func HomeDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	home = os.Getenv(EnvHome)
	if home != "" {
		return home, nil
	}
	return "", errors.New(errors.ErrFileAccess,
		"unable to determine home directory: neither os.UserHomeDir() nor HOME are available")
}

// ExpandHome expands a leading ~ to the given home directory. Paths without
// a ~ prefix are returned unchanged.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

// DotfilesRoot resolves the dotfiles repository directory. An explicit value
// wins, then $DOTFILES_ROOT, then <home>/dotfiles.
func DotfilesRoot(explicit, home string) string {
	if explicit != "" {
		return ExpandHome(explicit, home)
	}
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root, home)
	}
	return filepath.Join(home, DefaultDotfilesDir)
}

// StateDir returns the dotlink state directory under the XDG state home.
func StateDir() string {
	stateHome := xdg.StateHome
	if stateHome == "" {
		home, err := HomeDirectory()
		if err != nil {
			return appDir
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appDir)
}

// LockFile returns the path of the advisory lock file.
func LockFile() string {
	return filepath.Join(StateDir(), LockFileName)
}
