package config

import (
	"os"
	"path/filepath"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/dotlink-dev/dotlink/pkg/errors"
)

// starterManifest is what `dotlink init` writes into a fresh dotfiles root.
type starterManifest struct {
	Settings Settings          `toml:"settings"`
	Links    map[string]string `toml:"links"`
}

// Generate writes a starter .dotlink.toml into the dotfiles root. It refuses
// to overwrite an existing manifest. Under dry-run the path is validated and
// returned but nothing is written.
func Generate(dotfilesRoot string, dryRun bool) (string, error) {
	if existing := findManifest(dotfilesRoot); existing != "" {
		return "", errors.Newf(errors.ErrInvalidInput,
			"manifest already exists: %s", existing)
	}

	starter := starterManifest{
		Settings: Settings{
			Backup:  "copy",
			Autodot: true,
			Ignore:  []string{".git", "README.md", "LICENSE"},
		},
		Links: map[string]string{
			"shell/aliases.sh": "~/.aliases.sh",
		},
	}

	data, err := gotoml.Marshal(starter)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render starter manifest")
	}

	path := filepath.Join(dotfilesRoot, manifestNames[0])
	if dryRun {
		return path, nil
	}
	if err := os.MkdirAll(dotfilesRoot, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dotfilesRoot)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to write %s", path)
	}
	return path, nil
}
