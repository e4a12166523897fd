// Package config loads the dotlink manifest. Configuration is layered:
// embedded defaults, then the repository manifest (.dotlink.toml or
// .dotlink.yaml in the dotfiles root), then DOTLINK_* environment variables.
package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/paths"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Manifest file names probed in the dotfiles root, in order.
var manifestNames = []string{".dotlink.toml", "dotlink.toml", ".dotlink.yaml", "dotlink.yaml"}

// envPrefix for environment overrides, e.g. DOTLINK_SETTINGS_BACKUP=move.
const envPrefix = "DOTLINK_"

// Settings are the run-level knobs of the manifest.
type Settings struct {
	Backup    string   `koanf:"backup"`
	BackupDir string   `koanf:"backup_dir"`
	Autodot   bool     `koanf:"autodot"`
	Ignore    []string `koanf:"ignore"`
}

// Manifest is the parsed repository configuration.
type Manifest struct {
	Settings Settings          `koanf:"settings"`
	Links    map[string]string `koanf:"links"`
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load reads the layered manifest for the given dotfiles root.
func Load(dotfilesRoot string) (*Manifest, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. Repository manifest, if present
	if path := findManifest(dotfilesRoot); path != "" {
		parser := parserFor(path)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"failed to parse manifest %s", path)
		}
		logger.Debug().Str("path", path).Msg("loaded repository manifest")
	}

	// 3. Environment overrides: DOTLINK_SETTINGS_BACKUP -> settings.backup
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var m Manifest
	if err := k.Unmarshal("", &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal manifest")
	}
	return &m, nil
}

// BackupPolicy translates the manifest settings into a backup policy.
func (m *Manifest) BackupPolicy(home string) (types.BackupPolicy, error) {
	var policy types.BackupPolicy

	switch strings.ToLower(m.Settings.Backup) {
	case "", "copy":
		policy.Preservation = types.PreserveCopy
	case "move":
		policy.Preservation = types.PreserveMove
	case "off", "none", "false":
		policy.Disabled = true
		return policy, nil
	default:
		return policy, errors.Newf(errors.ErrConfigParse,
			"invalid backup setting %q: want copy, move or off", m.Settings.Backup)
	}

	if m.Settings.BackupDir != "" {
		policy.Placement = types.PlaceDirectory
		policy.Directory = paths.ExpandHome(m.Settings.BackupDir, home)
	} else {
		policy.Placement = types.PlaceSuffix
	}
	return policy, nil
}

// Ignored reports whether a top-level entry is excluded from autodot
// discovery.
func (m *Manifest) Ignored(name string) bool {
	for _, pattern := range m.Settings.Ignore {
		if matched, _ := filepath.Match(pattern, name); matched || pattern == name {
			return true
		}
	}
	return false
}

func findManifest(root string) string {
	for _, name := range manifestNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func parserFor(path string) koanf.Parser {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
