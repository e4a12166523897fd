package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

func writeManifest(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
}

func TestLoadDefaultsOnly(t *testing.T) {
	root := t.TempDir()

	m, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "copy", m.Settings.Backup)
	assert.True(t, m.Settings.Autodot)
	assert.Contains(t, m.Settings.Ignore, ".git")
	assert.Empty(t, m.Links)
}

func TestLoadTomlManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, ".dotlink.toml", `
[settings]
backup = "move"
autodot = false

[links]
"shell/aliases.sh" = "~/.aliases.sh"
"git/gitconfig" = "~/.gitconfig"
`)

	m, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "move", m.Settings.Backup)
	assert.False(t, m.Settings.Autodot)
	assert.Equal(t, "~/.aliases.sh", m.Links["shell/aliases.sh"])
	assert.Equal(t, "~/.gitconfig", m.Links["git/gitconfig"])
}

func TestLoadYamlManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, ".dotlink.yaml", `
settings:
  backup: "off"
links:
  vimrc: "~/.vimrc"
`)

	m, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "off", m.Settings.Backup)
	assert.Equal(t, "~/.vimrc", m.Links["vimrc"])
}

func TestLoadEnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("DOTLINK_SETTINGS_BACKUP", "move")

	m, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "move", m.Settings.Backup)
}

func TestLoadBadToml(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, ".dotlink.toml", "[settings\nbackup =")

	_, err := Load(root)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigParse))
}

func TestBackupPolicy(t *testing.T) {
	home := "/home/u"

	tests := []struct {
		name     string
		settings Settings
		want     types.BackupPolicy
		wantErr  bool
	}{
		{
			name:     "default copy suffix",
			settings: Settings{Backup: "copy"},
			want: types.BackupPolicy{
				Placement:    types.PlaceSuffix,
				Preservation: types.PreserveCopy,
			},
		},
		{
			name:     "move into directory",
			settings: Settings{Backup: "move", BackupDir: "~/backups"},
			want: types.BackupPolicy{
				Placement:    types.PlaceDirectory,
				Preservation: types.PreserveMove,
				Directory:    "/home/u/backups",
			},
		},
		{
			name:     "disabled",
			settings: Settings{Backup: "off"},
			want:     types.BackupPolicy{Disabled: true},
		},
		{
			name:     "invalid",
			settings: Settings{Backup: "sometimes"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Settings: tt.settings}
			got, err := m.BackupPolicy(home)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIgnored(t *testing.T) {
	m := &Manifest{Settings: Settings{Ignore: []string{".git", "*.md"}}}

	assert.True(t, m.Ignored(".git"))
	assert.True(t, m.Ignored("README.md"))
	assert.False(t, m.Ignored(".vimrc"))
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()

	path, err := Generate(root, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".dotlink.toml"), path)

	// The generated manifest round-trips through Load.
	m, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "copy", m.Settings.Backup)
	assert.Equal(t, "~/.aliases.sh", m.Links["shell/aliases.sh"])

	// A second init refuses to overwrite.
	_, err = Generate(root, false)
	assert.Error(t, err)
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()

	path, err := Generate(root, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".dotlink.toml"), path)

	_, err = os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "dry-run must not create the manifest")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry-run must leave the root untouched")

	// An existing manifest is still detected under dry-run.
	writeManifest(t, root, ".dotlink.toml", "[settings]\n")
	_, err = Generate(root, true)
	assert.Error(t, err)
}
