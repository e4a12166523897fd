package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"bare tilde", "~", "/home/u"},
		{"tilde slash", "~/.vimrc", "/home/u/.vimrc"},
		{"nested", "~/a/b/c", "/home/u/a/b/c"},
		{"absolute untouched", "/etc/hosts", "/etc/hosts"},
		{"relative untouched", "dotfiles/x", "dotfiles/x"},
		{"tilde user untouched", "~other/x", "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.path, "/home/u"))
		})
	}
}

func TestDotfilesRoot(t *testing.T) {
	home := "/home/u"

	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv(EnvDotfilesRoot, "/elsewhere")
		assert.Equal(t, "/repo", DotfilesRoot("/repo", home))
	})

	t.Run("explicit with tilde", func(t *testing.T) {
		assert.Equal(t, "/home/u/df", DotfilesRoot("~/df", home))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(EnvDotfilesRoot, "/from-env")
		assert.Equal(t, "/from-env", DotfilesRoot("", home))
	})

	t.Run("default under home", func(t *testing.T) {
		t.Setenv(EnvDotfilesRoot, "")
		assert.Equal(t, filepath.Join(home, DefaultDotfilesDir), DotfilesRoot("", home))
	})
}

func TestHomeDirectory(t *testing.T) {
	home, err := HomeDirectory()
	require.NoError(t, err)
	assert.NotEmpty(t, home)
}

func TestStatePaths(t *testing.T) {
	assert.Equal(t, "dotlink.lock", filepath.Base(LockFile()))
	assert.Contains(t, LockFile(), "dotlink")
}
