package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

func sampleResult() *types.InstallResult {
	return &types.InstallResult{
		Entries: []types.EntryResult{
			{
				Request: types.LinkRequest{Source: "/df/vimrc", Target: "/home/u/.vimrc"},
				Status:  types.StatusLinked,
			},
			{
				Request:    types.LinkRequest{Source: "/df/gitconfig", Target: "/home/u/.gitconfig"},
				Status:     types.StatusLinked,
				BackupPath: "/home/u/.gitconfig.bak",
			},
			{
				Request: types.LinkRequest{Source: "/df/zshrc", Target: "/home/u/.zshrc"},
				Status:  types.StatusAlreadyLinked,
			},
			{
				Request: types.LinkRequest{Source: "/df/absent", Target: "/home/u/.absent"},
				Status:  types.StatusSkipped,
				Err:     errors.New(errors.ErrSourceNotFound, "gone"),
			},
		},
	}
}

func TestRenderInstall(t *testing.T) {
	var buf bytes.Buffer
	RenderInstall(&buf, sampleResult(), false)

	out := buf.String()
	assert.Contains(t, out, "symlink /home/u/.vimrc -> /df/vimrc")
	assert.Contains(t, out, "backed up to /home/u/.gitconfig.bak")
	assert.Contains(t, out, "skipped /home/u/.absent")
	assert.NotContains(t, out, "already linked", "already-linked lines are verbosity-gated")
}

func TestRenderInstallVerboseShowsAlreadyLinked(t *testing.T) {
	var buf bytes.Buffer
	RenderInstall(&buf, sampleResult(), true)
	assert.Contains(t, buf.String(), "already linked /home/u/.zshrc")
}

func TestRenderInstallDryRunPrefix(t *testing.T) {
	result := sampleResult()
	result.DryRun = true

	var buf bytes.Buffer
	RenderInstall(&buf, result, false)

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.True(t, strings.HasPrefix(line, "[dry-run] "), "line %q", line)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, sampleResult())
	assert.Equal(t, "2 linked, 1 already linked, 1 skipped, 0 failed\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"term", "json", "yaml", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUsage))
}

func sampleStatus() []install.StatusEntry {
	return []install.StatusEntry{
		{
			Request: types.LinkRequest{Source: "/df/vimrc", Target: "/home/u/.vimrc"},
			State:   types.StateLinked,
		},
		{
			Request:       types.LinkRequest{Source: "/df/gone", Target: "/home/u/.gone"},
			State:         types.StateAbsent,
			SourceMissing: true,
		},
	}
}

func TestRenderStatusTerm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStatus(&buf, sampleStatus(), FormatTerm))

	out := buf.String()
	assert.Contains(t, out, "/home/u/.vimrc")
	assert.Contains(t, out, "missing source")
}

func TestRenderStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStatus(&buf, sampleStatus(), FormatJSON))

	var decoded []install.StatusEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleStatus(), decoded)
}

func TestRenderStatusYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStatus(&buf, sampleStatus(), FormatYAML))

	var decoded []install.StatusEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleStatus(), decoded)
}
