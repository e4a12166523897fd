package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// Format selects the status command's output encoding.
type Format string

const (
	FormatTerm Format = "term"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTerm, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatTerm, nil
	}
	return "", errors.Newf(errors.ErrUsage, "unknown output format %q: want term, json or yaml", s)
}

// RenderInstall writes one line per entry of an install or unlink run.
// Already-linked entries are shown only when verbose; dry-run output is
// prefixed so it cannot be mistaken for performed work.
func RenderInstall(w io.Writer, result *types.InstallResult, verbose bool) {
	prefix := ""
	if result.DryRun {
		prefix = styled(noticeStyle, "[dry-run] ")
	}

	for _, entry := range result.Entries {
		switch entry.Status {
		case types.StatusLinked:
			line := fmt.Sprintf("%ssymlink %s -> %s",
				prefix, styled(pathStyle, entry.Request.Target), entry.Request.Source)
			if entry.BackupPath != "" {
				line += styled(mutedStyle, fmt.Sprintf(" (backed up to %s)", entry.BackupPath))
			}
			fmt.Fprintln(w, line)
		case types.StatusAlreadyLinked:
			if verbose {
				fmt.Fprintf(w, "%s%s %s\n", prefix,
					styled(mutedStyle, "already linked"), entry.Request.Target)
			}
		case types.StatusUnlinked:
			fmt.Fprintf(w, "%sunlinked %s\n", prefix, styled(pathStyle, entry.Request.Target))
		case types.StatusSkipped:
			fmt.Fprintf(w, "%s%s %s: %v\n", prefix,
				styled(warningStyle, "skipped"), entry.Request.Target, entry.Err)
		case types.StatusFailed:
			fmt.Fprintf(w, "%s%s %s: %v\n", prefix,
				styled(errorStyle, "failed"), entry.Request.Target, entry.Err)
		}
	}
}

// RenderSummary writes the closing counts line for an install run.
func RenderSummary(w io.Writer, result *types.InstallResult) {
	var linked, already, skipped, failed int
	for _, entry := range result.Entries {
		switch entry.Status {
		case types.StatusLinked:
			linked++
		case types.StatusAlreadyLinked:
			already++
		case types.StatusSkipped:
			skipped++
		case types.StatusFailed:
			failed++
		}
	}

	line := fmt.Sprintf("%d linked, %d already linked, %d skipped, %d failed",
		linked, already, skipped, failed)
	if failed > 0 {
		fmt.Fprintln(w, styled(errorStyle, line))
	} else {
		fmt.Fprintln(w, styled(successStyle, line))
	}
}

// RenderStatus writes the status entries in the requested format.
func RenderStatus(w io.Writer, entries []install.StatusEntry, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(entries)
	default:
		for _, entry := range entries {
			label := statusLabel(entry)
			fmt.Fprintf(w, "%s %s\n", label, entry.Request.Target)
		}
		return nil
	}
}

func statusLabel(entry install.StatusEntry) string {
	if entry.SourceMissing {
		return styled(errorStyle, "missing source")
	}
	switch entry.State {
	case types.StateLinked:
		return styled(successStyle, "linked        ")
	case types.StateAbsent:
		return styled(mutedStyle, "not installed ")
	case types.StateWrongLink:
		return styled(warningStyle, "wrong target  ")
	default:
		return styled(warningStyle, "occupied      ")
	}
}
