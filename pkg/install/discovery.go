package install

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotlink-dev/dotlink/pkg/config"
	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/paths"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

// Discover enumerates the link requests for a run: the manifest's explicit
// [links] entries plus, when autodot is on, every non-ignored top-level
// entry of the dotfiles root mapped to ~/.<name>. Explicit entries win over
// autodot for the same target. The result is sorted by target so batches
// process in a stable order.
func Discover(fsys types.FS, m *config.Manifest, opts *types.Options) ([]types.LinkRequest, error) {
	logger := logging.GetLogger("install.discover")

	byTarget := make(map[string]types.LinkRequest)

	for rel, target := range m.Links {
		source := rel
		if !filepath.IsAbs(source) {
			source = filepath.Join(opts.DotfilesRoot, rel)
		}
		req := types.LinkRequest{
			Source: source,
			Target: paths.ExpandHome(target, opts.HomeDir),
		}
		byTarget[req.Target] = req
	}

	if m.Settings.Autodot {
		entries, err := fsys.ReadDir(opts.DotfilesRoot)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"failed to read dotfiles root %s", opts.DotfilesRoot)
		}
		for _, entry := range entries {
			name := entry.Name()
			if m.Ignored(name) {
				continue
			}
			target := filepath.Join(opts.HomeDir, "."+strings.TrimPrefix(name, "."))
			if _, taken := byTarget[target]; taken {
				continue
			}
			byTarget[target] = types.LinkRequest{
				Source: filepath.Join(opts.DotfilesRoot, name),
				Target: target,
			}
		}
	}

	requests := make([]types.LinkRequest, 0, len(byTarget))
	for _, req := range byTarget {
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].Target < requests[j].Target
	})

	logger.Debug().
		Int("count", len(requests)).
		Str("root", opts.DotfilesRoot).
		Msg("discovered link candidates")

	return requests, nil
}
