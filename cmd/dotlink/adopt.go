package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/filesystem"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/lock"
	"github.com/dotlink-dev/dotlink/pkg/paths"
)

var adoptCmd = &cobra.Command{
	Use:   "adopt <path>",
	Short: "Move a file from the home directory into the repository and link it back",
	Long: `Adopt takes a file that already lives in your home directory, moves it
into the dotfiles repository, and replaces the original with a symlink.
The path may be absolute, relative to the current directory, or ~-prefixed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, _, err := buildOptions()
		if err != nil {
			return err
		}

		homePath, err := filepath.Abs(paths.ExpandHome(args[0], opts.HomeDir))
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "invalid path")
		}
		repoPath, err := adoptDestination(homePath, opts.HomeDir, opts.DotfilesRoot)
		if err != nil {
			return err
		}

		if !opts.Force && !opts.DryRun {
			ok, err := pterm.DefaultInteractiveConfirm.
				WithDefaultValue(true).
				Show(fmt.Sprintf("Move %s to %s and link it back?", homePath, repoPath))
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "confirmation failed")
			}
			if !ok {
				pterm.Info.Println("Aborted.")
				return nil
			}
		}

		held, err := lock.Acquire(paths.LockFile())
		if err != nil {
			return err
		}
		defer func() { _ = held.Release() }()

		fsys := filesystem.NewOS()
		entry, err := install.New(fsys, opts).Adopt(homePath, repoPath)
		if err != nil {
			return err
		}

		if !opts.Quiet {
			if opts.DryRun {
				fmt.Printf("[dry-run] would adopt %s -> %s\n", entry.Request.Target, entry.Request.Source)
			} else {
				fmt.Printf("adopted %s -> %s\n", entry.Request.Target, entry.Request.Source)
			}
		}
		return nil
	},
}

// adoptDestination maps a home-directory path to its place in the
// repository, stripping the leading dot the same way discovery adds it.
func adoptDestination(homePath, home, root string) (string, error) {
	rel, err := filepath.Rel(home, homePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Newf(errors.ErrInvalidInput,
			"%s is outside the home directory %s", homePath, home)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	parts[0] = strings.TrimPrefix(parts[0], ".")
	return filepath.Join(append([]string{root}, parts...)...), nil
}
