package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/filesystem"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/lock"
	"github.com/dotlink-dev/dotlink/pkg/paths"
	"github.com/dotlink-dev/dotlink/pkg/ui/output"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the symlinks dotlink installed",
	Long: `Unlink removes destinations that are symlinks pointing back into the
dotfiles repository. Regular files and symlinks owned by anything else are
left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, manifest, err := buildOptions()
		if err != nil {
			return err
		}

		held, err := lock.Acquire(paths.LockFile())
		if err != nil {
			return err
		}
		defer func() { _ = held.Release() }()

		fsys := filesystem.NewOS()
		requests, err := install.Discover(fsys, manifest, opts)
		if err != nil {
			return err
		}

		result := install.New(fsys, opts).Unlink(requests)

		if !opts.Quiet {
			output.RenderInstall(os.Stdout, result, opts.Verbose > 0)
		}

		if failed := result.Failed(); len(failed) > 0 {
			return errors.Newf(errors.ErrInternal,
				"%d of %d entries failed", len(failed), len(result.Entries))
		}
		return nil
	},
}
