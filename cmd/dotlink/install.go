package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/filesystem"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/lock"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/paths"
	"github.com/dotlink-dev/dotlink/pkg/shell"
	"github.com/dotlink-dev/dotlink/pkg/ui/output"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Symlink the dotfiles repository into the home directory",
	Long: `Install discovers every candidate in the dotfiles repository, backs up
anything it would overwrite under a unique name, and creates the symlinks.
Entries that fail are reported and the batch continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.install")

		opts, manifest, err := buildOptions()
		if err != nil {
			return err
		}

		runner := shell.New(opts)
		if opts.Escalate {
			// Fail fast before the batch starts, not at the first
			// privileged removal.
			if _, err := runner.LookPath("sudo"); err != nil {
				return err
			}
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

		logger.Info().
			Int("candidates", len(requests)).
			Bool("dryRun", opts.DryRun).
			Str("root", opts.DotfilesRoot).
			Msg("starting install")

		result := install.New(fsys, opts).Install(requests)

		if !opts.Quiet {
			output.RenderInstall(os.Stdout, result, opts.Verbose > 0)
			output.RenderSummary(os.Stdout, result)
		}

		if failed := result.Failed(); len(failed) > 0 {
			return errors.Newf(errors.ErrInternal,
				"%d of %d entries failed", len(failed), len(result.Entries))
		}
		return nil
	},
}
