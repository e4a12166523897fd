package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/dotlink-dev/dotlink/internal/version"
	"github.com/dotlink-dev/dotlink/pkg/config"
	"github.com/dotlink-dev/dotlink/pkg/errors"
	"github.com/dotlink-dev/dotlink/pkg/logging"
	"github.com/dotlink-dev/dotlink/pkg/paths"
	"github.com/dotlink-dev/dotlink/pkg/types"
)

var (
	flagVerbosity int
	flagDryRun    bool
	flagQuiet     bool
	flagForce     bool
	flagSudo      bool
	flagNoBackup  bool
	flagHome      string
	flagRoot      string
	flagLogLevel  string
	flagLogFile   string

	rootCmd = &cobra.Command{
		Use:   "dotlink",
		Short: "An idempotent dotfiles symlink installer",
		Long: `dotlink installs a dotfiles repository by symlinking its files into your
home directory. Anything it would overwrite is backed up first under a
unique name, and a dry-run mode previews every action without touching
the filesystem.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := logging.ParseLevel(flagLogLevel); err != nil {
				return errors.Wrap(err, errors.ErrUsage, "invalid --log-level")
			}
			logging.Setup(logging.Config{
				Level:     flagLogLevel,
				File:      flagLogFile,
				Verbosity: flagVerbosity,
				Quiet:     flagQuiet,
			})
			log.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flagVerbosity, "verbose", "v", "Increase verbosity (-v shows command output, -vv debug logging)")
	pf.BoolVarP(&flagDryRun, "dry-run", "n", false, "Preview changes without executing them")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress stdout reporting (the log file still honors --log-level)")
	pf.BoolVar(&flagForce, "force", false, "Assume yes for interactive confirmations")
	pf.BoolVar(&flagSudo, "sudo", false, "Escalate removal of destinations not writable by the current user")
	pf.BoolVar(&flagNoBackup, "no-backup", false, "Do not back up existing destinations before replacing them")
	pf.StringVar(&flagHome, "home", "", "Target home directory (default: current user's home)")
	pf.StringVar(&flagRoot, "root", "", "Dotfiles repository root (default: $DOTFILES_ROOT or ~/dotfiles)")
	pf.StringVar(&flagLogLevel, "log-level", logging.LevelError, "Log level: FATAL, ERROR, WARN, INFO, NOTICE, DEBUG, ALL or OFF")
	pf.StringVar(&flagLogFile, "log-file", "", "Log file path (default: under the XDG state directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(adoptCmd)
	rootCmd.AddCommand(initCmd)
}

// buildOptions assembles the read-only run options from flags, environment
// and the repository manifest.
func buildOptions() (*types.Options, *config.Manifest, error) {
	home := flagHome
	if home == "" {
		var err error
		home, err = paths.HomeDirectory()
		if err != nil {
			return nil, nil, err
		}
	}

	root := paths.DotfilesRoot(flagRoot, home)

	manifest, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	policy, err := manifest.BackupPolicy(home)
	if err != nil {
		return nil, nil, err
	}
	if flagNoBackup {
		policy = types.BackupPolicy{Disabled: true}
	}

	opts := &types.Options{
		DryRun:       flagDryRun,
		Verbose:      flagVerbosity,
		Quiet:        flagQuiet,
		Force:        flagForce,
		Escalate:     flagSudo,
		HomeDir:      home,
		DotfilesRoot: root,
		Backup:       policy,
	}
	return opts, manifest, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dotlink version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(dotlink completion bash)

Zsh:
  $ dotlink completion zsh > "${fpath[1]}/_dotlink"

Fish:
  $ dotlink completion fish | source

PowerShell:
  PS> dotlink completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("failed to generate powershell completion")
			}
		}
	},
}

var manCmd = &cobra.Command{
	Use:   "man [dir]",
	Short: "Generate man pages into a directory (default: current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if flagDryRun {
			fmt.Printf("[dry-run] would write man pages to %s\n", dir)
			return nil
		}
		header := &doc.GenManHeader{
			Title:   "DOTLINK",
			Section: "1",
		}
		if err := doc.GenManTree(rootCmd, header, dir); err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Printf("wrote man pages to %s\n", dir)
		}
		return nil
	},
}
