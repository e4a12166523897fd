package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dotlink-dev/dotlink/pkg/filesystem"
	"github.com/dotlink-dev/dotlink/pkg/install"
	"github.com/dotlink-dev/dotlink/pkg/ui/output"
)

var flagFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of every link candidate without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}

		opts, manifest, err := buildOptions()
		if err != nil {
			return err
		}

		fsys := filesystem.NewOS()
		requests, err := install.Discover(fsys, manifest, opts)
		if err != nil {
			return err
		}

		entries, err := install.New(fsys, opts).Status(requests)
		if err != nil {
			return err
		}

		if opts.Quiet {
			return nil
		}
		return output.RenderStatus(os.Stdout, entries, format)
	},
}

func init() {
	statusCmd.Flags().StringVar(&flagFormat, "format", "term", "Output format: term, json or yaml")
}
