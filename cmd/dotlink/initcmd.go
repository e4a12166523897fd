package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotlink-dev/dotlink/pkg/config"
	"github.com/dotlink-dev/dotlink/pkg/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter manifest into the dotfiles repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		home := flagHome
		if home == "" {
			var err error
			home, err = paths.HomeDirectory()
			if err != nil {
				return err
			}
		}
		root := paths.DotfilesRoot(flagRoot, home)

		path, err := config.Generate(root, flagDryRun)
		if err != nil {
			return err
		}
		if !flagQuiet {
			if flagDryRun {
				fmt.Printf("[dry-run] would write %s\n", path)
			} else {
				fmt.Printf("wrote %s\n", path)
			}
		}
		return nil
	},
}
