package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Create a new empty store",
	Long: `Init creates a store with a fresh random salt and asks you to set
the master password. It refuses to overwrite an existing store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}

		if _, err := svc.Init(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized store at %s\n", svc.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
