package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/locknote"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of locknote",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "locknote version %s\n", strings.TrimSpace(locknote.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
