package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	listMatch string
)

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List note ids",
	Long:  `List prints the ids of all notes in insertion order. It needs no password.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}

		ids, err := svc.List(cmd.Context(), listMatch)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(ids)
		}

		fmt.Fprintln(out, "Stored Notes:")
		for _, id := range ids {
			fmt.Fprintf(out, "- %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Only list ids matching a glob pattern")
}
