package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/locknote/pkg/core"
)

var viewJSON bool

var viewCmd = &cobra.Command{
	Use:   "view <id> [file]",
	Short: "Decrypt and print a note",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 1))
		if err != nil {
			return err
		}

		note, err := svc.View(cmd.Context(), args[0])
		if core.IsNotFoundError(err) {
			fmt.Fprintln(cmd.OutOrStdout(), noteNotFound)
			return nil
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if viewJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(note)
		}
		fmt.Fprintf(out, "Note ID: %s\n\n%s\n", note.ID, note.Text())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "Output in JSON format")
}
