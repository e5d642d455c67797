package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/locknote/pkg/core"
)

// noteNotFound is printed by view and delete for an unknown id. It is a normal
// outcome and exits 0.
const noteNotFound = "Note not found."

var deleteCmd = &cobra.Command{
	Use:   "delete <id> [file]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note after the master password is confirmed.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 1))
		if err != nil {
			return err
		}

		err = svc.Delete(cmd.Context(), args[0])
		if core.IsNotFoundError(err) {
			fmt.Fprintln(cmd.OutOrStdout(), noteNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Note deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
