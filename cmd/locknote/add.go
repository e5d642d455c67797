package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add an encrypted note",
	Long: `Add reads a title line, then the note body until end of input
(Ctrl+D), and stores both encrypted under the master password.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		// Fail before the user types a note into a missing or broken store.
		if _, err := svc.Info(ctx); err != nil {
			return err
		}

		prompter := newPrompter(cmd)
		title, err := prompter.ReadLine("Title: ")
		if err != nil {
			return fmt.Errorf("failed to read title: %w", err)
		}
		body, err := prompter.ReadText("Enter note content (end with Ctrl+D):\n")
		if err != nil {
			return fmt.Errorf("failed to read note content: %w", err)
		}

		id, err := svc.Add(ctx, strings.TrimRight(title, " \t"), strings.TrimSpace(body))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note added: %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
