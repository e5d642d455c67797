package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword> [file]",
	Short: "Find notes containing a keyword",
	Long: `Search decrypts every note and prints the ids of those whose title or
body contains the keyword (case-sensitive). Notes that fail to decrypt are
reported on stderr unless --search-policy=fail-fast is set.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := args[0]
		svc, err := openService(cmd, fileArg(args, 1))
		if err != nil {
			return err
		}

		res, err := svc.Search(cmd.Context(), keyword)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, sk := range res.Skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not decrypt note %s\n", sk.ID)
		}
		if len(res.Matches) == 0 {
			fmt.Fprintf(out, "No matches found for '%s'\n", keyword)
			return nil
		}
		fmt.Fprintln(out, "Found matches in IDs:")
		for _, id := range res.Matches {
			fmt.Fprintf(out, "- %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
