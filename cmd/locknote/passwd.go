package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd [file]",
	Short: "Change the master password",
	Long: `Passwd re-encrypts every note under a new password and a new salt.
The store is rewritten once; if any note fails to decrypt nothing changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}

		if err := svc.ChangePassword(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Master password changed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}
