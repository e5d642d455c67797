package main

import (
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/locknote/pkg/core"
)

// infoOutput is printed by the info command.
type infoOutput struct {
	Store   core.StoreInfo `json:"store"`
	Service any            `json:"service"`
}

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show store metadata",
	Long:  `Info prints the store format, cipher, KDF cost and note count as JSON. It needs no password.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}

		info, err := svc.Info(cmd.Context())
		if err != nil {
			return err
		}

		out := infoOutput{Store: info}
		var intro introspection.Introspectable = svc
		out.Service = intro.State()

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
