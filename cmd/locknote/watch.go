package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/locknote/pkg/adapters/lifecycle"
	"github.com/aretw0/locknote/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Print note changes as they happen",
	Long: `Watch follows the store file and prints one line per note created or
deleted by any process, until interrupted. It needs no password.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var types []core.EventType
		for _, name := range watchTypes {
			t, err := core.ParseEventType(name)
			if err != nil {
				return err
			}
			types = append(types, t)
		}

		svc, err := openService(cmd, fileArg(args, 0))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := svc.Watch(ctx)
		if err != nil {
			return err
		}
		src := lifecycle.NewSource(events, types...)
		if err := src.Start(ctx); err != nil {
			return err
		}

		logger.Info("watching store", "path", svc.Path())
		out := cmd.OutOrStdout()
		for e := range src.Events() {
			fmt.Fprintln(out, e)
		}
		return nil
	},
}

var watchTypes []string

func init() {
	watchCmd.Flags().StringSliceVar(&watchTypes, "only", nil, "Only print these event types (create, delete, rekey)")
	rootCmd.AddCommand(watchCmd)
}
