package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deb2000-sudo/courier/internal/orchestration"
)

func newRestartCmd(stateDir *string) *cobra.Command {
	var excludes []string

	cmd := &cobra.Command{
		Use:   "restart <id>",
		Short: "Restart a transfer (re-scan and re-send)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transfer id %q: %w", args[0], err)
			}

			o, err := orchestration.New(*stateDir)
			if err != nil {
				return err
			}
			defer o.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			fmt.Printf("Restarting transfer %d...\n", id)
			bar := newProgressBar(fmt.Sprintf("restarting transfer %d", id))
			err = o.Restart(ctx, id, excludes, barProgressFunc(bar))
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("transfer %d failed: %w", id, err)
			}
			fmt.Printf("Transfer %d restarted and completed.\n", id)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "glob pattern to exclude (repeatable); overrides the stored list")
	return cmd
}
