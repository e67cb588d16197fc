package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deb2000-sudo/courier/internal/discovery"
	"github.com/deb2000-sudo/courier/internal/orchestration"
)

func newPushCmd(stateDir *string) *cobra.Command {
	var excludes []string
	var discoverTimeout time.Duration
	var beaconPort int

	cmd := &cobra.Command{
		Use:   "push <path> <ip> <port>",
		Short: "Send files/folders",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ip := args[0], args[1]
			port, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[2], err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if ip == "" {
				discoverCtx, discoverCancel := context.WithTimeout(ctx, discoverTimeout)
				defer discoverCancel()
				addr, discoveredPort, err := discovery.Discover(discoverCtx, beaconPort)
				if err != nil {
					return fmt.Errorf("discover receiver: %w", err)
				}
				ip = addr.String()
				port = int(discoveredPort)
			}

			o, err := orchestration.New(*stateDir)
			if err != nil {
				return err
			}
			defer o.Close()

			bar := newProgressBar(fmt.Sprintf("pushing %s", path))
			id, err := o.Push(ctx, path, ip, port, excludes, barProgressFunc(bar))
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("transfer %d failed: %w", id, err)
			}
			fmt.Printf("Transfer %d completed successfully.\n", id)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "glob pattern to exclude (repeatable)")
	cmd.Flags().DurationVar(&discoverTimeout, "discover-timeout", 5*time.Second, "how long to wait for a discovery beacon when ip is empty")
	cmd.Flags().IntVar(&beaconPort, "beacon-port", discovery.DefaultPort, "UDP port used for the discovery beacon")
	return cmd
}
