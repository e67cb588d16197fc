package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deb2000-sudo/courier/internal/discovery"
	"github.com/deb2000-sudo/courier/internal/receiver"
)

func newServeCmd() *cobra.Command {
	var discoverable bool
	var beaconPort int

	cmd := &cobra.Command{
		Use:   "serve <path> <port>",
		Short: "Receive files/folders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}

			r, err := receiver.New(path)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
			if err != nil {
				return fmt.Errorf("listen on port %d: %w", port, err)
			}
			defer ln.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if discoverable {
				go func() {
					if err := discovery.Announce(ctx, beaconPort, uint16(port)); err != nil && ctx.Err() == nil {
						log.Printf("serve: beacon announce stopped: %v", err)
					}
				}()
			}

			log.Printf("serve: listening on %s, saving to %s", ln.Addr(), path)
			return r.Serve(ctx, ln)
		},
	}

	cmd.Flags().BoolVar(&discoverable, "discoverable", false, "broadcast a LAN beacon advertising this port")
	cmd.Flags().IntVar(&beaconPort, "beacon-port", discovery.DefaultPort, "UDP port used for the discovery beacon")
	return cmd
}
