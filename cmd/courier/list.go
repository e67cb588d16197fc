package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deb2000-sudo/courier/internal/historystore"
	"github.com/deb2000-sudo/courier/internal/humanize"
	"github.com/deb2000-sudo/courier/internal/orchestration"
)

func newListCmd(stateDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transfer history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestration.New(*stateDir)
			if err != nil {
				return err
			}
			defer o.Close()

			transfers, err := o.List()
			if err != nil {
				return err
			}

			fmt.Printf("%-5s %-30s %-15s %-6s %-10s %-12s %-25s\n", "ID", "Path", "Host", "Port", "Status", "Sent", "Created At")
			for _, t := range transfers {
				sent := transferredBytes(*stateDir, t.ID)
				fmt.Printf("%-5d %-30s %-15s %-6d %-10s %-12s %-25s\n",
					t.ID, t.Path, t.Host, t.Port, t.Status, humanize.Bytes(sent), t.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// transferredBytes reports how many bytes have been sent for a transfer's
// ledger so far. A ledger that can't be opened or summed reports zero
// rather than failing the whole listing; a missing ledger file is created
// empty by OpenLedger and so also reports zero.
func transferredBytes(stateDir string, id int64) uint64 {
	ledger, err := historystore.OpenLedger(stateDir, id)
	if err != nil {
		return 0
	}
	defer ledger.Close()

	n, err := ledger.TotalSentBytes()
	if err != nil {
		return 0
	}
	return n
}
