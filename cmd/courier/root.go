package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "courier",
		Short:         "Resumable, directory-aware file transfer over TCP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var stateDir string
	root.PersistentFlags().StringVar(&stateDir, "state-dir", ".", "directory holding the transfer catalog and ledgers")

	root.AddCommand(
		newServeCmd(),
		newPushCmd(&stateDir),
		newListCmd(&stateDir),
		newResumeCmd(&stateDir),
		newRestartCmd(&stateDir),
		newRemoveCmd(&stateDir),
	)
	return root
}
