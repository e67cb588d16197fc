// Command courier is a resumable, directory-aware file transfer tool: one
// binary exposing serve/push/list/resume/restart/remove, grounded on
// original_source's clap-based CLI and cmd/sender+cmd/receiver's flag
// handling in the teacher repo.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
