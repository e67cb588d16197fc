package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/deb2000-sudo/courier/internal/humanize"
	"github.com/deb2000-sudo/courier/internal/sender"
)

// newProgressBar renders an indeterminate byte counter, since the total
// transfer size isn't known until scanning finishes. Grounded on
// cmd/sender/main.go's progressbar.NewOptions64 usage.
func newProgressBar(description string) *progressbar.ProgressBar {
	return progressbar.DefaultBytes(-1, description)
}

// barProgressFunc adapts a sender.Event stream onto a progress bar,
// describing the file currently in flight.
func barProgressFunc(bar *progressbar.ProgressBar) sender.ProgressFunc {
	return func(e sender.Event) {
		_ = bar.Set64(int64(e.BytesSent))
		if e.CurrentPath != "" {
			bar.Describe(fmt.Sprintf("%s (%s sent, files sent: %d, skipped: %d)", e.CurrentPath, humanize.Bytes(e.BytesSent), e.FilesSent, e.FilesSkipped))
		}
	}
}
