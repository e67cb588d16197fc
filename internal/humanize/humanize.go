// Package humanize renders byte counts for the CLI layer. Not used by any
// core transfer logic — courier's protocol and ledger deal only in raw
// uint64 sizes.
package humanize

import "fmt"

// Bytes returns a human-readable representation of a byte count, adapted
// from the teacher's pkg/utils.HumanBytes (same KB/MB/GB/TB threshold
// table) with original_source's format_size spacing ("1.23 GB" rather than
// "1.23GB").
func Bytes(n uint64) string {
	const (
		_          = iota
		KB float64 = 1 << (10 * iota)
		MB
		GB
		TB
	)

	f := float64(n)
	switch {
	case f >= TB:
		return fmt.Sprintf("%.2f TB", f/TB)
	case f >= GB:
		return fmt.Sprintf("%.2f GB", f/GB)
	case f >= MB:
		return fmt.Sprintf("%.2f MB", f/MB)
	case f >= KB:
		return fmt.Sprintf("%.2f KB", f/KB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
