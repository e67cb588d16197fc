// Package streamio holds the fixed-size-buffer copy loop shared by the
// receiver's inbound payload intake and the sender's outbound payload
// dispatch, mirroring the 1 MiB buffer both server.rs and client.rs use in
// original_source.
package streamio

import (
	"fmt"
	"io"
)

// ChunkSize is the buffer size used when streaming file payloads. Chosen to
// match original_source's client/server read loops.
const ChunkSize = 1 << 20

// CopyExactly copies exactly n bytes from src to dst using a ChunkSize
// buffer, calling onChunk (if non-nil) after each successful write with the
// number of bytes written so far. It returns an error if src yields fewer
// than n bytes before EOF.
func CopyExactly(dst io.Writer, src io.Reader, n uint64, onChunk func(written uint64)) error {
	buf := make([]byte, ChunkSize)
	var written uint64
	for written < n {
		want := uint64(ChunkSize)
		if remaining := n - written; remaining < want {
			want = remaining
		}
		read, err := io.ReadFull(src, buf[:want])
		if err != nil {
			return fmt.Errorf("streamio: read payload at offset %d: %w", written, err)
		}
		if _, err := dst.Write(buf[:read]); err != nil {
			return fmt.Errorf("streamio: write payload at offset %d: %w", written, err)
		}
		written += uint64(read)
		if onChunk != nil {
			onChunk(written)
		}
	}
	return nil
}
