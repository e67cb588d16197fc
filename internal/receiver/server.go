// Package receiver implements the listening side of a transfer: accepting
// connections, deciding per incoming file whether to skip, resume or
// request it in full, and writing payload bytes to disk with a staged
// rename as the only commit point. Grounded on original_source/src/server.rs,
// with the accept-loop-plus-goroutine-per-connection shape taken from
// cmd/receiver/main.go and internal/transport/tcp_receiver.go.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/deb2000-sudo/courier/pkg/protocol"
)

// Receiver accepts connections and writes incoming files under BaseDir.
type Receiver struct {
	BaseDir string
}

// New creates a Receiver rooted at baseDir, creating it if necessary.
func New(baseDir string) (*Receiver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("receiver: create base dir %s: %w", baseDir, err)
	}
	return &Receiver{BaseDir: baseDir}, nil
}

// Serve accepts connections on ln until ctx is cancelled or Accept fails.
// Each connection is handled on its own goroutine; sessions don't share
// state, so there's no coordination needed between them.
func (r *Receiver) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fmt.Errorf("receiver: accept: %w", err)
			}
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		go r.handleConnection(conn)
	}
}

// handleConnection drives one client's session: repeatedly read a Metadata
// frame, respond, and (for Send/Resume) stream the payload, until the peer
// closes the connection or an I/O error ends the session early.
func (r *Receiver) handleConnection(conn net.Conn) {
	defer conn.Close()

	for {
		var meta protocol.Metadata
		if err := protocol.ReadFrame(conn, &meta); err != nil {
			if !errors.Is(err, protocol.ErrConnectionClosed) {
				log.Printf("receiver: session ended: %v", err)
			}
			return
		}

		if err := r.handleMetadata(conn, meta); err != nil {
			log.Printf("receiver: %s: %v", meta.RelativePath, err)
			return
		}
	}
}
