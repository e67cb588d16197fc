// Package protocol implements courier's control-channel wire format: a
// 4-byte big-endian length prefix followed by that many bytes of UTF-8
// JSON. Raw file bytes are never framed — the declared size in a Metadata
// message (minus any negotiated resume offset) tells the reader exactly
// how many bytes follow a Send/Resume Response.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrConnectionClosed is returned when the peer closed the connection
// cleanly before a new frame's length prefix could be read. It is benign:
// the caller should treat it as end-of-session, not a transfer failure.
var ErrConnectionClosed = errors.New("protocol: connection closed")

// ErrShortRead is returned when a length prefix was read but the payload
// that followed was truncated. Unlike ErrConnectionClosed this always
// terminates the connection as a hard failure.
var ErrShortRead = errors.New("protocol: short read on frame payload")

// maxFrameSize bounds a single control frame. Courier's frames are tiny
// JSON records (a path and a couple of integers); anything claiming to be
// larger than this is almost certainly a desynchronized stream, not a
// legitimate message.
const maxFrameSize = 1 << 20

// WriteFrame serializes v to JSON and writes it as a single length-prefixed
// frame to w.
func WriteFrame(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: marshal frame: %w", err)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("protocol: write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("protocol: write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed JSON frame from r and unmarshals it
// into v. A clean EOF while reading the length prefix is reported as
// ErrConnectionClosed; any other failure to fill the prefix or payload is
// ErrShortRead.
func ReadFrame(r io.Reader, v any) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrConnectionClosed
		}
		return fmt.Errorf("%w: reading frame length: %v", ErrShortRead, err)
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return fmt.Errorf("protocol: frame of %d bytes exceeds max %d", n, maxFrameSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("%w: reading frame payload: %v", ErrShortRead, err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("protocol: unmarshal frame: %w", err)
	}
	return nil
}
