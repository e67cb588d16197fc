package receiver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/deb2000-sudo/courier/internal/streamio"
	"github.com/deb2000-sudo/courier/pkg/protocol"
)

const tempSuffix = ".tmp"

// handleMetadata decides how to respond to one incoming Metadata frame and,
// for Send/Resume, consumes the file payload that follows it. Returning nil
// here means "session stays open, read the next frame"; a non-nil error
// terminates the connection.
func (r *Receiver) handleMetadata(conn io.ReadWriter, meta protocol.Metadata) error {
	if !safeRelativePath(meta.RelativePath) {
		return protocol.WriteFrame(conn, protocol.Err("Invalid path"))
	}

	target := filepath.Join(r.BaseDir, filepath.FromSlash(meta.RelativePath))

	if meta.IsDir {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return protocol.WriteFrame(conn, protocol.Err(fmt.Sprintf("create directory: %v", err)))
		}
		return protocol.WriteFrame(conn, protocol.Skip())
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return protocol.WriteFrame(conn, protocol.Err(fmt.Sprintf("create parent directory: %v", err)))
	}

	temp := target + tempSuffix
	offset, response, err := decide(target, temp, meta.Size)
	if err != nil {
		return protocol.WriteFrame(conn, protocol.Err(err.Error()))
	}

	if err := protocol.WriteFrame(conn, response); err != nil {
		return err
	}
	if response.Kind == protocol.ResponseSkip {
		return nil
	}

	return receivePayload(conn, temp, target, offset, meta.Size)
}

// decide implements the target/temp decision table: target already
// complete, a temp file that already covers the declared size, a temp file
// partway through, or neither (fresh Send).
func decide(target, temp string, size uint64) (offset uint64, response protocol.Response, err error) {
	if info, statErr := os.Stat(target); statErr == nil && uint64(info.Size()) == size {
		return 0, protocol.Skip(), nil
	}

	tempInfo, tempErr := os.Stat(temp)
	switch {
	case tempErr == nil && uint64(tempInfo.Size()) >= size:
		if err := os.Rename(temp, target); err != nil {
			return 0, protocol.Response{}, fmt.Errorf("finalize %s: %w", target, err)
		}
		return 0, protocol.Skip(), nil
	case tempErr == nil && tempInfo.Size() > 0 && uint64(tempInfo.Size()) < size:
		return uint64(tempInfo.Size()), protocol.Resume(uint64(tempInfo.Size())), nil
	default:
		return 0, protocol.Send(), nil
	}
}

// receivePayload reads exactly size-offset raw bytes from conn into temp
// (appending if offset > 0, truncating otherwise), syncs, and renames temp
// to target. Any I/O error leaves the partial temp file on disk — the
// sender is the one that retries, not the receiver.
func receivePayload(conn io.Reader, temp, target string, offset, size uint64) error {
	flags := os.O_WRONLY | os.O_CREATE
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(temp, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", temp, err)
	}
	defer f.Close()

	if err := streamio.CopyExactly(f, conn, size-offset, nil); err != nil {
		return fmt.Errorf("receive payload for %s: %w", target, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", temp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", temp, err)
	}
	if err := os.Rename(temp, target); err != nil {
		return fmt.Errorf("finalize %s: %w", target, err)
	}
	return nil
}
