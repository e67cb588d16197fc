// Package sender implements the dispatching side of a transfer: scanning a
// source tree into a ledger, then walking the ledger's pending rows over
// one TCP connection, honoring each Skip/Resume/Send response. Grounded on
// original_source/src/client.rs's send_pending_files, with the buffered
// payload loop taken from cmd/sender/main.go's chunk-sending shape.
package sender

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/deb2000-sudo/courier/internal/historystore"
	"github.com/deb2000-sudo/courier/internal/streamio"
	"github.com/deb2000-sudo/courier/pkg/model"
	"github.com/deb2000-sudo/courier/pkg/protocol"
)

// Sender dispatches one transfer's pending ledger rows over conn.
type Sender struct {
	Conn     net.Conn
	Root     string // parent directory relative paths are resolved against
	Ledger   *historystore.Ledger
	Excludes []string // re-evaluated at send time, so a changed exclude list takes effect on resume
	Progress ProgressFunc
}

// Run sends every pending file in s.Ledger, in the order PendingFiles
// returns them, until the ledger is drained or an unrecoverable error
// occurs. A file missing from disk at send time is skipped, not fatal.
func (s *Sender) Run() error {
	pending, err := s.Ledger.PendingFiles()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	priorSentBytes, err := s.Ledger.TotalSentBytes()
	if err != nil {
		return err
	}

	var totalPending uint64
	for _, rec := range pending {
		totalPending += rec.Size
	}

	var (
		filesSent, filesSkipped int
		sessionBytesSent        uint64
		rate                    = NewRateTracker()
		th                      = &throttle{}
	)

	emit := func(currentPath string, force bool) {
		if s.Progress == nil || !th.ready(force) {
			return
		}
		s.Progress(Event{
			CurrentPath:  currentPath,
			FilesSent:    filesSent,
			FilesSkipped: filesSkipped,
			BytesSent:    priorSentBytes + sessionBytesSent,
			Rate:         rate.BytesPerSecond(),
			ETA:          rate.ETA(saturatingSub(totalPending, sessionBytesSent)),
		})
	}

	for _, rec := range pending {
		if matchesAny(s.Excludes, rec.RelativePath) {
			if err := s.Ledger.MarkSkipped(rec.RelativePath); err != nil {
				return err
			}
			filesSkipped++
			totalPending = saturatingSub(totalPending, rec.Size)
			continue
		}

		absPath := filepath.Join(s.Root, filepath.FromSlash(rec.RelativePath))

		if !rec.IsDir {
			if _, err := os.Stat(absPath); errors.Is(err, fs.ErrNotExist) {
				log.Printf("sender: %s no longer exists, skipping", rec.RelativePath)
				if err := s.Ledger.MarkSkipped(rec.RelativePath); err != nil {
					return err
				}
				filesSkipped++
				totalPending = saturatingSub(totalPending, rec.Size)
				continue
			}
		}

		emit(rec.RelativePath, false)

		if err := protocol.WriteFrame(s.Conn, protocol.Metadata{
			RelativePath: rec.RelativePath,
			Size:         rec.Size,
			IsDir:        rec.IsDir,
		}); err != nil {
			return fmt.Errorf("sender: send metadata for %s: %w", rec.RelativePath, err)
		}

		var resp protocol.Response
		if err := protocol.ReadFrame(s.Conn, &resp); err != nil {
			return fmt.Errorf("sender: awaiting response for %s: %w", rec.RelativePath, err)
		}
		if err := resp.Validate(); err != nil {
			return fmt.Errorf("sender: %s: %w", rec.RelativePath, err)
		}

		if err := s.dispatch(rec, resp, absPath, &filesSent, &filesSkipped, &sessionBytesSent, &totalPending, rate, emit); err != nil {
			return err
		}
	}

	emit("", true)
	return nil
}

func (s *Sender) dispatch(
	rec *model.FileRecord,
	resp protocol.Response,
	absPath string,
	filesSent, filesSkipped *int,
	sessionBytesSent, totalPending *uint64,
	rate *RateTracker,
	emit func(currentPath string, force bool),
) error {
	switch resp.Kind {
	case protocol.ResponseSkip:
		if rec.IsDir {
			return s.Ledger.MarkSent(rec.RelativePath)
		}
		*filesSkipped++
		*totalPending = saturatingSub(*totalPending, rec.Size)
		return s.Ledger.MarkSkipped(rec.RelativePath)

	case protocol.ResponseSend, protocol.ResponseResume:
		if rec.IsDir {
			return s.Ledger.MarkSent(rec.RelativePath)
		}
		offset := uint64(0)
		if resp.Kind == protocol.ResponseResume {
			offset = resp.Offset
		}
		var reported uint64
		if err := s.sendFile(absPath, rec.RelativePath, rec.Size, offset, func(written uint64) {
			// written is cumulative for this file; count only the new bytes.
			delta := written - reported
			reported = written
			rate.Add(delta)
			*sessionBytesSent += delta
			emit(rec.RelativePath, false)
		}); err != nil {
			return err
		}
		*filesSent++
		return s.Ledger.MarkSent(rec.RelativePath)

	case protocol.ResponseError:
		return fmt.Errorf("sender: receiver rejected %s: %s", rec.RelativePath, resp.Message)

	default:
		return fmt.Errorf("sender: unknown response kind %q for %s", resp.Kind, rec.RelativePath)
	}
}

// sendFile streams exactly size-offset bytes of path onto the connection,
// failing with ErrFileChanged if the file's current size no longer matches
// what scan recorded.
func (s *Sender) sendFile(path, relativePath string, size, offset uint64, onChunk func(uint64)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("sender: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sender: stat %s: %w", path, err)
	}
	if uint64(info.Size()) != size {
		return fmt.Errorf("%w: %s", ErrFileChanged, relativePath)
	}

	if offset > 0 {
		if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
			return fmt.Errorf("sender: seek %s to %d: %w", path, offset, err)
		}
	}

	if err := streamio.CopyExactly(s.Conn, f, size-offset, onChunk); err != nil {
		return fmt.Errorf("sender: send payload for %s: %w", relativePath, err)
	}
	return nil
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
