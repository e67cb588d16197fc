package historystore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deb2000-sudo/courier/pkg/model"
)

// Ledger is the per-transfer file table, one SQLite file per transfer id
// under the same state directory as the catalog. Grounded on
// original_source/src/db.rs's TransferLog, which keeps one
// "send_history_<id>.db" file per transfer for exactly this reason: a
// ledger's lifetime is tied to one transfer and Remove should be able to
// delete it as a single file.
type Ledger struct {
	db   *sql.DB
	path string
}

// ledgerPath returns the on-disk path for a transfer's ledger file.
func ledgerPath(stateDir string, transferID int64) string {
	return filepath.Join(stateDir, fmt.Sprintf("ledger_%d.db", transferID))
}

// OpenLedger opens (creating if necessary) the ledger for transferID.
func OpenLedger(stateDir string, transferID int64) (*Ledger, error) {
	path := ledgerPath(stateDir, transferID)
	db, err := openWithPragmas(path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS files (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	relative_path  TEXT UNIQUE NOT NULL,
	size           INTEGER NOT NULL,
	is_dir         INTEGER NOT NULL,
	status         TEXT NOT NULL DEFAULT 'Pending'
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("historystore: create files table: %w", err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error { return l.db.Close() }

// RemoveFile deletes the ledger's on-disk file(s), including WAL/SHM
// sidecars. The ledger must already be Closed.
func (l *Ledger) RemoveFile() error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(l.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("historystore: remove ledger file %s: %w", l.path+suffix, err)
		}
	}
	return nil
}

// AddFile inserts a row for relativePath if one does not already exist.
// Re-scanning an already-known tree is therefore a no-op for every entry
// already present.
func (l *Ledger) AddFile(relativePath string, size uint64, isDir bool) error {
	_, err := l.db.Exec(
		`INSERT OR IGNORE INTO files (relative_path, size, is_dir, status) VALUES (?, ?, ?, 'Pending')`,
		relativePath, size, isDir,
	)
	if err != nil {
		return fmt.Errorf("historystore: add file %s: %w", relativePath, err)
	}
	return nil
}

// MarkSent sets relativePath's status to Sent.
func (l *Ledger) MarkSent(relativePath string) error {
	return l.setStatus(relativePath, model.FileSent)
}

// MarkSkipped sets relativePath's status to Skipped.
func (l *Ledger) MarkSkipped(relativePath string) error {
	return l.setStatus(relativePath, model.FileSkipped)
}

func (l *Ledger) setStatus(relativePath string, status model.FileStatus) error {
	_, err := l.db.Exec(`UPDATE files SET status = ? WHERE relative_path = ?`, status, relativePath)
	if err != nil {
		return fmt.Errorf("historystore: mark %s as %s: %w", relativePath, status, err)
	}
	return nil
}

// PendingFiles returns every ledger row with status Pending. Order is
// unspecified, matching the protocol's lack of ordering requirements.
func (l *Ledger) PendingFiles() ([]*model.FileRecord, error) {
	rows, err := l.db.Query(
		`SELECT id, relative_path, size, is_dir, status FROM files WHERE status = ?`,
		model.FilePending,
	)
	if err != nil {
		return nil, fmt.Errorf("historystore: query pending files: %w", err)
	}
	defer rows.Close()

	var out []*model.FileRecord
	for rows.Next() {
		var (
			r        model.FileRecord
			isDirInt int
		)
		if err := rows.Scan(&r.ID, &r.RelativePath, &r.Size, &isDirInt, &r.Status); err != nil {
			return nil, fmt.Errorf("historystore: scan file record: %w", err)
		}
		r.IsDir = isDirInt != 0
		out = append(out, &r)
	}
	return out, rows.Err()
}

// CountTotal returns the total number of rows in the ledger.
func (l *Ledger) CountTotal() (int64, error) {
	return l.countWhere(``)
}

// CountPending returns the number of rows with status Pending.
func (l *Ledger) CountPending() (int64, error) {
	return l.countWhere(`WHERE status = 'Pending'`)
}

// CountSkipped returns the number of rows with status Skipped.
func (l *Ledger) CountSkipped() (int64, error) {
	return l.countWhere(`WHERE status = 'Skipped'`)
}

func (l *Ledger) countWhere(clause string) (int64, error) {
	var n int64
	err := l.db.QueryRow(`SELECT COUNT(*) FROM files ` + clause).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("historystore: count files: %w", err)
	}
	return n, nil
}

// TotalSentBytes returns the sum of size over every row with status Sent.
func (l *Ledger) TotalSentBytes() (uint64, error) {
	var n uint64
	err := l.db.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM files WHERE status = 'Sent'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("historystore: sum sent bytes: %w", err)
	}
	return n, nil
}

// Reset deletes every row in the ledger, used by Restart before a full
// rescan.
func (l *Ledger) Reset() error {
	if _, err := l.db.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("historystore: reset ledger: %w", err)
	}
	return nil
}
