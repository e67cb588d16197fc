package historystore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/deb2000-sudo/courier/pkg/model"
)

// Catalog is the top-level history table: one row per push/resume/restart
// transfer. Grounded on original_source/src/db.rs's Db type, one level up
// from the per-transfer TransferLog.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if necessary) the catalog database under
// stateDir.
func OpenCatalog(stateDir string) (*Catalog, error) {
	db, err := openWithPragmas(filepath.Join(stateDir, "history.db"))
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS transfers (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	path              TEXT NOT NULL,
	host              TEXT NOT NULL,
	port              INTEGER NOT NULL,
	status            TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	listing_complete  INTEGER NOT NULL DEFAULT 0,
	excludes          TEXT NOT NULL DEFAULT '[]'
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("historystore: create transfers table: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }

// AddTransfer inserts a new Pending transfer row and returns its id.
func (c *Catalog) AddTransfer(path, host string, port int, excludes []string) (int64, error) {
	excludesJSON, err := json.Marshal(excludes)
	if err != nil {
		return 0, fmt.Errorf("historystore: marshal excludes: %w", err)
	}
	res, err := c.db.Exec(
		`INSERT INTO transfers (path, host, port, status, created_at, listing_complete, excludes)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		path, host, port, model.TransferPending, time.Now().UTC().Format(time.RFC3339Nano), string(excludesJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("historystore: insert transfer: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStatus sets the status of the transfer identified by id.
func (c *Catalog) UpdateStatus(id int64, status model.TransferStatus) error {
	_, err := c.db.Exec(`UPDATE transfers SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("historystore: update status: %w", err)
	}
	return nil
}

// SetListingComplete marks whether the transfer's ledger reflects a full
// scan of its source tree.
func (c *Catalog) SetListingComplete(id int64, complete bool) error {
	_, err := c.db.Exec(`UPDATE transfers SET listing_complete = ? WHERE id = ?`, complete, id)
	if err != nil {
		return fmt.Errorf("historystore: set listing_complete: %w", err)
	}
	return nil
}

// SetExcludes persists a new set of exclude patterns for the transfer, used
// when resume/restart is given new --exclude flags.
func (c *Catalog) SetExcludes(id int64, excludes []string) error {
	excludesJSON, err := json.Marshal(excludes)
	if err != nil {
		return fmt.Errorf("historystore: marshal excludes: %w", err)
	}
	_, err = c.db.Exec(`UPDATE transfers SET excludes = ? WHERE id = ?`, string(excludesJSON), id)
	if err != nil {
		return fmt.Errorf("historystore: set excludes: %w", err)
	}
	return nil
}

// DeleteTransfer removes the catalog row for id. It does not touch the
// transfer's ledger file; callers remove that separately (see
// Ledger.RemoveFile) so the catalog and ledger stay independently testable.
func (c *Catalog) DeleteTransfer(id int64) error {
	res, err := c.db.Exec(`DELETE FROM transfers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("historystore: delete transfer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("historystore: delete transfer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("historystore: transfer %d not found", id)
	}
	return nil
}

// GetTransfer loads a single transfer by id.
func (c *Catalog) GetTransfer(id int64) (*model.Transfer, error) {
	row := c.db.QueryRow(
		`SELECT id, path, host, port, status, created_at, listing_complete, excludes
		 FROM transfers WHERE id = ?`, id)
	return scanTransfer(row)
}

// ListTransfers returns all catalog rows, newest first.
func (c *Catalog) ListTransfers() ([]*model.Transfer, error) {
	rows, err := c.db.Query(
		`SELECT id, path, host, port, status, created_at, listing_complete, excludes
		 FROM transfers ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("historystore: list transfers: %w", err)
	}
	defer rows.Close()

	var out []*model.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// rowScanner abstracts over *sql.Row and *sql.Rows, both of which implement
// Scan but share no common interface in database/sql.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*model.Transfer, error) {
	var (
		t            model.Transfer
		createdAt    string
		listingInt   int
		excludesJSON string
	)
	if err := row.Scan(&t.ID, &t.Path, &t.Host, &t.Port, &t.Status, &createdAt, &listingInt, &excludesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("historystore: transfer not found: %w", err)
		}
		return nil, fmt.Errorf("historystore: scan transfer: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("historystore: parse created_at: %w", err)
	}
	t.CreatedAt = parsed
	t.ListingComplete = listingInt != 0
	if err := json.Unmarshal([]byte(excludesJSON), &t.Excludes); err != nil {
		return nil, fmt.Errorf("historystore: unmarshal excludes: %w", err)
	}
	return &t, nil
}
