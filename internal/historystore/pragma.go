// Package historystore is the durable catalog of transfers and the
// per-transfer file ledgers. Both are backed by SQLite in WAL journal mode
// with synchronous=NORMAL, which is what makes a process killed mid-
// transfer safe to resume: any write that made it into the WAL before the
// kill is recoverable, and nothing else is reported as committed.
package historystore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// openWithPragmas opens a SQLite database at path and applies the
// durability pragmas courier relies on, mirroring original_source's
// Db::init / TransferLog::new (rusqlite's equivalent PRAGMA calls).
func openWithPragmas(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("historystore: open %s: %w", path, err)
	}
	// A single shared *sql.DB connection keeps WAL readers/writers from
	// fighting each other inside one process; SQLite itself arbitrates
	// across processes via the WAL file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("historystore: set journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("historystore: set synchronous: %w", err)
	}
	return db, nil
}
