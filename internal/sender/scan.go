package sender

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/deb2000-sudo/courier/internal/historystore"
)

// Scan walks sourcePath and records every entry not matched by excludes
// into ledger, grounded on original_source/src/client.rs's scan_files.
// AddFile is insert-or-ignore, so re-running Scan against an already-known
// tree (a resume or restart) only adds what's new.
//
// Exclude matching happens against the whole relative path, not just the
// final component, so a shorthand pattern like "node_modules" matches only
// an entry literally named "node_modules" — it does not recurse into
// "node_modules/*" the way a "**/node_modules/**" pattern would.
func Scan(sourcePath string, excludes []string, ledger *historystore.Ledger) (int, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("sender: stat %s: %w", sourcePath, err)
	}

	if !info.IsDir() {
		rel := filepath.Base(sourcePath)
		if matchesAny(excludes, rel) {
			return 0, nil
		}
		if err := ledger.AddFile(rel, uint64(info.Size()), false); err != nil {
			return 0, err
		}
		return 1, nil
	}

	root := filepath.Dir(sourcePath)
	count := 0
	err = filepath.WalkDir(sourcePath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == sourcePath {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(excludes, rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		size := uint64(0)
		if !fi.IsDir() {
			size = uint64(fi.Size())
		}
		if err := ledger.AddFile(rel, size, fi.IsDir()); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("sender: scan %s: %w", sourcePath, err)
	}
	return count, nil
}

func matchesAny(patterns []string, relativePath string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, relativePath); ok {
			return true
		}
	}
	return false
}
