package sender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deb2000-sudo/courier/internal/historystore"
)

func newTempLedger(t *testing.T) *historystore.Ledger {
	t.Helper()
	l, err := historystore.OpenLedger(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

func TestScanDirectoryRecordsEveryEntry(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "project")
	writeTree(t, src, map[string]string{
		"a.txt":          "hello",
		"sub/b.txt":      "world",
		"node_modules/x": "ignored?",
	})

	l := newTempLedger(t)
	n, err := Scan(src, nil, l)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected scan to record entries")
	}

	total, err := l.CountTotal()
	if err != nil {
		t.Fatalf("CountTotal: %v", err)
	}
	if total != int64(n) {
		t.Fatalf("ledger has %d rows, scan reported %d", total, n)
	}
}

func TestScanExcludesMatchingEntries(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "project")
	writeTree(t, src, map[string]string{
		"keep.txt": "a",
		"skip.log": "b",
	})

	l := newTempLedger(t)
	if _, err := Scan(src, []string{"*.log"}, l); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	pending, err := l.PendingFiles()
	if err != nil {
		t.Fatalf("PendingFiles: %v", err)
	}
	for _, p := range pending {
		if p.RelativePath == "project/skip.log" {
			t.Fatalf("expected skip.log to be excluded from scan")
		}
	}
}

func TestScanSingleFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "solo.txt")
	if err := os.WriteFile(src, []byte("contents"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := newTempLedger(t)
	n, err := Scan(src, nil, l)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
	pending, err := l.PendingFiles()
	if err != nil {
		t.Fatalf("PendingFiles: %v", err)
	}
	if len(pending) != 1 || pending[0].RelativePath != "solo.txt" {
		t.Fatalf("unexpected pending rows: %+v", pending)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "project")
	writeTree(t, src, map[string]string{"a.txt": "hello"})

	l := newTempLedger(t)
	if _, err := Scan(src, nil, l); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if err := l.MarkSent("project/a.txt"); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if _, err := Scan(src, nil, l); err != nil {
		t.Fatalf("rescan: %v", err)
	}

	pending, err := l.PendingFiles()
	if err != nil {
		t.Fatalf("PendingFiles: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected rescan to leave Sent row alone, got %d pending", len(pending))
	}
}
