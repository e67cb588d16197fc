package orchestration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/deb2000-sudo/courier/internal/receiver"
	"github.com/deb2000-sudo/courier/pkg/model"
)

func startReceiver(t *testing.T, baseDir string) string {
	t.Helper()
	r, err := receiver.New(baseDir)
	if err != nil {
		t.Fatalf("receiver.New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go r.Serve(ctx, ln)
	t.Cleanup(func() {
		cancel()
		ln.Close()
	})
	return ln.Addr().String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestPushEndToEnd(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "world")

	recvDir := t.TempDir()
	addr := startReceiver(t, recvDir)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	o, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := o.Push(ctx, src, host, port, nil, nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(recvDir, "project", "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile a.txt: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected contents: %q", got)
	}
	got, err = os.ReadFile(filepath.Join(recvDir, "project", "sub", "b.txt"))
	if err != nil {
		t.Fatalf("ReadFile b.txt: %v", err)
	}
	if string(got) != "world" {
		t.Fatalf("unexpected contents: %q", got)
	}

	transfer, err := o.Catalog.GetTransfer(id)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if transfer.Status != model.TransferCompleted {
		t.Fatalf("expected Completed status, got %s", transfer.Status)
	}
}

func TestPushThenResumeIsIdempotent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")

	recvDir := t.TempDir()
	addr := startReceiver(t, recvDir)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	o, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := o.Push(ctx, src, host, port, nil, nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if err := o.Resume(ctx, id, nil, nil); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	transfer, err := o.Catalog.GetTransfer(id)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if transfer.Status != model.TransferCompleted {
		t.Fatalf("expected Completed status after resume, got %s", transfer.Status)
	}
}

func TestRemoveDeletesTransferAndLedger(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")

	recvDir := t.TempDir()
	addr := startReceiver(t, recvDir)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	o, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := o.Push(ctx, src, host, port, nil, nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := o.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := o.Catalog.GetTransfer(id); err == nil {
		t.Fatal("expected transfer to be gone after Remove")
	}
	ledgerFile := filepath.Join(o.StateDir, "ledger_"+strconv.FormatInt(id, 10)+".db")
	if _, err := os.Stat(ledgerFile); !os.IsNotExist(err) {
		t.Fatalf("expected ledger file %s to be gone after Remove, stat err: %v", ledgerFile, err)
	}
}
