// Package orchestration wires together the history store, scanner and
// sender into five of the six verbs courier's CLI exposes (push, list,
// resume, restart, remove; serve runs the receiver directly), grounded on
// original_source/src/main.rs's match arms over Commands.
package orchestration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deb2000-sudo/courier/internal/historystore"
	"github.com/deb2000-sudo/courier/internal/sender"
	"github.com/deb2000-sudo/courier/pkg/model"
)

// Orchestrator owns the catalog for one state directory and drives
// transfers against it.
type Orchestrator struct {
	StateDir string
	Catalog  *historystore.Catalog
}

// New opens (creating if necessary) the catalog under stateDir.
func New(stateDir string) (*Orchestrator, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("orchestration: create state dir %s: %w", stateDir, err)
	}
	cat, err := historystore.OpenCatalog(stateDir)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{StateDir: stateDir, Catalog: cat}, nil
}

// Close releases the catalog's database handle.
func (o *Orchestrator) Close() error { return o.Catalog.Close() }

// Push starts a brand-new transfer: creates the catalog row and ledger,
// scans path, then runs the send phase.
func (o *Orchestrator) Push(ctx context.Context, path, host string, port int, excludes []string, progress sender.ProgressFunc) (int64, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	id, err := o.Catalog.AddTransfer(abs, host, port, excludes)
	if err != nil {
		return 0, err
	}

	ledger, err := historystore.OpenLedger(o.StateDir, id)
	if err != nil {
		return id, err
	}
	defer ledger.Close()

	if _, err := sender.Scan(abs, excludes, ledger); err != nil {
		o.fail(id)
		return id, err
	}
	if err := o.Catalog.SetListingComplete(id, true); err != nil {
		return id, err
	}

	if err := o.runSendPhase(ctx, abs, host, port, excludes, ledger, progress); err != nil {
		o.fail(id)
		return id, err
	}
	if err := o.Catalog.UpdateStatus(id, model.TransferCompleted); err != nil {
		return id, err
	}
	return id, nil
}

// List returns every transfer in the catalog, newest first.
func (o *Orchestrator) List() ([]*model.Transfer, error) {
	return o.Catalog.ListTransfers()
}

// Resume re-scans (if the prior listing was incomplete) and re-sends the
// pending rows of an existing transfer. A non-empty excludes overrides the
// transfer's stored exclude patterns.
func (o *Orchestrator) Resume(ctx context.Context, id int64, excludes []string, progress sender.ProgressFunc) error {
	t, err := o.Catalog.GetTransfer(id)
	if err != nil {
		return err
	}
	if len(excludes) > 0 {
		if err := o.Catalog.SetExcludes(id, excludes); err != nil {
			return err
		}
		t.Excludes = excludes
	}

	ledger, err := historystore.OpenLedger(o.StateDir, id)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if !t.ListingComplete {
		if _, err := sender.Scan(t.Path, t.Excludes, ledger); err != nil {
			o.fail(id)
			return err
		}
		if err := o.Catalog.SetListingComplete(id, true); err != nil {
			return err
		}
	}

	if err := o.runSendPhase(ctx, t.Path, t.Host, t.Port, t.Excludes, ledger, progress); err != nil {
		o.fail(id)
		return err
	}
	return o.Catalog.UpdateStatus(id, model.TransferCompleted)
}

// Restart discards the existing ledger and re-scans from scratch before
// re-sending, unlike Resume which only re-scans an incomplete listing.
func (o *Orchestrator) Restart(ctx context.Context, id int64, excludes []string, progress sender.ProgressFunc) error {
	t, err := o.Catalog.GetTransfer(id)
	if err != nil {
		return err
	}
	if len(excludes) > 0 {
		if err := o.Catalog.SetExcludes(id, excludes); err != nil {
			return err
		}
		t.Excludes = excludes
	}

	ledger, err := historystore.OpenLedger(o.StateDir, id)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if err := ledger.Reset(); err != nil {
		return err
	}
	if err := o.Catalog.SetListingComplete(id, false); err != nil {
		return err
	}
	if err := o.Catalog.UpdateStatus(id, model.TransferPending); err != nil {
		return err
	}

	if _, err := sender.Scan(t.Path, t.Excludes, ledger); err != nil {
		o.fail(id)
		return err
	}
	if err := o.Catalog.SetListingComplete(id, true); err != nil {
		return err
	}

	if err := o.runSendPhase(ctx, t.Path, t.Host, t.Port, t.Excludes, ledger, progress); err != nil {
		o.fail(id)
		return err
	}
	return o.Catalog.UpdateStatus(id, model.TransferCompleted)
}

// Remove deletes the catalog row and the transfer's ledger file (including
// WAL/SHM sidecars).
func (o *Orchestrator) Remove(id int64) error {
	ledger, err := historystore.OpenLedger(o.StateDir, id)
	if err != nil {
		return err
	}
	if err := ledger.Close(); err != nil {
		return err
	}
	if err := ledger.RemoveFile(); err != nil {
		return err
	}
	return o.Catalog.DeleteTransfer(id)
}

func (o *Orchestrator) fail(id int64) {
	_ = o.Catalog.UpdateStatus(id, model.TransferFailed)
}

func (o *Orchestrator) runSendPhase(ctx context.Context, sourcePath, host string, port int, excludes []string, ledger *historystore.Ledger, progress sender.ProgressFunc) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := sender.DialWithRetry(ctx, addr, sender.DefaultDialConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	s := &sender.Sender{
		Conn:     conn,
		Root:     filepath.Dir(sourcePath),
		Ledger:   ledger,
		Excludes: excludes,
		Progress: progress,
	}
	return s.Run()
}
