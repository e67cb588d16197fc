// Package model holds courier's durable data model: a top-level Transfer
// catalog entry and the per-transfer FileRecord ledger rows described in
// the data model section of the specification.
package model

import (
	"errors"
	"time"
)

// TransferStatus is the lifecycle state of a Transfer catalog entry.
type TransferStatus string

const (
	TransferPending   TransferStatus = "Pending"
	TransferCompleted TransferStatus = "Completed"
	TransferFailed    TransferStatus = "Failed"
)

// FileStatus is the lifecycle state of a FileRecord ledger row.
type FileStatus string

const (
	FilePending FileStatus = "Pending"
	FileSent    FileStatus = "Sent"
	FileSkipped FileStatus = "Skipped"
)

// Transfer is one push/resume/restart session, persisted in the top-level
// catalog. ListingComplete is false while a scan may still be a prefix of
// the true tree; Resume must rescan until it is set.
type Transfer struct {
	ID              int64
	Path            string
	Host            string
	Port            int
	Status          TransferStatus
	CreatedAt       time.Time
	ListingComplete bool
	Excludes        []string
}

// FileRecord is one ledger row: a single file or directory discovered
// during a scan, tracked from Pending through exactly one of Sent or
// Skipped.
type FileRecord struct {
	ID           int64
	RelativePath string
	Size         uint64
	IsDir        bool
	Status       FileStatus
}

// Validate checks that t is internally consistent enough to persist.
func (t *Transfer) Validate() error {
	if t.Path == "" {
		return errors.New("model: transfer path must not be empty")
	}
	if t.Host == "" {
		return errors.New("model: transfer host must not be empty")
	}
	if t.Port <= 0 || t.Port > 65535 {
		return errors.New("model: transfer port out of range")
	}
	switch t.Status {
	case TransferPending, TransferCompleted, TransferFailed:
	default:
		return errors.New("model: invalid transfer status")
	}
	return nil
}

// Validate checks that f is internally consistent enough to persist.
func (f *FileRecord) Validate() error {
	if f.RelativePath == "" {
		return errors.New("model: file record relative path must not be empty")
	}
	switch f.Status {
	case FilePending, FileSent, FileSkipped:
	default:
		return errors.New("model: invalid file record status")
	}
	return nil
}
