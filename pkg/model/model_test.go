package model

import "testing"

func TestTransferValidate(t *testing.T) {
	valid := Transfer{Path: "/srv/data", Host: "192.168.1.5", Port: 9000, Status: TransferPending}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid transfer, got %v", err)
	}

	cases := []Transfer{
		{Host: "h", Port: 1, Status: TransferPending},
		{Path: "p", Port: 1, Status: TransferPending},
		{Path: "p", Host: "h", Port: 0, Status: TransferPending},
		{Path: "p", Host: "h", Port: 70000, Status: TransferPending},
		{Path: "p", Host: "h", Port: 1, Status: "Bogus"},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected error, got nil", i)
		}
	}
}

func TestFileRecordValidate(t *testing.T) {
	valid := FileRecord{RelativePath: "a.txt", Status: FilePending}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}

	if err := (&FileRecord{Status: FilePending}).Validate(); err == nil {
		t.Error("expected error for empty relative path")
	}
	if err := (&FileRecord{RelativePath: "a.txt", Status: "Bogus"}).Validate(); err == nil {
		t.Error("expected error for invalid status")
	}
}
