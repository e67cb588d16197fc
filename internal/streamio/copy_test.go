package streamio

import (
	"bytes"
	"strings"
	"testing"
)

func TestCopyExactlyCopiesRequestedBytesOnly(t *testing.T) {
	src := strings.NewReader("hello world, extra bytes not requested")
	var dst bytes.Buffer

	if err := CopyExactly(&dst, src, 11, nil); err != nil {
		t.Fatalf("CopyExactly: %v", err)
	}
	if dst.String() != "hello world" {
		t.Fatalf("unexpected output: %q", dst.String())
	}
}

func TestCopyExactlyReportsChunks(t *testing.T) {
	src := bytes.NewReader(make([]byte, ChunkSize+100))
	var dst bytes.Buffer
	var lastWritten uint64
	calls := 0

	if err := CopyExactly(&dst, src, ChunkSize+100, func(written uint64) {
		calls++
		lastWritten = written
	}); err != nil {
		t.Fatalf("CopyExactly: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 chunk callbacks, got %d", calls)
	}
	if lastWritten != ChunkSize+100 {
		t.Fatalf("expected final written count %d, got %d", ChunkSize+100, lastWritten)
	}
}

func TestCopyExactlyErrorsOnShortSource(t *testing.T) {
	src := strings.NewReader("too short")
	var dst bytes.Buffer

	if err := CopyExactly(&dst, src, 1000, nil); err == nil {
		t.Fatal("expected error when source has fewer bytes than requested")
	}
}
