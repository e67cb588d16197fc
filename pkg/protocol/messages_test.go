package protocol

import (
	"bytes"
	"testing"
)

func TestResponseVariantsRoundTrip(t *testing.T) {
	cases := []Response{
		Send(),
		Skip(),
		Resume(1024),
		Err("Invalid path"),
	}

	for _, want := range cases {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, want); err != nil {
			t.Fatalf("WriteFrame(%+v): %v", want, err)
		}
		var got Response
		if err := ReadFrame(&buf, &got); err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("Validate(%+v): %v", got, err)
		}
	}
}

func TestResponseValidateRejectsUnknownKind(t *testing.T) {
	r := Response{Kind: "Bogus"}
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for unknown response kind")
	}
}

func TestResponseValidateRejectsErrorWithoutMessage(t *testing.T) {
	r := Response{Kind: ResponseError}
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for Error response missing message")
	}
}
