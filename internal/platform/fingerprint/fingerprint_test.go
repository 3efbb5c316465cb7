package fingerprint

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSum_Deterministic(t *testing.T) {
	doc := []byte("TSH 9.5 mIU/L, patient reports fatigue")
	first, err := Sum(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Sum(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("same bytes produced different digests: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}
	if first != strings.ToLower(first) {
		t.Errorf("digest is not lowercase: %s", first)
	}
}

func TestSum_SingleByteMutation(t *testing.T) {
	doc := []byte("clinical report body")
	base, err := Sum(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range doc {
		mutated := append([]byte(nil), doc...)
		mutated[i] ^= 0x01
		got, err := Sum(bytes.NewReader(mutated))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == base {
			t.Errorf("mutation at byte %d did not change the digest", i)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("file vanished")
}

func TestSum_ReadError(t *testing.T) {
	if _, err := Sum(failingReader{}); err == nil {
		t.Error("expected error from failing reader")
	}
}
