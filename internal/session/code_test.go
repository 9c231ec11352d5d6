package session

import (
	"encoding/hex"
	"testing"
)

func TestNewCode(t *testing.T) {
	code, err := NewCode()
	if err != nil {
		t.Fatalf("code error: %v", err)
	}
	if len(code) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(code))
	}
	if _, err := hex.DecodeString(code); err != nil {
		t.Fatalf("expected hex encoding: %v", err)
	}
}

func TestNewCodeDiffers(t *testing.T) {
	first, err := NewCode()
	if err != nil {
		t.Fatalf("code error: %v", err)
	}
	second, err := NewCode()
	if err != nil {
		t.Fatalf("code error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct codes")
	}
}
