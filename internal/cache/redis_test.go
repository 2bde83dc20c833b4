package cache

import "testing"

func TestNewClientRejectsEmptyAddr(t *testing.T) {
	if _, err := NewClient("  ", ""); err == nil {
		t.Fatal("expected error for empty address")
	}
}
