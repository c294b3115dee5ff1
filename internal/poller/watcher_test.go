package poller

import (
	"bytes"
	"regexp"
	"testing"
)

var watcherIDPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestNewWatcherID_Format(t *testing.T) {
	id, err := NewWatcherID(nil)
	if err != nil {
		t.Fatalf("NewWatcherID() error = %v", err)
	}
	if !watcherIDPattern.MatchString(id) {
		t.Errorf("NewWatcherID() = %q, want 16 lowercase hex chars", id)
	}
}

func TestNewWatcherID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewWatcherID(nil)
		if err != nil {
			t.Fatalf("NewWatcherID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate watcher id %q", id)
		}
		seen[id] = true
	}
}

func TestNewWatcherID_Deterministic(t *testing.T) {
	src := bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x0a, 0xff})
	id, err := NewWatcherID(src)
	if err != nil {
		t.Fatalf("NewWatcherID() error = %v", err)
	}
	if id != "deadbeef00010aff" {
		t.Errorf("NewWatcherID() = %q, want %q", id, "deadbeef00010aff")
	}
}

func TestNewWatcherID_ShortSource(t *testing.T) {
	if _, err := NewWatcherID(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("NewWatcherID() expected error for short source")
	}
}
