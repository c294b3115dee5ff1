package poller

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// watcherIDBytes is the amount of randomness in a watcher ID.
const watcherIDBytes = 8

// NewWatcherID returns a 16 character lowercase hex token read from src.
// A nil src uses crypto/rand.
func NewWatcherID(src io.Reader) (string, error) {
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, watcherIDBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("failed to generate watcher id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
