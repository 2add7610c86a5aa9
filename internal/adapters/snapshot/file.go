package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// fileEnvelope is the on-disk shape of one key.
type fileEnvelope struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore implements Store with one JSON file per key under a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithFileClock overrides the store's time source, mainly for expiry tests.
func WithFileClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s := &FileStore{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Set stores value under key with the given time-to-live.
func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	data, err := json.Marshal(fileEnvelope{Value: value, ExpiresAt: s.now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound. Expired keys are
// removed on read.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	var e fileEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return "", fmt.Errorf("decode %q: %w", key, err)
	}
	if s.now().After(e.ExpiresAt) {
		_ = os.Remove(s.path(key))
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey makes a key safe to use as a file name.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
