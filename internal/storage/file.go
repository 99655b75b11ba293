package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rshade/stockdesk/internal/logging"
)

const fileExtension = ".json"

// fileEntry is the on-disk form of one key.
type fileEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// File stores each key as a JSON document in a directory.
// Writes go to a temporary file that is renamed into place.
type File struct {
	directory string

	mu     sync.RWMutex
	closed bool
}

// NewFile creates a File store in directory, creating it if needed.
func NewFile(directory string) (*File, error) {
	if directory == "" {
		return nil, errors.New("storage directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &File{directory: directory}, nil
}

// Directory returns the storage directory.
func (f *File) Directory() string {
	return f.directory
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return "", false, ErrClosed
	}

	traceOp(ctx, BackendFile, "get", key).Msg("reading entry")

	data, err := os.ReadFile(f.keyToFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading storage file: %w", err)
	}

	var entry fileEntry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return "", false, fmt.Errorf("decoding storage file for %q: %w", key, unmarshalErr)
	}
	if entry.Key != key {
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Str("component", "storage").
			Str("backend", BackendFile).
			Str("key", key).
			Str("stored_key", entry.Key).
			Msg("storage file belongs to another key, ignoring")
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	traceOp(ctx, BackendFile, "set", key).Int("bytes", len(value)).Msg("writing entry")

	data, err := json.MarshalIndent(fileEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding storage entry: %w", err)
	}

	filePath := f.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing storage file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming storage file: %w", renameErr)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	traceOp(ctx, BackendFile, "delete", key).Msg("removing entry")

	if err := os.Remove(f.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing storage file: %w", err)
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// keyToFilePath maps key to a file name. Lower-case letters, digits, '-' and '.'
// are kept; every other byte becomes "_xx" (lower-case hex), so distinct keys never
// share a file, even on case-insensitive filesystems.
func (f *File) keyToFilePath(key string) string {
	var sb strings.Builder
	for i := range len(key) {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= '0' && b <= '9', b == '-', b == '.':
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, "_%02x", b)
		}
	}
	return filepath.Join(f.directory, sb.String()+fileExtension)
}
