package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-mirror/internal/weather"
)

// FileStore keeps the snapshot as a single JSON file. The capture time is the
// file's modification time, never anything inside the body.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Put atomically replaces the file: the body goes to a temp file in the same
// directory which is synced and renamed over the target. Concurrent writers
// resolve to the last rename.
func (s *FileStore) Put(_ context.Context, snap weather.RawSnapshot) error {
	if snap.Empty() {
		return ErrEmptySnapshot
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".last_weather-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(snap.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if !snap.CapturedAt.IsZero() {
		if err := os.Chtimes(tmpName, snap.CapturedAt, snap.CapturedAt); err != nil {
			return fmt.Errorf("stamp temp snapshot: %w", err)
		}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Get reads the file. A missing or blank file is a cache miss.
func (s *FileStore) Get(_ context.Context) (weather.RawSnapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return weather.RawSnapshot{}, fmt.Errorf("%s: %w", s.path, weather.ErrCacheMiss)
	}
	if err != nil {
		return weather.RawSnapshot{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	// stat and read the same inode so a concurrent rename cannot mix them
	info, err := f.Stat()
	if err != nil {
		return weather.RawSnapshot{}, fmt.Errorf("stat snapshot: %w", err)
	}
	body, err := io.ReadAll(f)
	if err != nil {
		return weather.RawSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	snap := weather.NewRawSnapshot(body, info.ModTime().Local())
	if snap.Empty() {
		return weather.RawSnapshot{}, fmt.Errorf("%s is empty: %w", s.path, weather.ErrCacheMiss)
	}
	return snap, nil
}
