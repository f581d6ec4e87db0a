package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// SlotStore is a single named slot of opaque bytes. The report store keeps
// the whole JSON-encoded collection in one slot and always replaces it as a
// unit, matching the legacy single-writer storage model.
type SlotStore interface {
	// Read returns the slot contents. ok is false when the slot has never
	// been written.
	Read(ctx context.Context) (data []byte, ok bool, err error)
	// Write atomically replaces the slot contents.
	Write(ctx context.Context, data []byte) error
}

// FileSlot stores the slot in a single JSON file on local disk.
type FileSlot struct {
	path string
}

// NewFileSlot ensures the parent directory exists and returns a handle.
func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		return nil, fmt.Errorf("slot file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create slot directory: %w", err)
	}
	return &FileSlot{path: path}, nil
}

// Read loads the slot file. A missing file is an empty, never-written slot.
func (s *FileSlot) Read(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot file: %w", err)
	}
	return data, true, nil
}

// Write replaces the slot via a temp file and rename so readers never observe
// a partially written collection.
func (s *FileSlot) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create slot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}

// Path exposes the underlying file location (useful for debugging).
func (s *FileSlot) Path() string {
	return s.path
}
