package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
)

// SnapshotFilename is the binary snapshot written next to the JSON exports.
// It is decoded on startup to serve the last build before the first rescan
// finishes.
const SnapshotFilename = "collection.bin"

// WriteSnapshot encodes the collection as msgpack via temp file and rename.
func WriteSnapshot(path string, col *nodes.Collection) error {
	data, err := msgpack.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a msgpack snapshot. Returns nil without error when
// the file does not exist.
func ReadSnapshot(path string) (*nodes.Collection, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var col nodes.Collection
	if err := msgpack.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return &col, nil
}
