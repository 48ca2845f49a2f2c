// Package export writes strategy collections to disk: one JSON document per
// node, a combined document for the whole collection, and a msgpack snapshot
// used as a fast-reload cache.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
)

// CombinedFilename is the name of the whole-collection document.
const CombinedFilename = "collection.json"

// Exporter writes JSON documents into an output directory.
type Exporter struct {
	outDir string
	log    zerolog.Logger
}

// NewExporter creates an exporter targeting the given directory, creating
// it if needed.
func NewExporter(outDir string, log zerolog.Logger) (*Exporter, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	return &Exporter{
		outDir: outDir,
		log:    log.With().Str("component", "exporter").Logger(),
	}, nil
}

// OutDir returns the export target directory.
func (e *Exporter) OutDir() string {
	return e.outDir
}

// WriteAll writes one document per node plus the combined document and
// returns the paths written.
func (e *Exporter) WriteAll(col *nodes.Collection) ([]string, error) {
	var written []string

	for _, nodeID := range col.NodeIDs() {
		node := col.Nodes[nodeID]
		path := filepath.Join(e.outDir, nodeFilename(nodeID))
		if err := writeJSONFile(path, node.Hands); err != nil {
			return written, fmt.Errorf("failed to export node %s: %w", nodeID, err)
		}
		written = append(written, path)
	}

	combined := filepath.Join(e.outDir, CombinedFilename)
	if err := writeJSONFile(combined, col); err != nil {
		return written, fmt.Errorf("failed to export combined document: %w", err)
	}
	written = append(written, combined)

	e.log.Info().Int("files", len(written)).Str("dir", e.outDir).Msg("Exported collection")
	return written, nil
}

// ReadCombined loads a collection from a combined document previously
// written by WriteAll.
func ReadCombined(path string) (*nodes.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeCombined(f)
}

// DecodeCombined decodes a combined collection document.
func DecodeCombined(r io.Reader) (*nodes.Collection, error) {
	var col nodes.Collection
	if err := json.NewDecoder(r).Decode(&col); err != nil {
		return nil, fmt.Errorf("failed to decode collection document: %w", err)
	}
	if col.Nodes == nil {
		col.Nodes = make(map[string]*nodes.NodeStrategies)
	}
	// Node ids live in the map keys of the document; restore them on the
	// structs for documents written by older versions without the id field.
	for id, node := range col.Nodes {
		if node.ID == "" {
			node.ID = id
		}
	}
	return &col, nil
}

// nodeFilename maps a node id to its document name. The id becomes a
// filename component, so path separators a custom namer might emit are
// replaced.
func nodeFilename(nodeID string) string {
	safe := strings.ReplaceAll(nodeID, string(os.PathSeparator), "_")
	return safe + ".json"
}

// writeJSONFile writes v as indented JSON via a temp file and rename, so a
// crash mid-write never leaves a truncated document behind.
func writeJSONFile(path string, v interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
