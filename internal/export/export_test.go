package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
	"github.com/rebrag/GTOLite-Helper-Script/pkg/logger"
)

func sampleCollection() *nodes.Collection {
	return &nodes.Collection{
		BuildID: "build-1",
		BuiltAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Nodes: map[string]*nodes.NodeStrategies{
			"root": {
				ID: "root",
				Hands: map[string]nodes.HandStrategy{
					"AKs": {
						rng.ActionFold:  {Weight: 0.1, EV: 0},
						rng.ActionCall:  {Weight: 0.3, EV: 0.42},
						rng.ActionAllIn: {Weight: 0.6, EV: 1.05},
					},
				},
			},
			"0.0": {
				ID: "0.0",
				Hands: map[string]nodes.HandStrategy{
					"72o": {rng.ActionFold: {Weight: 1.0, EV: 0}},
				},
			},
		},
	}
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	e, err := NewExporter(t.TempDir(), log)
	require.NoError(t, err)
	return e
}

func TestWriteAll(t *testing.T) {
	e := newTestExporter(t)
	col := sampleCollection()

	written, err := e.WriteAll(col)
	require.NoError(t, err)

	// One document per node plus the combined document.
	require.Len(t, written, 3)
	assert.FileExists(t, filepath.Join(e.OutDir(), "root.json"))
	assert.FileExists(t, filepath.Join(e.OutDir(), "0.0.json"))
	assert.FileExists(t, filepath.Join(e.OutDir(), CombinedFilename))

	// Per-node documents map hands to action objects keyed by action name.
	data, err := os.ReadFile(filepath.Join(e.OutDir(), "root.json"))
	require.NoError(t, err)

	var doc map[string]map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "AKs")
	assert.InDelta(t, 0.1, doc["AKs"]["fold"]["weight"], 1e-9)
	assert.InDelta(t, 0.42, doc["AKs"]["call"]["ev"], 1e-9)
	assert.InDelta(t, 0.6, doc["AKs"]["allin"]["weight"], 1e-9)
}

func TestJSONRoundTrip(t *testing.T) {
	e := newTestExporter(t)
	col := sampleCollection()

	_, err := e.WriteAll(col)
	require.NoError(t, err)

	loaded, err := ReadCombined(filepath.Join(e.OutDir(), CombinedFilename))
	require.NoError(t, err)

	assert.Equal(t, col.BuildID, loaded.BuildID)
	assert.True(t, col.BuiltAt.Equal(loaded.BuiltAt))
	assert.Equal(t, col.NodeIDs(), loaded.NodeIDs())
	for _, id := range col.NodeIDs() {
		want, _ := col.Node(id)
		got, ok := loaded.Node(id)
		require.True(t, ok, "node %s missing after round trip", id)
		assert.Equal(t, want.Hands, got.Hands)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SnapshotFilename)
	col := sampleCollection()

	require.NoError(t, WriteSnapshot(path, col))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, col.BuildID, loaded.BuildID)
	assert.Equal(t, col.NodeIDs(), loaded.NodeIDs())
	for _, id := range col.NodeIDs() {
		want, _ := col.Node(id)
		got, _ := loaded.Node(id)
		assert.Equal(t, want.Hands, got.Hands)
	}
}

func TestReadSnapshot_Missing(t *testing.T) {
	col, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.bin"))
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestWriteAll_EmptyCollection(t *testing.T) {
	e := newTestExporter(t)
	col := &nodes.Collection{BuildID: "empty", BuiltAt: time.Now().UTC(), Nodes: map[string]*nodes.NodeStrategies{}}

	written, err := e.WriteAll(col)
	require.NoError(t, err)
	require.Len(t, written, 1) // combined document only

	loaded, err := ReadCombined(written[0])
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)
}
