package viewer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebrag/GTOLite-Helper-Script/internal/export"
	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/scanner"
)

func newTestService(t *testing.T, dataDir string) *Service {
	t.Helper()

	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	agg := nodes.NewAggregator(nil, log)
	sc := scanner.New(dataDir, agg, log)
	exporter, err := export.NewExporter(t.TempDir(), log)
	require.NoError(t, err)

	return New(sc, nil, nil, exporter, log)
}

func writeRange(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestRescanSwapsCollection(t *testing.T) {
	dataDir := t.TempDir()
	writeRange(t, dataDir, "0.0.rng", "AA\n1;2000\n")
	service := newTestService(t, dataDir)

	assert.Nil(t, service.Collection(), "no collection before first rescan")

	report, err := service.Rescan(context.Background())
	require.NoError(t, err)

	col := service.Collection()
	require.NotNil(t, col)
	assert.Equal(t, report.BuildID, col.BuildID)
	assert.Equal(t, []string{"0"}, col.NodeIDs())

	// Adding a file and rescanning produces a new build.
	writeRange(t, dataDir, "0.1.1.rng", "KK\n1;1000\n")
	report2, err := service.Rescan(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, report.BuildID, report2.BuildID)
	assert.Equal(t, []string{"0", "0.1"}, service.Collection().NodeIDs())
}

func TestRescanFailureKeepsPreviousCollection(t *testing.T) {
	dataDir := t.TempDir()
	writeRange(t, dataDir, "0.0.rng", "AA\n1;2000\n")
	service := newTestService(t, dataDir)

	_, err := service.Rescan(context.Background())
	require.NoError(t, err)
	previous := service.Collection()

	// Replace the valid file with one whose name resolves to no node action.
	require.NoError(t, os.Remove(filepath.Join(dataDir, "0.0.rng")))
	writeRange(t, dataDir, "bogus.rng", "AA\n1;2000\n")

	_, err = service.Rescan(context.Background())
	require.Error(t, err)
	assert.Same(t, previous, service.Collection(), "failed rescan must not clobber the served collection")
}

func TestSubscribeReceivesRescanEvents(t *testing.T) {
	dataDir := t.TempDir()
	writeRange(t, dataDir, "0.0.rng", "AA\n1;2000\n")
	service := newTestService(t, dataDir)

	events, cancel := service.Subscribe()
	defer cancel()

	report, err := service.Rescan(context.Background())
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, report.BuildID, ev.BuildID)
		assert.Equal(t, 1, ev.Nodes)
		assert.Equal(t, 1, ev.Files)
	case <-time.After(time.Second):
		t.Fatal("expected a rescan event")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	writeRange(t, dataDir, "0.0.rng", "AA\n1;2000\n")
	service := newTestService(t, dataDir)

	_, err := service.Rescan(context.Background())
	require.NoError(t, err)
	buildID := service.Collection().BuildID

	// A fresh service over the same export dir restores the snapshot.
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	agg := nodes.NewAggregator(nil, log)
	sc := scanner.New(dataDir, agg, log)
	exporter, err := export.NewExporter(service.exporter.OutDir(), log)
	require.NoError(t, err)
	restored := New(sc, nil, nil, exporter, log)

	require.NoError(t, restored.RestoreSnapshot())
	require.NotNil(t, restored.Collection())
	assert.Equal(t, buildID, restored.Collection().BuildID)
}
