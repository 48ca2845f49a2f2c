package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
	"github.com/rebrag/GTOLite-Helper-Script/pkg/logger"
)

func writeRange(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newTestScanner(t *testing.T, dir string) *Scanner {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return New(dir, nodes.NewAggregator(nil, log), log)
}

func TestRun_BuildsCollectionFromFolder(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "0.rng", "AKs\n0.1;200\n")
	writeRange(t, dir, "1.rng", "AKs\n0.3;600\n")
	writeRange(t, dir, "0.0.1.rng", "72o\n1.0;-100\n")

	col, report, err := newTestScanner(t, dir).Run()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 3, report.FilesParsed)
	assert.Equal(t, 0, report.FilesSkipped)
	assert.Equal(t, 2, report.Nodes)
	assert.Equal(t, col.BuildID, report.BuildID)

	root, ok := col.Node("root")
	require.True(t, ok)
	assert.InDelta(t, 0.1, root.Hands["AKs"][rng.ActionFold].Weight, 1e-9)
	assert.InDelta(t, 0.3, root.Hands["AKs"][rng.ActionCall].Weight, 1e-9)
}

func TestRun_EmptyFolder(t *testing.T) {
	dir := t.TempDir()

	col, report, err := newTestScanner(t, dir).Run()
	require.NoError(t, err)
	assert.Empty(t, col.Nodes)
	assert.Equal(t, 0, report.Files)
}

func TestRun_EmptyFileIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "0.rng", "AA\n1.0;100\n")
	writeRange(t, dir, "1.rng", "")

	col, report, err := newTestScanner(t, dir).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, report.FilesParsed)

	root, ok := col.Node("root")
	require.True(t, ok)
	assert.Len(t, root.Hands, 1)
}

func TestRun_MalformedLinesAreCounted(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "0.rng", "AA\n1.0;100\nKK\nbogus\nQQ\n0.5;50\n")

	col, report, err := newTestScanner(t, dir).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.LinesSkipped)

	root, _ := col.Node("root")
	assert.Len(t, root.Hands, 2)
}

func TestRun_UndecodableFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "0.rng", "AA\n1.0;100\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.rng"), []byte{0xff, 0xfe, 0x00, 0x81}, 0644))

	_, report, err := newTestScanner(t, dir).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesSkipped)
	assert.Equal(t, 1, report.FilesParsed)
}

func TestRun_NoResolvableNodesIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "2.rng", "AA\n1.0;100\n")

	_, _, err := newTestScanner(t, dir).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, nodes.ErrNoNodes)
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeRange(t, dir, "0.1.rng", "72o\n0.2;100\n")
	writeRange(t, dir, "0.1.rng.bak", "ignored")
	writeRange(t, dir, "0.0.1.rng", "72o\n0.9;300\n")

	s := newTestScanner(t, dir)

	first, _, err := s.Run()
	require.NoError(t, err)
	second, _, err := s.Run()
	require.NoError(t, err)

	assert.Equal(t, first.NodeIDs(), second.NodeIDs())
	for _, id := range first.NodeIDs() {
		a, _ := first.Node(id)
		b, _ := second.Node(id)
		assert.Equal(t, a.Hands, b.Hands)
	}
}
