package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

func testNode() *nodes.NodeStrategies {
	return &nodes.NodeStrategies{
		ID: "0.0",
		Hands: map[string]nodes.HandStrategy{
			"AKs": {
				rng.ActionFold:  {Weight: 0.1, EV: 0},
				rng.ActionCall:  {Weight: 0.3, EV: 0.42},
				rng.ActionAllIn: {Weight: 0.6, EV: 1.05},
			},
			"72o": {
				rng.ActionFold: {Weight: 1.0, EV: 0},
			},
		},
	}
}

func TestBuild_AllCellsPresent(t *testing.T) {
	g := Build(testNode())

	assert.Equal(t, "0.0", g.Node)
	require.Len(t, g.Cells, rng.GridSize*rng.GridSize)

	// Cells are row-major and agree with the canonical hand layout.
	for row := 0; row < rng.GridSize; row++ {
		for col := 0; col < rng.GridSize; col++ {
			assert.Equal(t, rng.HandAt(row, col), g.Cell(row, col).Hand)
		}
	}
}

func TestBuild_SegmentsStackInCanonicalOrder(t *testing.T) {
	g := Build(testNode())

	row, col, ok := rng.HandPosition("AKs")
	require.True(t, ok)
	cell := g.Cell(row, col)

	require.Len(t, cell.Segments, 3)
	assert.Equal(t, rng.ActionFold, cell.Segments[0].Action)
	assert.Equal(t, rng.ActionCall, cell.Segments[1].Action)
	assert.Equal(t, rng.ActionAllIn, cell.Segments[2].Action)

	// Offsets are cumulative and never exceed the unit cell.
	assert.InDelta(t, 0.0, cell.Segments[0].Offset, 1e-9)
	assert.InDelta(t, 0.1, cell.Segments[1].Offset, 1e-9)
	assert.InDelta(t, 0.4, cell.Segments[2].Offset, 1e-9)
	last := cell.Segments[2]
	assert.LessOrEqual(t, last.Offset+last.Weight, 1.0+1e-6)
}

func TestBuild_TooltipFormat(t *testing.T) {
	g := Build(testNode())

	row, col, _ := rng.HandPosition("AKs")
	assert.Equal(t, "AKs\nfold: 0.00\ncall: 0.42\nallin: 1.05", g.Cell(row, col).Tooltip)

	// Hands without data still show their label on hover.
	row, col, _ = rng.HandPosition("QQ")
	cell := g.Cell(row, col)
	assert.Empty(t, cell.Segments)
	assert.Equal(t, "QQ", cell.Tooltip)
}

func TestSummarize(t *testing.T) {
	stats := Summarize(testNode())

	assert.Equal(t, "0.0", stats.Node)
	assert.Equal(t, 2, stats.Hands)
	require.Len(t, stats.Actions, 3)

	// Canonical order: fold, call, allin.
	assert.Equal(t, rng.ActionFold, stats.Actions[0].Action)
	assert.Equal(t, rng.ActionCall, stats.Actions[1].Action)
	assert.Equal(t, rng.ActionAllIn, stats.Actions[2].Action)

	fold := stats.Actions[0]
	assert.Equal(t, 2, fold.Hands)
	assert.InDelta(t, 0.55, fold.WeightMean, 1e-9) // (0.1 + 1.0) / 2

	call := stats.Actions[1]
	assert.Equal(t, 1, call.Hands)
	assert.InDelta(t, 0.42, call.EVMean, 1e-9) // single weighted sample
}

func TestSummarize_EmptyNode(t *testing.T) {
	stats := Summarize(&nodes.NodeStrategies{ID: "root", Hands: map[string]nodes.HandStrategy{}})

	assert.Equal(t, 0, stats.Hands)
	assert.Empty(t, stats.Actions)
}
