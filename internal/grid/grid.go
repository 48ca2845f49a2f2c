// Package grid builds the 13x13 starting-hand matrix representation of a
// node's strategy: per-cell stacked action segments and tooltip text, the
// data contract behind the original viewer's rectangle-and-hover rendering.
package grid

import (
	"fmt"
	"strings"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// Segment is one action's share of a cell, stacked left to right. Offset is
// the cumulative weight of the segments before it, so a renderer can place
// the segment at x=Offset with width=Weight inside a unit-width cell.
type Segment struct {
	Action rng.Action `json:"action"`
	Weight float64    `json:"weight"`
	EV     float64    `json:"ev"`
	Offset float64    `json:"offset"`
}

// Cell is one hand's position in the matrix.
type Cell struct {
	Hand     string    `json:"hand"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	Segments []Segment `json:"segments,omitempty"`
	Tooltip  string    `json:"tooltip"`
}

// Grid is the full matrix for one node. Cells are row-major with AA at the
// top-left, matching the canonical hand layout.
type Grid struct {
	Node  string `json:"node"`
	Cells []Cell `json:"cells"`
}

// Build assembles the grid for a node. Every one of the 169 cells is
// present; hands the node has no data for get an empty cell with a
// hand-only tooltip. Hands outside the canonical grid (board-specific
// labels from other solver exports) have no cell and are ignored here.
func Build(node *nodes.NodeStrategies) *Grid {
	g := &Grid{
		Node:  node.ID,
		Cells: make([]Cell, 0, len(rng.Hands)),
	}

	for row := 0; row < rng.GridSize; row++ {
		for col := 0; col < rng.GridSize; col++ {
			hand := rng.HandAt(row, col)
			cell := Cell{Hand: hand, Row: row, Col: col}

			if strategy, ok := node.Hands[hand]; ok {
				cell.Segments = segments(strategy)
				cell.Tooltip = tooltip(hand, strategy)
			} else {
				cell.Tooltip = hand
			}

			g.Cells = append(g.Cells, cell)
		}
	}

	return g
}

// Cell returns the cell at a grid position.
func (g *Grid) Cell(row, col int) Cell {
	return g.Cells[row*rng.GridSize+col]
}

// segments stacks a hand's actions in canonical order with cumulative
// offsets, zero-weight actions included so tooltips and exports agree on
// the action set.
func segments(strategy nodes.HandStrategy) []Segment {
	var out []Segment
	offset := 0.0
	for _, action := range strategy.Actions() {
		s := strategy[action]
		out = append(out, Segment{
			Action: action,
			Weight: s.Weight,
			EV:     s.EV,
			Offset: offset,
		})
		offset += s.Weight
	}
	return out
}

// tooltip renders the hover text for a cell: the hand label, then one
// "<action>: <ev>" line per action in canonical order.
func tooltip(hand string, strategy nodes.HandStrategy) string {
	var b strings.Builder
	b.WriteString(hand)
	for _, action := range strategy.Actions() {
		fmt.Fprintf(&b, "\n%s: %.2f", action, strategy[action].EV)
	}
	return b.String()
}
