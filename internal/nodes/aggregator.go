package nodes

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// weightSumTolerance is the rounding slack allowed when checking that a
// hand's action weights sum to 1.
const weightSumTolerance = 1e-6

// ErrNoNodes is returned when input files were provided but none of them
// resolved to a node. Nothing can be rendered or exported in that case, so
// callers treat it as fatal.
var ErrNoNodes = errors.New("no nodes could be resolved from input files")

// SourceFile pairs a range filename with its parsed entries.
type SourceFile struct {
	Name    string
	Entries []rng.Entry
}

// Aggregator builds a Collection from parsed range files.
type Aggregator struct {
	namer Namer
	log   zerolog.Logger
}

// NewAggregator creates an aggregator using the given filename convention.
// Passing nil uses DotCodeNamer.
func NewAggregator(namer Namer, log zerolog.Logger) *Aggregator {
	if namer == nil {
		namer = DotCodeNamer
	}
	return &Aggregator{
		namer: namer,
		log:   log.With().Str("component", "aggregator").Logger(),
	}
}

// Build groups the files by node and assembles the strategy collection.
//
// Files are processed in lexical filename order, and a later file's entry
// for the same (node, hand, action) overwrites an earlier one. Sorting the
// input makes that last-write-wins policy deterministic regardless of how
// the filesystem enumerated the files.
//
// A file whose name does not resolve to a node is skipped and logged.
// If files were provided but none resolved, Build fails with ErrNoNodes.
func (a *Aggregator) Build(files []SourceFile) (*Collection, error) {
	sorted := make([]SourceFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	col := &Collection{
		BuildID: uuid.New().String(),
		BuiltAt: time.Now().UTC(),
		Nodes:   make(map[string]*NodeStrategies),
	}

	var unresolved int
	for _, f := range sorted {
		nodeID, action, err := a.namer(f.Name)
		if err != nil {
			unresolved++
			a.log.Warn().Err(err).Str("file", f.Name).Msg("Skipping file with unresolvable node")
			continue
		}

		node, ok := col.Nodes[nodeID]
		if !ok {
			node = &NodeStrategies{ID: nodeID, Hands: make(map[string]HandStrategy)}
			col.Nodes[nodeID] = node
		}

		for _, e := range f.Entries {
			hand, ok := node.Hands[e.Hand]
			if !ok {
				hand = make(HandStrategy)
				node.Hands[e.Hand] = hand
			}
			if _, exists := hand[action]; exists {
				a.log.Debug().
					Str("node", nodeID).
					Str("hand", e.Hand).
					Str("action", string(action)).
					Str("file", f.Name).
					Msg("Overwriting earlier strategy (last write wins)")
			}
			hand[action] = ActionStrategy{Weight: e.Weight, EV: e.EV}
		}
	}

	if len(col.Nodes) == 0 && len(files) > 0 {
		return nil, fmt.Errorf("%w (%d files, %d unresolvable)", ErrNoNodes, len(files), unresolved)
	}

	a.checkWeightSums(col)

	return col, nil
}

// checkWeightSums warns about hands whose action weights exceed 1. Sums
// below 1 are normal while action files for a node are still arriving, so
// only the upper bound is enforced, and only as a warning.
func (a *Aggregator) checkWeightSums(col *Collection) {
	for _, nodeID := range col.NodeIDs() {
		node := col.Nodes[nodeID]
		for hand, strategy := range node.Hands {
			if sum := strategy.WeightSum(); sum > 1+weightSumTolerance {
				a.log.Warn().
					Str("node", nodeID).
					Str("hand", hand).
					Float64("weight_sum", math.Round(sum*1e9)/1e9).
					Msg("Hand action weights exceed 1")
			}
		}
	}
}
