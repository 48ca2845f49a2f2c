package grid

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// ActionStat summarizes one action across every hand in a node.
type ActionStat struct {
	Action     rng.Action `json:"action"`
	Hands      int        `json:"hands"`      // hands with weight > 0 for this action
	WeightMean float64    `json:"weight_mean"` // mean frequency over hands that have the action
	EVMean     float64    `json:"ev_mean"`     // frequency-weighted mean EV
	EVStd      float64    `json:"ev_std"`      // frequency-weighted EV standard deviation
}

// NodeStats summarizes a node's strategy.
type NodeStats struct {
	Node    string       `json:"node"`
	Hands   int          `json:"hands"`
	Actions []ActionStat `json:"actions"`
}

// Summarize computes per-action summary statistics for a node. EV moments
// are weighted by action frequency, so a hand that takes an action 5% of
// the time contributes little to that action's EV profile.
func Summarize(node *nodes.NodeStrategies) *NodeStats {
	byAction := make(map[rng.Action]struct {
		weights []float64
		evs     []float64
	})

	for _, strategy := range node.Hands {
		for action, s := range strategy {
			agg := byAction[action]
			agg.weights = append(agg.weights, s.Weight)
			agg.evs = append(agg.evs, s.EV)
			byAction[action] = agg
		}
	}

	actions := make([]rng.Action, 0, len(byAction))
	for a := range byAction {
		actions = append(actions, a)
	}
	rng.SortActions(actions)

	out := &NodeStats{Node: node.ID, Hands: len(node.Hands)}
	for _, action := range actions {
		agg := byAction[action]

		active := 0
		var totalWeight float64
		for _, w := range agg.weights {
			if w > 0 {
				active++
			}
			totalWeight += w
		}

		st := ActionStat{
			Action:     action,
			Hands:      active,
			WeightMean: stat.Mean(agg.weights, nil),
		}

		if totalWeight > 0 {
			st.EVMean = stat.Mean(agg.evs, agg.weights)
			variance := stat.Variance(agg.evs, agg.weights)
			if !math.IsNaN(variance) && variance > 0 {
				st.EVStd = math.Sqrt(variance)
			}
		}

		out.Actions = append(out.Actions, st)
	}

	return out
}
