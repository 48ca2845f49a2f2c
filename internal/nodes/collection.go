package nodes

import (
	"sort"
	"time"

	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// ActionStrategy is one action's frequency and EV for a single hand.
type ActionStrategy struct {
	Weight float64 `json:"weight" msgpack:"weight"`
	EV     float64 `json:"ev" msgpack:"ev"`
}

// HandStrategy maps each available action to its strategy for one hand.
// Weights across actions should sum to 1 once every action file for the
// node has been aggregated.
type HandStrategy map[rng.Action]ActionStrategy

// Actions returns the hand's actions in canonical display order.
func (h HandStrategy) Actions() []rng.Action {
	actions := make([]rng.Action, 0, len(h))
	for a := range h {
		actions = append(actions, a)
	}
	rng.SortActions(actions)
	return actions
}

// WeightSum returns the total action weight assigned to the hand.
func (h HandStrategy) WeightSum() float64 {
	var sum float64
	for _, s := range h {
		sum += s.Weight
	}
	return sum
}

// NodeStrategies holds every hand strategy contributed to one decision point.
type NodeStrategies struct {
	ID    string                  `json:"id" msgpack:"id"`
	Hands map[string]HandStrategy `json:"hands" msgpack:"hands"`
}

// HandLabels returns the node's hands in canonical grid order, followed by
// any labels outside the 169-hand grid in lexical order.
func (n *NodeStrategies) HandLabels() []string {
	labels := make([]string, 0, len(n.Hands))
	var extra []string
	for _, h := range rng.Hands {
		if _, ok := n.Hands[h]; ok {
			labels = append(labels, h)
		}
	}
	for h := range n.Hands {
		if !rng.IsHand(h) {
			extra = append(extra, h)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

// Collection is the top-level strategy model: node id to hand strategies.
// A Collection is built once per pipeline run and never mutated afterwards;
// consumers may share it freely.
type Collection struct {
	BuildID string                     `json:"build_id" msgpack:"build_id"`
	BuiltAt time.Time                  `json:"built_at" msgpack:"built_at"`
	Nodes   map[string]*NodeStrategies `json:"nodes" msgpack:"nodes"`
}

// NodeIDs returns all node identifiers in lexical order.
func (c *Collection) NodeIDs() []string {
	ids := make([]string, 0, len(c.Nodes))
	for id := range c.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Node returns the strategies for one node.
func (c *Collection) Node(id string) (*NodeStrategies, bool) {
	n, ok := c.Nodes[id]
	return n, ok
}

// HandCount returns the total number of (node, hand) strategy records.
func (c *Collection) HandCount() int {
	var count int
	for _, n := range c.Nodes {
		count += len(n.Hands)
	}
	return count
}
