// Package rng parses poker hand-range (.rng) strategy files.
//
// A .rng file holds one action's strategy for a decision point: alternating
// line pairs of a hand label ("AKs", "72o", "TT") followed by
// "<weight>;<ev>", where weight is the frequency this hand takes the action
// and ev is the action's expected value in solver chip units.
package rng

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Action identifies one decision available at a node (fold, call, a raise
// size, all-in). Raise actions carry their pot-percentage size, so "raise75"
// and "raise150" are distinct actions.
type Action string

const (
	ActionFold     Action = "fold"
	ActionCall     Action = "call"
	ActionMinRaise Action = "minraise"
	ActionAllIn    Action = "allin"
)

// RaiseAction returns the action for a raise of the given pot percentage.
func RaiseAction(pct int) Action {
	return Action(fmt.Sprintf("raise%d", pct))
}

// ActionFromCode decodes the numeric action code embedded in .rng filenames.
//
// Codes: "0" fold, "1" call, "3" all-in, "5" min-raise. Any other code
// encodes a raise size: the digits after the last "00" separator are the
// pot percentage (e.g. "40075" means raise 75% pot).
func ActionFromCode(code string) (Action, error) {
	switch code {
	case "0":
		return ActionFold, nil
	case "1":
		return ActionCall, nil
	case "3":
		return ActionAllIn, nil
	case "5":
		return ActionMinRaise, nil
	}

	if !strings.Contains(code, "00") {
		return "", fmt.Errorf("unknown action code %q", code)
	}

	parts := strings.Split(code, "00")
	pctStr := parts[len(parts)-1]
	pct, err := strconv.Atoi(pctStr)
	if err != nil || pct <= 0 {
		return "", fmt.Errorf("invalid raise size in action code %q", code)
	}

	return RaiseAction(pct), nil
}

// RaisePct returns the pot percentage of a raise action, or 0 and false for
// non-raise actions.
func (a Action) RaisePct() (int, bool) {
	s := string(a)
	if !strings.HasPrefix(s, "raise") {
		return 0, false
	}
	pct, err := strconv.Atoi(strings.TrimPrefix(s, "raise"))
	if err != nil {
		return 0, false
	}
	return pct, true
}

// sortRank orders actions for display: fold, call, min-raise, raises by
// ascending size, all-in last. This mirrors the left-to-right stacking order
// of the original grid rectangles.
func (a Action) sortRank() int {
	switch a {
	case ActionFold:
		return 0
	case ActionCall:
		return 1
	case ActionMinRaise:
		return 2
	case ActionAllIn:
		return 1 << 20
	}
	if pct, ok := a.RaisePct(); ok {
		return 10 + pct
	}
	// Unknown actions sort after the named ones but before all-in.
	return 1 << 19
}

// SortActions sorts actions in canonical display order, in place.
func SortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		ri, rj := actions[i].sortRank(), actions[j].sortRank()
		if ri != rj {
			return ri < rj
		}
		return actions[i] < actions[j]
	})
}
