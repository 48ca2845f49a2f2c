// Package nodes groups parsed range files by decision point and builds the
// strategy collection served by the API.
package nodes

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// RootNode is the node id used when a filename carries only an action code
// (the decision at the top of the tree).
const RootNode = "root"

// Namer derives a node id and action from a range filename. It is pluggable
// so alternative solver naming conventions can be swapped in and tested
// independently of the aggregator.
type Namer func(filename string) (node string, action rng.Action, err error)

// DotCodeNamer implements the solver's dot-separated convention: the
// basename minus the .rng extension is split on "."; the last token is the
// action code and the remaining tokens joined with "." identify the node.
// "0.0.1.rng" is the call action at node "0.0"; "0.rng" is the fold action
// at the root node.
func DotCodeNamer(filename string) (string, rng.Action, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		return "", "", fmt.Errorf("empty range filename %q", filename)
	}

	tokens := strings.Split(base, ".")
	code := tokens[len(tokens)-1]

	action, err := rng.ActionFromCode(code)
	if err != nil {
		return "", "", fmt.Errorf("filename %q: %w", filename, err)
	}

	node := RootNode
	if len(tokens) > 1 {
		node = strings.Join(tokens[:len(tokens)-1], ".")
	}

	return node, action, nil
}
