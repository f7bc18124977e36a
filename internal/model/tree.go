package model

import (
	"fmt"
	"math"
)

// Node is one node of a tree in the XGBoost JSON dump format. Split nodes send a row
// to Yes when its value is below SplitCondition, to No otherwise, and to Missing when
// the value is NaN.
type Node struct {
	NodeID         int      `json:"nodeid"`
	Depth          int      `json:"depth,omitempty"`
	Split          string   `json:"split,omitempty"`
	SplitCondition float64  `json:"split_condition,omitempty"`
	Yes            int      `json:"yes,omitempty"`
	No             int      `json:"no,omitempty"`
	Missing        int      `json:"missing,omitempty"`
	Leaf           *float64 `json:"leaf,omitempty"`
	Children       []*Node  `json:"children,omitempty"`
}

// flatNode is a node with its split feature resolved to a column index.
type flatNode struct {
	leaf      bool
	value     float64
	column    int
	threshold float64
	yes       int
	no        int
	missing   int
}

// tree is a flattened regression tree indexed by node id.
type tree struct {
	root  int
	nodes map[int]flatNode
}

// compileTree flattens a dumped tree and resolves split names against columns.
func compileTree(root *Node, columns map[string]int) (*tree, error) {
	if root == nil {
		return nil, fmt.Errorf("empty tree")
	}
	t := &tree{root: root.NodeID, nodes: make(map[int]flatNode)}

	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := t.nodes[n.NodeID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.NodeID)
		}
		if n.Leaf != nil {
			t.nodes[n.NodeID] = flatNode{leaf: true, value: *n.Leaf}
			continue
		}

		col, ok := columns[n.Split]
		if !ok {
			return nil, fmt.Errorf("node %d splits on unknown feature %q", n.NodeID, n.Split)
		}
		missing := n.Missing
		if missing == root.NodeID {
			// Dumps without a missing branch default to the yes branch.
			missing = n.Yes
		}
		t.nodes[n.NodeID] = flatNode{
			column:    col,
			threshold: n.SplitCondition,
			yes:       n.Yes,
			no:        n.No,
			missing:   missing,
		}
		stack = append(stack, n.Children...)
	}

	// Every branch target must exist.
	for id, n := range t.nodes {
		if n.leaf {
			continue
		}
		for _, next := range []int{n.yes, n.no, n.missing} {
			if next == t.root {
				return nil, fmt.Errorf("node %d points back to the root", id)
			}
			if _, ok := t.nodes[next]; !ok {
				return nil, fmt.Errorf("node %d points to missing node %d", id, next)
			}
		}
	}
	return t, nil
}

// predict walks the tree from its root and returns the leaf value.
func (t *tree) predict(row []float64) float64 {
	id := t.root
	// A well-formed tree reaches a leaf in at most len(nodes) steps.
	for steps := 0; steps <= len(t.nodes); steps++ {
		n := t.nodes[id]
		if n.leaf {
			return n.value
		}
		v := row[n.column]
		switch {
		case math.IsNaN(v):
			id = n.missing
		case v < n.threshold:
			id = n.yes
		default:
			id = n.no
		}
	}
	return 0
}
