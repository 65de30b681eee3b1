// blocks/tree.go
package blocks

import "sort"

// Node is a block with its children in display order.
type Node struct {
	Block    Block
	Children []*Node
}

// Normalize fills missing order indexes from list position and replaces nil tags with an
// empty slice. The input is not modified.
func Normalize(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		if b.OrderIndex == nil {
			b.OrderIndex = Ptr(i)
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
		if b.ParentID != nil && *b.ParentID == "" {
			b.ParentID = nil
		}
		out[i] = b
	}
	return out
}

// BuildTree arranges blocks by parent. Blocks whose parent is unknown become roots.
// Siblings are ordered by order index, ties keep input order.
func BuildTree(blocks []Block) []*Node {
	nodes := make(map[string]*Node, len(blocks))
	ordered := make([]*Node, 0, len(blocks))
	for _, b := range blocks {
		n := &Node{Block: b}
		nodes[b.ID] = n
		ordered = append(ordered, n)
	}

	var roots []*Node
	for _, n := range ordered {
		parent, ok := nodes[n.Block.Parent()]
		if !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortNodes(roots)
	for _, n := range ordered {
		sortNodes(n.Children)
	}
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Block.Order() < nodes[j].Block.Order()
	})
}

// Walk visits the tree depth first, passing each node's depth (roots are 0).
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
}

// Move places sourceID at targetID's position and renumbers every order index from zero.
// It reports false and returns blocks unchanged when the ids are equal or unknown.
func Move(blocks []Block, sourceID, targetID string) ([]Block, bool) {
	if sourceID == targetID {
		return blocks, false
	}
	sourceIdx, targetIdx := -1, -1
	for i, b := range blocks {
		switch b.ID {
		case sourceID:
			sourceIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if sourceIdx < 0 || targetIdx < 0 {
		return blocks, false
	}

	next := make([]Block, 0, len(blocks))
	next = append(next, blocks[:sourceIdx]...)
	next = append(next, blocks[sourceIdx+1:]...)

	moved := blocks[sourceIdx]
	next = append(next[:targetIdx], append([]Block{moved}, next[targetIdx:]...)...)

	for i := range next {
		next[i].OrderIndex = Ptr(i)
	}
	return next, true
}

// IDs returns the block ids in order.
func IDs(blocks []Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

// Roots returns the top-level blocks, the choices for a parent filter.
func Roots(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Parent() == "" {
			out = append(out, b)
		}
	}
	return out
}
