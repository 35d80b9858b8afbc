package apitree

import (
	"iter"

	"github.com/samber/lo"
)

// Walk yields every non-leaf node of the subtree rooted at n in pre-order,
// paired with its leaf children. Leaves only ever appear in the second
// element. The sequence is recomputed on each call.
func (n *Node) Walk() iter.Seq2[*Node, []*Node] {
	return func(yield func(*Node, []*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node, []*Node) bool) bool {
	if n.IsLeaf() {
		return true
	}
	leaves := lo.Filter(n.Subnodes, func(c *Node, _ int) bool {
		return c.IsLeaf()
	})
	if !yield(n, leaves) {
		return false
	}
	for _, c := range n.Subnodes {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}
