package apitree

import "github.com/samber/lo"

// Directory is an insertion-ordered index from fullname to node.
type Directory struct {
	names []string
	nodes map[string]*Node
}

func NewDirectory() *Directory {
	return &Directory{nodes: make(map[string]*Node)}
}

// Add registers n under its fullname. Adding a known fullname is a no-op
// and reports false.
func (d *Directory) Add(n *Node) bool {
	if _, ok := d.nodes[n.Fullname]; ok {
		return false
	}
	d.nodes[n.Fullname] = n
	d.names = append(d.names, n.Fullname)
	return true
}

func (d *Directory) Has(fullname string) bool {
	_, ok := d.nodes[fullname]
	return ok
}

// Get returns the node for fullname, or nil.
func (d *Directory) Get(fullname string) *Node {
	return d.nodes[fullname]
}

func (d *Directory) Len() int {
	return len(d.names)
}

// Names returns fullnames in insertion order.
func (d *Directory) Names() []string {
	return append([]string(nil), d.names...)
}

// Nodes returns nodes in insertion order, optionally only relevant ones.
func (d *Directory) Nodes(relevantOnly bool) []*Node {
	nodes := lo.Map(d.names, func(name string, _ int) *Node {
		return d.nodes[name]
	})
	if !relevantOnly {
		return nodes
	}
	return lo.Filter(nodes, func(n *Node, _ int) bool {
		return n.IsRelevant()
	})
}
