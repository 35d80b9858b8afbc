package apitree

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Separator joins path segments of a fullname.
const Separator = "/"

// Node is one package (or namespace directory) in an API tree.
type Node struct {
	Name      string             // last path segment; the full path for the root
	Fullname  string             // import path, unique within a tree
	Doc       string             // package doc comment
	Summary   string             // first line of Doc, or a sentinel
	Members   map[string]*Member // exported, classified members
	Subnodes  []*Node            // children sorted by name
	IsPackage bool               // directory can hold sub-packages
	Namespace bool               // directory without Go files of its own

	parent *Node
	tree   *Tree
}

// Parent returns the owning node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

func (n *Node) IsLeaf() bool {
	return len(n.Subnodes) == 0
}

func (n *Node) HasPublicAPI() bool {
	return len(n.Members) > 0
}

// IsRelevant reports whether the node is worth rendering: it has public API
// or it is a structural hub for its sub-packages.
func (n *Node) IsRelevant() bool {
	return n.HasPublicAPI() || !n.IsLeaf()
}

// Children returns the direct sub-nodes, optionally only the relevant ones.
func (n *Node) Children(relevantOnly bool) []*Node {
	if !relevantOnly {
		return n.Subnodes
	}
	return lo.Filter(n.Subnodes, func(c *Node, _ int) bool {
		return c.IsRelevant()
	})
}

// Lookup finds a node anywhere in this node's tree by fullname.
func (n *Node) Lookup(fullname string) *Node {
	if n.tree == nil {
		return nil
	}
	return n.tree.Directory.Get(fullname)
}

// Depth is the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Breadcrumb returns the ancestors of n, root first, followed by n itself.
func (n *Node) Breadcrumb() []*Node {
	var bc []*Node
	for p := n; p != nil; p = p.parent {
		bc = append(bc, p)
	}
	slices.Reverse(bc)
	return bc
}

// SortedMembers returns members ordered by name.
func (n *Node) SortedMembers() []*Member {
	ms := lo.Values(n.Members)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Name < ms[j].Name })
	return ms
}

func (n *Node) Functions() []*Member { return n.membersOf(KindFunction) }
func (n *Node) Types() []*Member { return n.membersOf(KindType) }
func (n *Node) Errors() []*Member { return n.membersOf(KindError) }
func (n *Node) Constants() []*Member { return n.membersOf(KindConstant) }
func (n *Node) Variables() []*Member { return n.membersOf(KindVariable) }

func (n *Node) membersOf(k Kind) []*Member {
	return lo.Filter(n.SortedMembers(), func(m *Member, _ int) bool {
		return m.Kind == k
	})
}

// Tree renders the subtree rooted at n as indented ASCII, one node per line.
func (n *Node) Tree(fullname bool) string {
	var sb strings.Builder
	var walk func(node *Node, prefix string, last bool, top bool)
	walk = func(node *Node, prefix string, last bool, top bool) {
		label := node.Name
		if fullname {
			label = node.Fullname
		}
		switch {
		case top:
			sb.WriteString(label)
		case last:
			sb.WriteString(prefix + "└── " + label)
		default:
			sb.WriteString(prefix + "├── " + label)
		}
		sb.WriteByte('\n')

		childPrefix := prefix
		if !top {
			if last {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}
		for i, c := range node.Subnodes {
			walk(c, childPrefix, i == len(node.Subnodes)-1, false)
		}
	}
	walk(n, "", true, true)
	return sb.String()
}

func (n *Node) String() string {
	return fmt.Sprintf("<Node %s members=%d subnodes=%d>", n.Fullname, len(n.Members), len(n.Subnodes))
}
