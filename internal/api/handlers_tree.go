package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/config"
)

type nodeSummary struct {
	Fullname    string               `json:"fullname"`
	Name        string               `json:"name"`
	Summary     string               `json:"summary"`
	IsLeaf      bool                 `json:"is_leaf"`
	IsPackage   bool                 `json:"is_package"`
	IsNamespace bool                 `json:"is_namespace"`
	IsRelevant  bool                 `json:"is_relevant"`
	Members     map[apitree.Kind]int `json:"members"`
}

type memberView struct {
	Name      string       `json:"name"`
	Kind      apitree.Kind `json:"kind"`
	Summary   string       `json:"summary"`
	Doc       string       `json:"doc,omitempty"`
	Signature string       `json:"signature,omitempty"`
	Bases     []string     `json:"bases,omitempty"`
	Methods   []string     `json:"methods,omitempty"`
}

type nodeDetail struct {
	nodeSummary
	Doc        string       `json:"doc"`
	Parent     string       `json:"parent,omitempty"`
	Breadcrumb []string     `json:"breadcrumb"`
	Children   []string     `json:"children"`
	Items      []memberView `json:"items"`
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	roots := s.roots
	if roots == nil {
		roots = []config.Root{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"roots": roots})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.buildTree(w, r)
	if !ok {
		return
	}
	relevant, _ := strconv.ParseBool(r.URL.Query().Get("relevant"))

	nodes := lo.Map(tree.Directory.Nodes(relevant), func(n *apitree.Node, _ int) nodeSummary {
		return summarize(n)
	})
	failures := lo.Map(tree.Failures, func(f apitree.Failure, _ int) map[string]string {
		return map[string]string{"package": f.Fullname, "error": f.Err.Error()}
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"root":     tree.Root.Fullname,
		"nodes":    nodes,
		"failures": failures,
		"tree":     tree.Root.Tree(false),
	})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		jsonError(w, "name query parameter is required", http.StatusBadRequest)
		return
	}
	tree, ok := s.buildTree(w, r)
	if !ok {
		return
	}
	n := tree.Directory.Get(name)
	if n == nil {
		jsonError(w, "node not found: "+name, http.StatusNotFound)
		return
	}

	d := nodeDetail{
		nodeSummary: summarize(n),
		Doc:         n.Doc,
		Breadcrumb: lo.Map(n.Breadcrumb(), func(b *apitree.Node, _ int) string {
			return b.Fullname
		}),
		Children: lo.Map(n.Subnodes, func(c *apitree.Node, _ int) string {
			return c.Fullname
		}),
		Items: lo.Map(n.SortedMembers(), func(m *apitree.Member, _ int) memberView {
			return memberView{
				Name:      m.Name,
				Kind:      m.Kind,
				Summary:   m.Summary,
				Doc:       m.Doc,
				Signature: m.Signature,
				Bases:     m.Bases,
				Methods:   m.Methods,
			}
		}),
	}
	if p := n.Parent(); p != nil {
		d.Parent = p.Fullname
	}
	writeJSON(w, http.StatusOK, d)
}

// buildTree builds the tree named by the root query parameter. It writes
// the error response itself and reports whether the caller may continue.
func (s *Server) buildTree(w http.ResponseWriter, r *http.Request) (*apitree.Tree, bool) {
	root := r.URL.Query().Get("root")
	if root == "" {
		jsonError(w, "root query parameter is required", http.StatusBadRequest)
		return nil, false
	}
	tree, err := apitree.Build(r.Context(), s.imp, root, apitree.WithLogger(s.log))
	if err != nil {
		var rootErr *apitree.RootError
		if errors.As(err, &rootErr) {
			jsonError(w, rootErr.Error(), http.StatusUnprocessableEntity)
			return nil, false
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return tree, true
}

func summarize(n *apitree.Node) nodeSummary {
	counts := lo.CountValuesBy(lo.Values(n.Members), func(m *apitree.Member) apitree.Kind {
		return m.Kind
	})
	return nodeSummary{
		Fullname:    n.Fullname,
		Name:        n.Name,
		Summary:     n.Summary,
		IsLeaf:      n.IsLeaf(),
		IsPackage:   n.IsPackage,
		IsNamespace: n.Namespace,
		IsRelevant:  n.IsRelevant(),
		Members:     counts,
	}
}
