package apitree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tree is the result of a build: the root node, the flat directory of every
// node and the descendants that failed to import.
type Tree struct {
	Root      *Node
	Directory *Directory
	Failures  []Failure
}

// Failure records a sub-package that could not be imported.
type Failure struct {
	Fullname string
	Err      error
}

// RootError is returned by Build when the root package cannot be imported.
type RootError struct {
	Name string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("import root %s: %v", e.Name, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// BuildOption configures Build.
type BuildOption func(*builder)

// WithLogger sets the logger used to report skipped sub-packages.
func WithLogger(log *slog.Logger) BuildOption {
	return func(b *builder) {
		b.log = log
	}
}

type builder struct {
	imp     Importer
	log     *slog.Logger
	tree    *Tree
	visited map[string]bool
}

// Build imports root and every package beneath its directory, returning the
// resulting tree. Only a failure to import root is returned as an error
// (as *RootError); broken sub-packages are logged, recorded in
// Tree.Failures and left out of the tree.
func Build(ctx context.Context, imp Importer, root string, opts ...BuildOption) (*Tree, error) {
	b := &builder{
		imp:     imp,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tree:    &Tree{Directory: NewDirectory()},
		visited: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}

	mod, err := imp.Import(ctx, root, "")
	if err != nil {
		return nil, &RootError{Name: root, Err: err}
	}

	// The importer may have resolved a relative pattern such as ".".
	name := mod.Path
	if name == "" {
		name = root
	}
	n := b.newNode(mod, name, name, nil)
	b.visited[name] = true
	b.markDir(mod.Dir)
	if err := b.expand(ctx, n, mod.Dir); err != nil {
		return nil, err
	}
	b.tree.Root = n
	b.tree.Directory.Add(n)

	b.log.Debug("built api tree", "root", name, "nodes", b.tree.Directory.Len(), "failures", len(b.tree.Failures))
	return b.tree, nil
}

// NewNode creates a detached node for an imported module. Sub-nodes are
// not discovered; use Build for a full tree.
func NewNode(mod *Module, parent *Node) *Node {
	name, fullname := mod.Path, mod.Path
	if parent != nil {
		name = filepath.Base(mod.Dir)
		fullname = parent.Fullname + Separator + name
	}
	n := newNode(mod, name, fullname, parent)
	n.IsPackage = len(packageDirs(mod.Dir)) > 0
	return n
}

func newNode(mod *Module, name, fullname string, parent *Node) *Node {
	n := &Node{
		Name:     name,
		Fullname: fullname,
		Members:  make(map[string]*Member),
		parent:   parent,
	}
	n.Doc, n.Summary = describe(func() (string, error) { return mod.Doc, nil })
	for _, obj := range mod.Objects {
		if m := newMember(obj, mod.Path); m != nil {
			n.Members[m.Name] = m
		}
	}
	return n
}

func (b *builder) newNode(mod *Module, name, fullname string, parent *Node) *Node {
	n := newNode(mod, name, fullname, parent)
	n.tree = b.tree
	return n
}

// expand discovers, builds and attaches the children of n.
func (b *builder) expand(ctx context.Context, n *Node, dir string) error {
	subs := packageDirs(dir)
	n.IsPackage = len(subs) > 0

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build %s: %w", n.Fullname, err)
		}
		fullname := n.Fullname + Separator + sub
		subdir := filepath.Join(dir, sub)
		if b.visited[fullname] || !b.markDir(subdir) {
			b.log.Debug("package already visited", "package", fullname)
			continue
		}
		b.visited[fullname] = true

		child, err := b.buildChild(ctx, n, sub, fullname, subdir)
		if err != nil {
			return err
		}
		if child != nil && b.tree.Directory.Add(child) {
			n.Subnodes = append(n.Subnodes, child)
		}
	}

	sort.Slice(n.Subnodes, func(i, j int) bool {
		return n.Subnodes[i].Name < n.Subnodes[j].Name
	})
	return nil
}

// buildChild returns nil when the directory yields no node: the package
// failed to import, or a namespace directory ended up empty.
func (b *builder) buildChild(ctx context.Context, parent *Node, name, fullname, dir string) (*Node, error) {
	if !hasGoFiles(dir) {
		return b.namespace(ctx, parent, name, fullname, dir)
	}

	mod, err := b.imp.Import(ctx, fullname, dir)
	if errors.Is(err, ErrNoPackage) {
		b.log.Debug("no buildable files", "package", fullname)
		return b.namespace(ctx, parent, name, fullname, dir)
	}
	if err != nil {
		b.log.Warn("skipping package", "package", fullname, "error", err)
		b.tree.Failures = append(b.tree.Failures, Failure{Fullname: fullname, Err: err})
		return nil, nil
	}
	n := b.newNode(mod, name, fullname, parent)
	if err := b.expand(ctx, n, dir); err != nil {
		return nil, err
	}
	return n, nil
}

// namespace builds a member-less node for a directory that is not a package
// itself. It returns nil when no package survives beneath it.
func (b *builder) namespace(ctx context.Context, parent *Node, name, fullname, dir string) (*Node, error) {
	n := &Node{
		Name:      name,
		Fullname:  fullname,
		Summary:   Undocumented,
		Members:   make(map[string]*Member),
		Namespace: true,
		parent:    parent,
		tree:      b.tree,
	}
	if err := b.expand(ctx, n, dir); err != nil {
		return nil, err
	}
	if n.IsLeaf() {
		return nil, nil
	}
	return n, nil
}

// markDir records dir by its resolved path and reports whether it was new.
func (b *builder) markDir(dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}
	key := "dir:" + resolved
	if b.visited[key] {
		return false
	}
	b.visited[key] = true
	return true
}

// packageDirs lists the sub-directories of dir that the go command would
// consider part of the same module, sorted by name.
func packageDirs(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var subs []string
	for _, e := range entries {
		name := e.Name()
		if !isDir(dir, e) || ignoredName(name) || name == "testdata" || name == "vendor" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name, "go.mod")); err == nil {
			continue
		}
		subs = append(subs, name)
	}
	return subs
}

func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && fi.IsDir()
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || ignoredName(name) {
			continue
		}
		if strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			return true
		}
	}
	return false
}

// ignoredName matches the go command's rule for files and directories it skips.
func ignoredName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
