// Package apitreetest provides an in-memory apitree.Importer backed by a
// temporary directory layout, for tests of packages that consume trees.
package apitreetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/autoapi/internal/apitree"
)

// Object is a declaration with fixed answers.
type Object struct {
	Ident     string
	Callable  bool
	Type      bool
	Error     bool
	Constant  bool
	From      string
	Text      string
	Embeds    []string
	MethodSet []string
}

func (o *Object) Name() string { return o.Ident }
func (o *Object) Exported() bool { return o.Ident != "" && o.Ident[0] >= 'A' && o.Ident[0] <= 'Z' }
func (o *Object) Origin() string { return o.From }
func (o *Object) IsCallable() bool { return o.Callable }
func (o *Object) IsType() bool { return o.Type }
func (o *Object) IsError() bool { return o.Error }
func (o *Object) IsConstant() bool { return o.Constant }
func (o *Object) Doc() (string, error) { return o.Text, nil }
func (o *Object) Bases() []string { return o.Embeds }
func (o *Object) Methods() []string { return o.MethodSet }
func (o *Object) Signature() string {
	switch {
	case o.Type:
		return "type " + o.Ident
	case o.Callable:
		return "func " + o.Ident + "()"
	case o.Constant:
		return "const " + o.Ident
	}
	return "var " + o.Ident
}

func Func(name, doc string) *Object { return &Object{Ident: name, Callable: true, Text: doc} }
func Type(name, doc string) *Object { return &Object{Ident: name, Type: true, Text: doc} }
func Error(name, doc string) *Object { return &Object{Ident: name, Type: true, Error: true, Text: doc} }
func Const(name, doc string) *Object { return &Object{Ident: name, Constant: true, Text: doc} }
func Var(name, doc string) *Object { return &Object{Ident: name, Text: doc} }

// Importer serves registered packages. Each one gets a directory holding a
// placeholder Go file so the builder discovers it on disk.
type Importer struct {
	base string
	root string
	mods map[string]*apitree.Module
	errs map[string]error
}

func NewImporter(t testing.TB, root string) *Importer {
	t.Helper()
	return &Importer{
		base: t.TempDir(),
		root: root,
		mods: make(map[string]*apitree.Module),
		errs: make(map[string]error),
	}
}

// Add registers the package at path with the given doc comment.
func (im *Importer) Add(t testing.TB, path, doc string, objs ...apitree.Object) {
	t.Helper()
	dir := im.dir(path)
	writeGoFile(t, dir)
	objects := make([]apitree.Object, len(objs))
	copy(objects, objs)
	im.mods[path] = &apitree.Module{Path: path, Name: filepath.Base(dir), Dir: dir, Doc: doc, Objects: objects}
}

// Fail makes the package at path fail to import with err.
func (im *Importer) Fail(t testing.TB, path string, err error) {
	t.Helper()
	writeGoFile(t, im.dir(path))
	im.errs[path] = err
}

// Build builds the tree rooted at the importer's root, failing t on error.
func (im *Importer) Build(t testing.TB) *apitree.Tree {
	t.Helper()
	tree, err := apitree.Build(context.Background(), im, im.root)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}
	return tree
}

func (im *Importer) Import(_ context.Context, path, dir string) (*apitree.Module, error) {
	if err, ok := im.errs[path]; ok {
		return nil, err
	}
	m, ok := im.mods[path]
	if !ok {
		return nil, fmt.Errorf("package %s not found", path)
	}
	if dir != "" && dir != m.Dir {
		return nil, fmt.Errorf("package %s: unexpected dir %s", path, dir)
	}
	return m, nil
}

func (im *Importer) dir(path string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(path, im.root), "/")
	return filepath.Join(im.base, filepath.FromSlash(rel))
}

func writeGoFile(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "doc.go"), []byte("package x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
