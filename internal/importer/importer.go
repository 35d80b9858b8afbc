// Package importer loads Go packages for the API tree builder using the
// go command, type-checking each package it is asked for.
package importer

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/dgallion1/autoapi/internal/apitree"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Config controls how packages are resolved.
type Config struct {
	Dir        string   // directory root paths are resolved from
	BuildFlags []string // extra go command flags, e.g. -tags=integration
	Env        []string // environment for the go command; nil inherits
}

// Importer implements apitree.Importer on top of golang.org/x/tools/go/packages.
type Importer struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Importer {
	return &Importer{cfg: cfg, log: log}
}

// Import loads the package at path. When dir is set the package is loaded
// from that directory instead of being resolved by import path. Any list,
// parse or type error makes the import fail.
func (im *Importer) Import(ctx context.Context, path, dir string) (*apitree.Module, error) {
	pcfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        im.cfg.Dir,
		BuildFlags: im.cfg.BuildFlags,
		Env:        im.cfg.Env,
	}
	pattern := path
	if dir != "" {
		pcfg.Dir = dir
		pattern = "."
	}

	pkgs, err := packages.Load(pcfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("load %s: expected 1 package, got %d", path, len(pkgs))
	}
	pkg := pkgs[0]
	if dir != "" && len(pkg.GoFiles) == 0 && len(pkg.CompiledGoFiles) == 0 {
		// The directory only holds files excluded by build constraints.
		im.log.Debug("no buildable files", "package", path, "ignored", len(pkg.IgnoredFiles))
		return nil, fmt.Errorf("load %s: %w", path, apitree.ErrNoPackage)
	}
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("load %s: %w", path, joinErrors(pkg.Errors))
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("load %s: no type information", path)
	}

	im.log.Debug("imported package", "package", pkg.PkgPath, "files", len(pkg.Syntax))
	return newModule(pkg), nil
}

func newModule(pkg *packages.Package) *apitree.Module {
	dir := pkg.Dir
	if dir == "" && len(pkg.GoFiles) > 0 {
		dir = filepath.Dir(pkg.GoFiles[0])
	}

	docs := collectDocs(pkg.Syntax)
	origins := valueOrigins(pkg)
	scope := pkg.Types.Scope()
	mod := &apitree.Module{
		Path: pkg.PkgPath,
		Name: pkg.Name,
		Dir:  dir,
		Doc:  packageDoc(pkg),
	}
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		mod.Objects = append(mod.Objects, &object{
			obj:    obj,
			pkg:    pkg.Types,
			docs:   docs,
			origin: origins[name],
		})
	}
	return mod
}

// packageDoc returns the first package comment found, in file name order.
func packageDoc(pkg *packages.Package) string {
	files := make([]*ast.File, len(pkg.Syntax))
	copy(files, pkg.Syntax)
	sort.Slice(files, func(i, j int) bool {
		return pkg.Fset.File(files[i].Pos()).Name() < pkg.Fset.File(files[j].Pos()).Name()
	})
	for _, f := range files {
		if f.Doc != nil {
			if text := strings.TrimSpace(f.Doc.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// collectDocs maps package-scope names to their doc comments. A declaration
// group's comment documents every spec in the group that has none.
func collectDocs(files []*ast.File) map[string]string {
	docs := make(map[string]string)
	for _, f := range files {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil {
					docs[d.Name.Name] = d.Doc.Text()
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						docs[s.Name.Name] = pick(s.Doc, d.Doc)
					case *ast.ValueSpec:
						for _, n := range s.Names {
							docs[n.Name] = pick(s.Doc, d.Doc)
						}
					}
				}
			}
		}
	}
	return docs
}

func pick(own, group *ast.CommentGroup) string {
	if own != nil {
		return own.Text()
	}
	return group.Text()
}

func joinErrors(errs []packages.Error) error {
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		out = append(out, e)
	}
	return errors.Join(out...)
}
