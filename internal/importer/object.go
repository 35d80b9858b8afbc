package importer

import (
	"fmt"
	"go/ast"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

var errorType = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

// object adapts a package-scope types.Object to apitree.Object.
type object struct {
	obj    types.Object
	pkg    *types.Package
	docs   map[string]string
	origin string // set when a variable re-exports a foreign value
}

func (o *object) Name() string   { return o.obj.Name() }
func (o *object) Exported() bool { return o.obj.Exported() }

func (o *object) IsType() bool {
	_, ok := o.obj.(*types.TypeName)
	return ok
}

func (o *object) IsCallable() bool {
	switch obj := o.obj.(type) {
	case *types.Func:
		return true
	case *types.Var:
		_, ok := obj.Type().Underlying().(*types.Signature)
		return ok
	}
	return false
}

func (o *object) IsConstant() bool {
	_, ok := o.obj.(*types.Const)
	return ok
}

// IsError reports whether the type, or a pointer to it, implements error.
func (o *object) IsError() bool {
	tn, ok := o.obj.(*types.TypeName)
	if !ok {
		return false
	}
	t := tn.Type()
	if types.Implements(t, errorType) {
		return true
	}
	if _, isIface := t.Underlying().(*types.Interface); isIface {
		return false
	}
	return types.Implements(types.NewPointer(t), errorType)
}

func (o *object) Origin() string {
	if o.origin != "" {
		return o.origin
	}
	if tn, ok := o.obj.(*types.TypeName); ok && tn.IsAlias() {
		if named, ok := types.Unalias(tn.Type()).(*types.Named); ok && named.Obj().Pkg() != nil {
			return named.Obj().Pkg().Path()
		}
		return ""
	}
	if o.obj.Pkg() == nil {
		return ""
	}
	return o.obj.Pkg().Path()
}

func (o *object) Doc() (string, error) {
	doc, ok := o.docs[o.obj.Name()]
	if !ok {
		return "", fmt.Errorf("no declaration found for %s", o.obj.Name())
	}
	return doc, nil
}

// Bases lists the embedded types of a struct or interface, as declared.
func (o *object) Bases() []string {
	tn, ok := o.obj.(*types.TypeName)
	if !ok || tn.IsAlias() {
		return nil
	}
	qual := types.RelativeTo(o.pkg)
	var bases []string
	switch u := tn.Type().Underlying().(type) {
	case *types.Struct:
		for i := range u.NumFields() {
			if f := u.Field(i); f.Embedded() {
				bases = append(bases, types.TypeString(f.Type(), qual))
			}
		}
	case *types.Interface:
		for i := range u.NumEmbeddeds() {
			bases = append(bases, types.TypeString(u.EmbeddedType(i), qual))
		}
	}
	return bases
}

// Methods lists the exported methods in the method set of *T (or T for
// interfaces), sorted by name.
func (o *object) Methods() []string {
	tn, ok := o.obj.(*types.TypeName)
	if !ok {
		return nil
	}
	t := tn.Type()
	if _, isIface := t.Underlying().(*types.Interface); !isIface {
		t = types.NewPointer(t)
	}
	mset := types.NewMethodSet(t)
	var names []string
	for i := range mset.Len() {
		if m := mset.At(i).Obj(); m.Exported() {
			names = append(names, m.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (o *object) Signature() string {
	return types.ObjectString(o.obj, types.RelativeTo(o.pkg))
}

// valueOrigins finds variables and constants initialised straight from
// another package's function, variable or constant (var F = other.F,
// const C = other.C) and maps them to that package's path.
func valueOrigins(pkg *packages.Package) map[string]string {
	origins := make(map[string]string)
	if pkg.TypesInfo == nil {
		return origins
	}
	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok || len(vs.Names) != len(vs.Values) {
					continue
				}
				for i, id := range vs.Names {
					sel, ok := vs.Values[i].(*ast.SelectorExpr)
					if !ok {
						continue
					}
					used := pkg.TypesInfo.Uses[sel.Sel]
					if used == nil || used.Pkg() == nil || used.Pkg() == pkg.Types {
						continue
					}
					switch used.(type) {
					case *types.Func, *types.Var, *types.Const:
						origins[id.Name] = used.Pkg().Path()
					}
				}
			}
		}
	}
	return origins
}
