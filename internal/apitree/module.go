package apitree

import (
	"context"
	"errors"
)

// Probe answers the capability questions classification needs about an object.
type Probe interface {
	IsCallable() bool
	IsType() bool
	IsError() bool
	IsConstant() bool
}

// Object is one package-scope declaration of an imported module.
type Object interface {
	Probe

	Name() string
	Exported() bool

	// Origin is the import path of the package that defines the object.
	// It differs from the module path for aliases of foreign types.
	Origin() string

	// Doc returns the object's documentation text. An empty string means
	// the object is undocumented.
	Doc() (string, error)

	Bases() []string
	Methods() []string
	Signature() string
}

// Module is an imported package as seen by the tree builder.
type Module struct {
	Path    string // import path
	Name    string // package clause name
	Dir     string // directory holding the package sources
	Doc     string // package doc comment
	Objects []Object
}

// ErrNoPackage is returned by an Importer when a directory holds Go files
// but none of them is part of the build, e.g. a generator behind
// //go:build ignore. The builder treats such a directory like one without
// Go files.
var ErrNoPackage = errors.New("no buildable Go files")

// Importer resolves and loads a single package. dir is empty for the root,
// in which case the importer resolves path itself.
type Importer interface {
	Import(ctx context.Context, path, dir string) (*Module, error)
}
