package circuitgen

import (
	"strconv"
)

// Variable is the type name of a circuit wire.
const Variable = "frontend.Variable"

// File is a generated Go source file.
type File struct {
	Package string
	Imports []string
	Decls   []Decl
}

// Decl is a top level declaration.
type Decl interface {
	DeclName() string
}

// TypeRef names a type. Elem is set for arrays of Len elements, or slices
// when Len is -1. Bits records the width of a wire holding an integer.
type TypeRef struct {
	Name string
	Len  int
	Elem *TypeRef
	Bits int
}

// Named returns a reference to a named type.
func Named(name string) TypeRef {
	return TypeRef{Name: name}
}

// Wire returns the reference to a wire of the given width.
func Wire(bits int) TypeRef {
	return TypeRef{Name: Variable, Bits: bits}
}

// ArrayOf returns the reference to [n]elem.
func ArrayOf(n int, elem TypeRef) TypeRef {
	return TypeRef{Len: n, Elem: &elem}
}

// SliceOf returns the reference to []elem.
func SliceOf(elem TypeRef) TypeRef {
	return TypeRef{Len: -1, Elem: &elem}
}

func (t TypeRef) String() string {
	switch {
	case t.Elem == nil:
		return t.Name
	case t.Len < 0:
		return "[]" + t.Elem.String()
	default:
		return "[" + strconv.Itoa(t.Len) + "]" + t.Elem.String()
	}
}

// StructDecl declares a record type.
type StructDecl struct {
	Name   string
	Doc    string
	Fields []FieldDecl
}

func (d *StructDecl) DeclName() string { return d.Name }

// FieldDecl is one field of a record.
type FieldDecl struct {
	Name    string
	Type    TypeRef
	Comment string
}

// EnumDecl declares an enum as a wire alias plus one constant per variant,
// valued by ordinal.
type EnumDecl struct {
	Name     string
	Doc      string
	Variants []string
}

func (d *EnumDecl) DeclName() string { return d.Name }

// AliasDecl declares Name as an alias of Target.
type AliasDecl struct {
	Name   string
	Doc    string
	Target TypeRef
}

func (d *AliasDecl) DeclName() string { return d.Name }

// ConstDecl declares an untyped constant.
type ConstDecl struct {
	Name  string
	Doc   string
	Value string
}

func (d *ConstDecl) DeclName() string { return d.Name }

// Param is a function parameter.
type Param struct {
	Name string
	Type TypeRef
}

// FuncDecl declares a function whose body is given as source lines.
type FuncDecl struct {
	Name    string
	Doc     string
	Params  []Param
	Results []TypeRef
	Body    []string
}

func (d *FuncDecl) DeclName() string { return d.Name }

// Lookup returns the declaration named name.
func (f *File) Lookup(name string) (Decl, bool) {
	for _, d := range f.Decls {
		if d.DeclName() == name {
			return d, true
		}
	}
	return nil, false
}

// AddImport adds path to the imports once.
func (f *File) AddImport(path string) {
	for _, p := range f.Imports {
		if p == path {
			return
		}
	}
	f.Imports = append(f.Imports, path)
}
