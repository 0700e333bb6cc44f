// Package circuitgen derives gnark circuit types from schemas. Every
// generated record comes with a Deserialize function reading it from a
// bfl.Reader, consuming exactly the units the codec writes, and a Default
// function returning the value whose encoding is all zeros.
package circuitgen

import (
	"fmt"
	"strconv"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/schema"
)

const (
	modulePath = "github.com/ing-bank/zkflow-sub006"

	importFrontend = "github.com/consensys/gnark/frontend"
	importBFL      = modulePath + "/circuits/bfl"
	importCircuits = modulePath + "/circuits"
	importSchema   = modulePath + "/schema"
)

// Generator accumulates generated declarations into one file.
type Generator struct {
	mode schema.Mode
	reg  *Registry
	file *File
}

// NewGenerator returns a generator for package pkg reading units of the
// given mode. A new registry is created if reg is nil.
func NewGenerator(pkg string, mode schema.Mode, reg *Registry) *Generator {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Generator{
		mode: mode,
		reg:  reg,
		file: &File{Package: pkg},
	}
}

// File returns the generated file.
func (g *Generator) File() *File { return g.file }

// Mode returns the unit mode of the generated readers.
func (g *Generator) Mode() schema.Mode { return g.mode }

// Registry returns the generator's registry.
func (g *Generator) Registry() *Registry { return g.reg }

// AddDecl appends d to the file. A name can only be declared once.
func (g *Generator) AddDecl(d Decl) error {
	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()
	return g.addDecls(d)
}

func (g *Generator) addDecls(decls ...Decl) error {
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		name := d.DeclName()
		if _, ok := g.file.Lookup(name); ok || seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateDeclaration, name)
		}
		if _, ok := g.reg.names[name]; ok {
			return fmt.Errorf("%w: %s is a generated type", ErrDuplicateDeclaration, name)
		}
		seen[name] = true
	}
	g.file.Decls = append(g.file.Decls, decls...)
	return nil
}

// Type maps s to its circuit type, declaring it and every type it depends
// on unless already generated. Generation is all or nothing: on error the
// file and the registry are left unchanged.
func (g *Generator) Type(s schema.Schema) (TypeRef, error) {
	if err := schema.Walk(s, supported); err != nil {
		return TypeRef{}, err
	}
	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()

	st := g.newStage()
	e, err := st.mapSchema(s, "")
	if err != nil {
		return TypeRef{}, err
	}
	n := len(st.decls)
	if err := st.commit(); err != nil {
		return TypeRef{}, err
	}
	if n > 0 {
		log.Debugw("generated circuit type", "type", e.ref.String(), "declarations", n)
	}
	return e.ref, nil
}

func supported(path string, s schema.Schema) error {
	switch s := s.(type) {
	case *schema.Primitive, *schema.FixedList, *schema.FixedMap, *schema.FixedString,
		*schema.Struct, *schema.Enum, *schema.Option:
		return nil
	case *schema.Surrogate:
		if s.Proxy != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %T at %q", ErrUnsupportedSchemaNode, s, path)
}

// stage holds the declarations of one Type or Groups call until they are
// committed.
type stage struct {
	g       *Generator
	entries map[schema.Schema]*entry
	names   map[string]schema.Schema
	decls   []Decl
}

func (g *Generator) newStage() *stage {
	return &stage{
		g:       g,
		entries: make(map[schema.Schema]*entry),
		names:   make(map[string]schema.Schema),
	}
}

func (st *stage) lookup(s schema.Schema) (*entry, bool) {
	if e, ok := st.entries[s]; ok {
		return e, true
	}
	e, ok := st.g.reg.entries[s]
	return e, ok
}

// commit appends the staged declarations to the file, records the staged
// types in the registry and imports the packages the declarations refer
// to. Nothing changes if a declaration name is taken.
func (st *stage) commit() error {
	if err := st.g.addDecls(st.decls...); err != nil {
		return err
	}
	for k, v := range st.entries {
		st.g.reg.entries[k] = v
	}
	for k, v := range st.names {
		st.g.reg.names[k] = v
	}
	for _, path := range imports(st.decls) {
		st.g.file.AddImport(path)
	}
	return nil
}

// claim reserves name for s. If name already belongs to an equal schema
// its entry is returned and nothing new must be declared.
func (st *stage) claim(name string, s schema.Schema, path string) (*entry, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %s at %q has no usable name", ErrUnsupportedSchemaNode, s.Name(), path)
	}
	owner, ok := st.names[name]
	if !ok {
		owner, ok = st.g.reg.names[name]
	}
	if !ok {
		if _, taken := st.g.file.Lookup(name); taken {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDeclaration, name)
		}
		st.names[name] = s
		return nil, nil
	}
	if !schema.Equal(owner, s) {
		return nil, fmt.Errorf("%w: %s declared for %s and %s", ErrDuplicateDeclaration, name, schema.String(owner), schema.String(s))
	}
	e, _ := st.lookup(owner)
	st.entries[s] = e
	return e, nil
}

func (st *stage) mapSchema(s schema.Schema, path string) (*entry, error) {
	if e, ok := st.lookup(s); ok {
		return e, nil
	}
	switch s := s.(type) {
	case *schema.Primitive:
		e := &entry{ref: Wire(s.Bits), zero: "0"}
		switch {
		case s.Bool:
			e.read = "r.ReadBool()"
		case s.Signed:
			e.read = "r.ReadInt(" + strconv.Itoa(s.Bits) + ")"
		default:
			e.read = "r.ReadUint(" + strconv.Itoa(s.Bits) + ")"
		}
		st.entries[s] = e
		return e, nil

	case *schema.Enum:
		name := Exported(s.TypeName)
		if e, err := st.claim(name, s, path); e != nil || err != nil {
			return e, err
		}
		e := &entry{ref: Named(name), read: "r.ReadOrdinal(" + strconv.Itoa(len(s.Variants)) + ")", zero: "0"}
		st.entries[s] = e
		st.decls = append(st.decls,
			&EnumDecl{Name: name, Doc: name + " is the ordinal of a " + s.TypeName + " variant.", Variants: s.Variants},
			st.units(name, s),
		)
		return e, nil

	case *schema.Surrogate:
		name := Exported(s.TypeName)
		if e, err := st.claim(name, s, path); e != nil || err != nil {
			return e, err
		}
		proxy, err := st.mapSchema(s.Proxy, join(path, "proxy"))
		if err != nil {
			return nil, err
		}
		e := &entry{ref: Named(name), read: proxy.read, zero: proxy.zero}
		st.entries[s] = e
		st.decls = append(st.decls, &AliasDecl{
			Name:   name,
			Doc:    name + " is encoded as " + proxy.ref.String() + ".",
			Target: proxy.ref,
		})
		return e, nil
	}
	return st.record(s, path)
}

// member is a record field and how to fill it.
type member struct {
	name    string
	comment string
	count   int // -1 for a single value
	read    string
	zero    string
	ref     TypeRef
}

func (st *stage) record(s schema.Schema, path string) (*entry, error) {
	name := Exported(s.Name())
	if e, err := st.claim(name, s, path); e != nil || err != nil {
		return e, err
	}
	// registered before the members so the staged order is dependencies
	// first while the entry is visible to equal nested schemas
	e := &entry{
		ref:  Named(name),
		read: deserializeName(name) + "(api, r)",
		zero: defaultName(name) + "()",
	}
	st.entries[s] = e

	var members []member
	wire := func(name, read string) member {
		return member{name: name, count: -1, read: read, zero: "0", ref: Wire(schema.SizeBits)}
	}
	nested := func(fieldName, elemPath string, es schema.Schema, count int) (member, error) {
		sub, err := st.mapSchema(es, elemPath)
		if err != nil {
			return member{}, err
		}
		ref := sub.ref
		if count >= 0 {
			ref = ArrayOf(count, sub.ref)
		}
		return member{name: fieldName, count: count, read: sub.read, zero: sub.zero, ref: ref}, nil
	}

	switch s := s.(type) {
	case *schema.FixedList:
		items, err := nested("Items", join(path, "[]"), s.Elem, s.Capacity)
		if err != nil {
			return nil, err
		}
		members = []member{wire("Size", "r.ReadSize("+strconv.Itoa(s.Capacity)+")"), items}

	case *schema.FixedMap:
		pair := schema.NewStruct(s.Name()+"Entry",
			schema.Field{Name: "key", Schema: s.Key},
			schema.Field{Name: "value", Schema: s.Value},
		)
		items, err := nested("Items", join(path, "[]"), pair, s.Capacity)
		if err != nil {
			return nil, err
		}
		members = []member{wire("Size", "r.ReadSize("+strconv.Itoa(s.Capacity)+")"), items}

	case *schema.FixedString:
		unit := s.Encoding.Unit()
		units := member{
			name:    "Units",
			comment: s.Encoding.String() + " code units",
			count:   s.Capacity,
			read:    "r.ReadUint(" + strconv.Itoa(unit.Bits) + ")",
			zero:    "0",
			ref:     ArrayOf(s.Capacity, Wire(unit.Bits)),
		}
		members = []member{wire("Length", "r.ReadSize("+strconv.Itoa(s.Capacity)+")"), units}

	case *schema.Struct:
		seen := make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			fieldName := Exported(f.Name)
			if fieldName == "" {
				return nil, fmt.Errorf("%w: field %q of %s has no usable name", ErrUnsupportedSchemaNode, f.Name, s.TypeName)
			}
			if other, ok := seen[fieldName]; ok {
				return nil, fmt.Errorf("%w: fields %q and %q of %s both map to %s", ErrUnsupportedSchemaNode, other, f.Name, s.TypeName, fieldName)
			}
			seen[fieldName] = f.Name
			m, err := nested(fieldName, join(path, f.Name), f.Schema, -1)
			if err != nil {
				return nil, err
			}
			m.comment = f.Name + " " + schema.String(f.Schema)
			members = append(members, m)
		}

	case *schema.Option:
		value, err := nested("Value", join(path, "?"), s.Inner, -1)
		if err != nil {
			return nil, err
		}
		present := member{name: "Present", count: -1, read: "r.ReadBool()", zero: "0", ref: Wire(1)}
		members = []member{present, value}

	default:
		return nil, fmt.Errorf("%w: %T at %q", ErrUnsupportedSchemaNode, s, path)
	}

	st.decls = append(st.decls, st.recordDecls(name, s, members)...)
	return e, nil
}

func (st *stage) recordDecls(name string, s schema.Schema, members []member) []Decl {
	decl := &StructDecl{Name: name, Doc: name + " is the circuit form of " + schema.String(s) + "."}
	var read, zero []string
	for _, m := range members {
		decl.Fields = append(decl.Fields, FieldDecl{Name: m.name, Type: m.ref, Comment: m.comment})
		read = append(read, assign("v."+m.name, m.count, m.read)...)
		zero = append(zero, assign("v."+m.name, m.count, m.zero)...)
	}
	return []Decl{
		decl,
		&FuncDecl{
			Name:    deserializeName(name),
			Doc:     deserializeName(name) + " reads a " + name + " from r.",
			Params:  []Param{{Name: "api", Type: Named("frontend.API")}, {Name: "r", Type: Named("*bfl.Reader")}},
			Results: []TypeRef{Named(name)},
			Body:    append(append([]string{"var v " + name}, read...), "return v"),
		},
		&FuncDecl{
			Name:    defaultName(name),
			Doc:     defaultName(name) + " returns the " + name + " encoded as all zeros.",
			Results: []TypeRef{Named(name)},
			Body:    append(append([]string{"var v " + name}, zero...), "return v"),
		},
		st.units(name, s),
	}
}

func (st *stage) units(name string, s schema.Schema) *ConstDecl {
	return &ConstDecl{
		Name:  unitsName(name),
		Doc:   unitsName(name) + " is the number of " + st.g.mode.String() + " units of a " + name + ".",
		Value: strconv.Itoa(s.Length(st.g.mode)),
	}
}

// assign returns the lines setting target, or every element of target
// when count is not negative, to expr.
func assign(target string, count int, expr string) []string {
	if count < 0 {
		return []string{target + " = " + expr}
	}
	return []string{
		"for i := range " + target + " {",
		"\t" + target + "[i] = " + expr,
		"}",
	}
}

func join(path, elem string) string {
	if path == "" {
		return elem
	}
	if elem == "[]" {
		return path + elem
	}
	return path + "." + elem
}
