package circuitgen

import (
	"fmt"
	"strconv"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/schema"
	"github.com/ing-bank/zkflow-sub006/witness"
)

var stateRecords = map[witness.Group]string{
	witness.Outputs:                  "OutputStates",
	witness.SerializedInputUTXOs:     "InputUTXOStates",
	witness.SerializedReferenceUTXOs: "ReferenceUTXOStates",
}

var (
	componentsParam = Param{Name: "components", Type: SliceOf(SliceOf(Named(Variable)))}
	apiParam        = Param{Name: "api", Type: Named("frontend.API")}
	saltParam       = Param{Name: "salt", Type: SliceOf(Named(Variable))}
)

// Groups emits the functions reading and hashing the witness groups of l:
// Deserialize<Group> for every present group except metadata groups, and
// Compute<Group>LeafHashes for the leaf hashed ones, along with every
// component type they need. Nothing is added on error.
func (g *Generator) Groups(l *witness.Layout) error {
	if l.Mode != g.mode {
		return fmt.Errorf("layout %s uses %s units, generator reads %s units", l.Name, l.Mode, g.mode)
	}
	if err := l.Validate(); err != nil {
		return err
	}
	schemas := l.Schemas()
	for _, s := range schemas {
		if err := schema.Walk(s, supported); err != nil {
			return fmt.Errorf("layout %s: %w", l.Name, err)
		}
	}

	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()
	st := g.newStage()
	for _, s := range schemas {
		if _, err := st.mapSchema(s, ""); err != nil {
			return fmt.Errorf("layout %s: %w", l.Name, err)
		}
	}
	types := len(st.decls)
	groups := append(witness.ComponentGroups(), witness.SerializedInputUTXOs, witness.SerializedReferenceUTXOs)
	for _, grp := range groups {
		n := l.Count(grp)
		if n == 0 {
			continue
		}
		switch grp.Kind() {
		case witness.KindStandard:
			e, _ := st.lookup(l.Group(grp).Schema)
			st.decls = append(st.decls, g.deserializeGroup(grp, n, e))
		default:
			record, fn, err := g.deserializeStates(st, grp, l.Slots(grp))
			if err != nil {
				return err
			}
			st.decls = append(st.decls, record, fn)
		}
		if grp.Hashed() {
			st.decls = append(st.decls, leafHashes(grp, n))
		}
	}
	n := len(st.decls)
	if err := st.commit(); err != nil {
		return err
	}
	if n > 0 {
		log.Debugw("generated witness groups", "layout", l.Name, "types", types, "declarations", n)
	}
	return nil
}

func (g *Generator) modeExpr() string {
	if g.mode == schema.BitMode {
		return "schema.BitMode"
	}
	return "schema.ByteMode"
}

func (g *Generator) reader(component string) string {
	return "bfl.NewReader(api, " + component + ", " + g.modeExpr() + ")"
}

func (g *Generator) deserializeGroup(grp witness.Group, n int, e *entry) *FuncDecl {
	out := ArrayOf(n, e.ref)
	return &FuncDecl{
		Name:    "Deserialize" + grp.String(),
		Doc:     "Deserialize" + grp.String() + " reads the " + strconv.Itoa(n) + " " + grp.String() + " components.",
		Params:  []Param{apiParam, componentsParam},
		Results: []TypeRef{out},
		Body: []string{
			"var out " + out.String(),
			"for i := range out {",
			"\tr := " + g.reader("components[i]"),
			"\tout[i] = " + e.read,
			"}",
			"return out",
		},
	}
}

func (g *Generator) deserializeStates(st *stage, grp witness.Group, slots []witness.Slot) (*StructDecl, *FuncDecl, error) {
	name := stateRecords[grp]
	record := &StructDecl{Name: name, Doc: name + " holds the " + grp.String() + " states in witness order."}
	body := []string{"var out " + name}
	for i, slot := range slots {
		e, ok := st.lookup(slot.Schema)
		if !ok {
			return nil, nil, fmt.Errorf("%w: no type generated for %s", ErrUnsupportedSchemaNode, slot.Schema.Name())
		}
		field := Exported(slot.StateType) + strconv.Itoa(i)
		record.Fields = append(record.Fields, FieldDecl{Name: field, Type: e.ref, Comment: slot.StateType})
		body = append(body,
			"{",
			"\tr := "+g.reader("components["+strconv.Itoa(i)+"]"),
			"\tout."+field+" = "+e.read,
			"}",
		)
	}
	fn := &FuncDecl{
		Name:    "Deserialize" + grp.String(),
		Doc:     "Deserialize" + grp.String() + " reads the " + grp.String() + " states.",
		Params:  []Param{apiParam, componentsParam},
		Results: []TypeRef{Named(name)},
		Body:    append(body, "return out"),
	}
	return record, fn, nil
}

func leafHashes(grp witness.Group, n int) *FuncDecl {
	out := ArrayOf(n, Named(Variable))
	name := "Compute" + grp.String() + "LeafHashes"
	return &FuncDecl{
		Name:    name,
		Doc:     name + " returns the nonce salted leaf hash of each " + grp.String() + " component.",
		Params:  []Param{apiParam, saltParam, componentsParam},
		Results: []TypeRef{out, Named("error")},
		Body: []string{
			"var out " + out.String(),
			"for i := range out {",
			"\tnonce, err := circuits.Nonce(api, salt, " + strconv.Itoa(int(grp)) + ", i)",
			"\tif err != nil {",
			"\t\treturn out, err",
			"\t}",
			"\tleaf, err := circuits.LeafHash(api, nonce.Bytes, components[i])",
			"\tif err != nil {",
			"\t\treturn out, err",
			"\t}",
			"\tout[i] = leaf.Elem",
			"}",
			"return out, nil",
		},
	}
}
