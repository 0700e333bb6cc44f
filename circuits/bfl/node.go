package bfl

import (
	"github.com/consensys/gnark/frontend"
	"github.com/ing-bank/zkflow-sub006/schema"
)

// Node is the in-circuit value of a schema node. Only the members relevant
// to the node kind are set:
//
//	Primitive, Enum    Value
//	FixedList          Size, Items
//	FixedMap           Size, Items (each with "key" and "value" fields)
//	FixedString        Size, Items (code units)
//	Struct             Fields
//	Option             Present, Inner
//
// Surrogates are read as their proxy.
type Node struct {
	Value   frontend.Variable
	Size    frontend.Variable
	Present frontend.Variable
	Items   []Node
	Fields  map[string]Node
	Inner   *Node
}

// Field returns the named struct field.
func (n Node) Field(name string) Node {
	return n.Fields[name]
}

// Read consumes one value of s from r. It reads the same units, in the same
// order, as the generated Deserialize functions.
func Read(r *Reader, s schema.Schema) Node {
	switch s := s.(type) {
	case *schema.Primitive:
		switch {
		case s.Bool:
			return Node{Value: r.ReadBool()}
		case s.Signed:
			return Node{Value: r.ReadInt(s.Bits)}
		default:
			return Node{Value: r.ReadUint(s.Bits)}
		}
	case *schema.FixedList:
		n := Node{Size: r.ReadSize(s.Capacity), Items: make([]Node, s.Capacity)}
		for i := range n.Items {
			n.Items[i] = Read(r, s.Elem)
		}
		return n
	case *schema.FixedMap:
		n := Node{Size: r.ReadSize(s.Capacity), Items: make([]Node, s.Capacity)}
		for i := range n.Items {
			key := Read(r, s.Key)
			n.Items[i] = Node{Fields: map[string]Node{"key": key, "value": Read(r, s.Value)}}
		}
		return n
	case *schema.FixedString:
		n := Node{Size: r.ReadSize(s.Capacity), Items: make([]Node, s.Capacity)}
		unit := s.Encoding.Unit()
		for i := range n.Items {
			n.Items[i] = Node{Value: r.ReadUint(unit.Bits)}
		}
		return n
	case *schema.Struct:
		n := Node{Fields: make(map[string]Node, len(s.Fields))}
		for _, f := range s.Fields {
			n.Fields[f.Name] = Read(r, f.Schema)
		}
		return n
	case *schema.Enum:
		return Node{Value: r.ReadOrdinal(len(s.Variants))}
	case *schema.Option:
		present := r.ReadBool()
		inner := Read(r, s.Inner)
		return Node{Present: present, Inner: &inner}
	case *schema.Surrogate:
		return Read(r, s.Proxy)
	default:
		panic("bfl: unsupported schema " + schema.String(s))
	}
}
