package schema

import (
	"fmt"
	"strings"
)

// WalkFunc is called for every node visited by Walk. The path uses dots for
// struct fields, "[]" for list elements, "key"/"value" for map entries,
// "?" for option contents and "proxy" for surrogate proxies.
type WalkFunc func(path string, s Schema) error

// Walk visits s and all its descendants depth first, parents before
// children. It stops at the first error returned by fn.
func Walk(s Schema, fn WalkFunc) error {
	return walk("", s, fn)
}

func walk(path string, s Schema, fn WalkFunc) error {
	if err := fn(path, s); err != nil {
		return err
	}
	for _, c := range children(s) {
		if err := walk(join(path, c.Name), c.Schema, fn); err != nil {
			return err
		}
	}
	return nil
}

func children(s Schema) []Field {
	switch s := s.(type) {
	case *FixedList:
		return []Field{{"[]", s.Elem}}
	case *FixedMap:
		return []Field{{"key", s.Key}, {"value", s.Value}}
	case *Struct:
		return s.Fields
	case *Option:
		return []Field{{"?", s.Inner}}
	case *Surrogate:
		return []Field{{"proxy", s.Proxy}}
	default:
		return nil
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

// String renders s compactly for logs and error messages. Named types
// (structs, enums and surrogates) are printed by name only.
func String(s Schema) string {
	switch s := s.(type) {
	case nil:
		return "<nil>"
	case *Primitive:
		return s.Name()
	case *FixedList:
		return fmt.Sprintf("List<%d, %s>", s.Capacity, String(s.Elem))
	case *FixedMap:
		return fmt.Sprintf("Map<%d, %s, %s>", s.Capacity, String(s.Key), String(s.Value))
	case *FixedString:
		return fmt.Sprintf("String<%d, %s>", s.Capacity, s.Encoding)
	case *Option:
		return fmt.Sprintf("Option<%s>", String(s.Inner))
	default:
		return s.Name()
	}
}

// Describe renders a struct with all its fields, one level deep.
func Describe(s Schema) string {
	st, ok := s.(*Struct)
	if !ok {
		return String(s)
	}
	parts := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		parts[i] = f.Name + ": " + String(f.Schema)
	}
	return fmt.Sprintf("%s{%s}", st.TypeName, strings.Join(parts, ", "))
}

// Equal reports whether a and b describe the same layout under the same
// names. Surrogates are equal when their names and proxies are.
func Equal(a, b Schema) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *Primitive:
		b := b.(*Primitive)
		return a.Bits == b.Bits && a.Signed == b.Signed && a.Bool == b.Bool
	case *FixedList:
		b := b.(*FixedList)
		return a.Capacity == b.Capacity && Equal(a.Elem, b.Elem)
	case *FixedMap:
		b := b.(*FixedMap)
		return a.Capacity == b.Capacity && Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case *FixedString:
		b := b.(*FixedString)
		return a.Capacity == b.Capacity && a.Encoding == b.Encoding
	case *Struct:
		b := b.(*Struct)
		if a.TypeName != b.TypeName || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Schema, b.Fields[i].Schema) {
				return false
			}
		}
		return true
	case *Enum:
		b := b.(*Enum)
		if a.TypeName != b.TypeName || len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if a.Variants[i] != b.Variants[i] {
				return false
			}
		}
		return true
	case *Option:
		return Equal(a.Inner, b.(*Option).Inner)
	case *Surrogate:
		b := b.(*Surrogate)
		return a.TypeName == b.TypeName && Equal(a.Proxy, b.Proxy)
	default:
		return false
	}
}
