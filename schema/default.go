package schema

// Entry is one key/value pair of a FixedMap value. Maps are represented as
// ordered entry slices so that their encoding is deterministic.
type Entry struct {
	Key   any
	Value any
}

// Default returns the value every unused slot of s holds. Its encoding is
// all zero units in both modes.
func Default(s Schema) any {
	switch s := s.(type) {
	case *Primitive:
		return zeroPrimitive(s)
	case *FixedList:
		return []any{}
	case *FixedMap:
		return []Entry{}
	case *FixedString:
		return ""
	case *Struct:
		v := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			v[f.Name] = Default(f.Schema)
		}
		return v
	case *Enum:
		return s.Variants[0]
	case *Option:
		return nil
	case *Surrogate:
		v, err := s.Converter.FromProxy(Default(s.Proxy))
		if err != nil {
			return nil
		}
		return v
	default:
		return nil
	}
}

func zeroPrimitive(p *Primitive) any {
	if p.Bool {
		return false
	}
	switch {
	case p.Signed && p.Bits == 8:
		return int8(0)
	case p.Signed && p.Bits == 16:
		return int16(0)
	case p.Signed && p.Bits == 32:
		return int32(0)
	case p.Signed:
		return int64(0)
	case p.Bits == 8:
		return uint8(0)
	case p.Bits == 16:
		return uint16(0)
	case p.Bits == 32:
		return uint32(0)
	default:
		return uint64(0)
	}
}
