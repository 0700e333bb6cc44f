// Package codec implements the fixed-length binary encoding of values
// described by a schema.Schema. An encoded value is a slice of units: bytes
// in schema.ByteMode, single bits stored as 0 or 1 in schema.BitMode. The
// number of units always equals the schema length, whatever the value.
//
// Values use the following Go representation:
//
//	Primitive    bool, or any Go integer on encode (exact sized type on decode)
//	FixedList    []any (any slice on encode)
//	FixedMap     []Entry
//	FixedString  string
//	Struct       map[string]any
//	Enum         variant name (an integer ordinal is accepted on encode)
//	Option       nil when absent, the inner value otherwise
//	Surrogate    whatever the surrogate converter accepts
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ing-bank/zkflow-sub006/schema"
)

// Entry is one key/value pair of a map value.
type Entry = schema.Entry

// Encode returns the units of v encoded with s in mode m. On error no
// output is returned.
func Encode(s schema.Schema, v any, m schema.Mode) ([]byte, error) {
	e := &encoder{mode: m, out: make([]byte, 0, s.Length(m))}
	if err := e.encode(s, v, ""); err != nil {
		return nil, err
	}
	return e.out, nil
}

// Decode decodes units holding exactly one value of s.
func Decode(s schema.Schema, units []byte, m schema.Mode) (any, error) {
	v, rest, err := DecodePrefix(s, units, m)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &Error{Err: fmt.Errorf("%w: %d units after %s", ErrTrailingInput, len(rest), schema.String(s))}
	}
	return v, nil
}

// DecodePrefix decodes one value of s from the start of units and returns
// the units that follow it.
func DecodePrefix(s schema.Schema, units []byte, m schema.Mode) (any, []byte, error) {
	d := &decoder{mode: m, in: units}
	v, err := d.decode(s, "")
	if err != nil {
		return nil, nil, err
	}
	return v, units[d.pos:], nil
}

func fail(path string, sentinel error, format string, args ...any) error {
	return &Error{Path: path, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func field(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

type encoder struct {
	mode schema.Mode
	out  []byte
}

func (e *encoder) writeUint(v uint64, bits int) {
	if e.mode == schema.BitMode {
		for i := bits - 1; i >= 0; i-- {
			e.out = append(e.out, byte(v>>uint(i))&1)
		}
		return
	}
	for i := bits/8 - 1; i >= 0; i-- {
		e.out = append(e.out, byte(v>>(8*uint(i))))
	}
}

func (e *encoder) writeBool(b bool) {
	if b {
		e.out = append(e.out, 1)
	} else {
		e.out = append(e.out, 0)
	}
}

func (e *encoder) zeros(n int) {
	e.out = append(e.out, make([]byte, n)...)
}

func (e *encoder) encode(s schema.Schema, v any, path string) error {
	switch s := s.(type) {
	case *schema.Primitive:
		if s.Bool {
			b, ok := v.(bool)
			if !ok {
				return fail(path, ErrTypeMismatch, "expected bool, got %T", v)
			}
			e.writeBool(b)
			return nil
		}
		u, err := integerBits(s, v, path)
		if err != nil {
			return err
		}
		e.writeUint(u, s.Bits)
		return nil

	case *schema.FixedList:
		elems, err := asList(v, path)
		if err != nil {
			return err
		}
		slots, err := Slots(s, elems)
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		e.writeUint(uint64(len(elems)), schema.SizeBits)
		for i, slot := range slots {
			if slot.Kind == Filler {
				e.zeros(s.Elem.Length(e.mode))
				continue
			}
			if err := e.encode(s.Elem, slot.Value, index(path, i)); err != nil {
				return err
			}
		}
		return nil

	case *schema.FixedMap:
		entries, ok := v.([]Entry)
		if !ok {
			return fail(path, ErrTypeMismatch, "expected []codec.Entry, got %T", v)
		}
		if len(entries) > s.Capacity {
			return fail(path, ErrCapacityExceeded, "%d entries, capacity %d", len(entries), s.Capacity)
		}
		e.writeUint(uint64(len(entries)), schema.SizeBits)
		keys := make(map[string]bool, len(entries))
		for i, entry := range entries {
			start := len(e.out)
			if err := e.encode(s.Key, entry.Key, field(index(path, i), "key")); err != nil {
				return err
			}
			k := string(e.out[start:])
			if keys[k] {
				return fail(index(path, i), ErrTypeMismatch, "duplicate key %v", entry.Key)
			}
			keys[k] = true
			if err := e.encode(s.Value, entry.Value, field(index(path, i), "value")); err != nil {
				return err
			}
		}
		e.zeros((s.Capacity - len(entries)) * (s.Key.Length(e.mode) + s.Value.Length(e.mode)))
		return nil

	case *schema.FixedString:
		str, ok := v.(string)
		if !ok {
			return fail(path, ErrTypeMismatch, "expected string, got %T", v)
		}
		units, err := codeUnits(str, s.Encoding)
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		if len(units) > s.Capacity {
			return fail(path, ErrCapacityExceeded, "%d %s code units, capacity %d", len(units), s.Encoding, s.Capacity)
		}
		e.writeUint(uint64(len(units)), schema.SizeBits)
		unit := s.Encoding.Unit()
		for _, u := range units {
			e.writeUint(u, unit.Bits)
		}
		e.zeros((s.Capacity - len(units)) * unit.Length(e.mode))
		return nil

	case *schema.Struct:
		fields, ok := v.(map[string]any)
		if !ok {
			return fail(path, ErrTypeMismatch, "expected map[string]any for %s, got %T", s.TypeName, v)
		}
		for name := range fields {
			if _, ok := s.Field(name); !ok {
				return fail(field(path, name), ErrTypeMismatch, "unknown field of %s", s.TypeName)
			}
		}
		for _, f := range s.Fields {
			fv, ok := fields[f.Name]
			if !ok {
				return fail(field(path, f.Name), ErrTypeMismatch, "missing field of %s", s.TypeName)
			}
			if err := e.encode(f.Schema, fv, field(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case *schema.Enum:
		ordinal, err := enumOrdinal(s, v, path)
		if err != nil {
			return err
		}
		e.writeUint(uint64(ordinal), schema.SizeBits)
		return nil

	case *schema.Option:
		if v == nil {
			e.writeBool(false)
			e.zeros(s.Inner.Length(e.mode))
			return nil
		}
		e.writeBool(true)
		return e.encode(s.Inner, v, path)

	case *schema.Surrogate:
		p, err := s.Converter.ToProxy(v)
		if err != nil {
			return &Error{Path: path, Err: fmt.Errorf("%w: %s: %w", ErrTypeMismatch, s.TypeName, err)}
		}
		return e.encode(s.Proxy, p, path)

	default:
		return fail(path, ErrTypeMismatch, "unsupported schema %T", s)
	}
}

func asList(v any, path string) ([]any, error) {
	if l, ok := v.([]any); ok {
		return l, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fail(path, ErrTypeMismatch, "expected list, got %T", v)
	}
	l := make([]any, rv.Len())
	for i := range l {
		l[i] = rv.Index(i).Interface()
	}
	return l, nil
}

func enumOrdinal(s *schema.Enum, v any, path string) (int, error) {
	if name, ok := v.(string); ok {
		o := s.Ordinal(name)
		if o < 0 {
			return 0, fail(path, ErrTypeMismatch, "%q is not a variant of %s", name, s.TypeName)
		}
		return o, nil
	}
	u, err := integerBits(schema.Uint(schema.SizeBits), v, path)
	if err != nil {
		return 0, err
	}
	if u >= uint64(len(s.Variants)) {
		return 0, fail(path, ErrTypeMismatch, "ordinal %d out of range for %s", u, s.TypeName)
	}
	return int(u), nil
}

// integerBits returns the two's complement representation of v on p.Bits
// bits, checking that v fits p.
func integerBits(p *schema.Primitive, v any, path string) (uint64, error) {
	switch x := v.(type) {
	case int:
		return signedBits(p, int64(x), path)
	case int8:
		return signedBits(p, int64(x), path)
	case int16:
		return signedBits(p, int64(x), path)
	case int32:
		return signedBits(p, int64(x), path)
	case int64:
		return signedBits(p, x, path)
	case uint:
		return unsignedBits(p, uint64(x), path)
	case uint8:
		return unsignedBits(p, uint64(x), path)
	case uint16:
		return unsignedBits(p, uint64(x), path)
	case uint32:
		return unsignedBits(p, uint64(x), path)
	case uint64:
		return unsignedBits(p, x, path)
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return signedBits(p, i, path)
		}
		if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return unsignedBits(p, u, path)
		}
		return 0, fail(path, ErrUnsupportedDirectEncoding, "%s is not an integer", x)
	case float32, float64, complex64, complex128, string:
		return 0, fail(path, ErrUnsupportedDirectEncoding, "%T as %s", v, p.Name())
	default:
		return 0, fail(path, ErrTypeMismatch, "expected integer for %s, got %T", p.Name(), v)
	}
}

func signedBits(p *schema.Primitive, x int64, path string) (uint64, error) {
	if p.Signed {
		lo, hi := int64(-1)<<uint(p.Bits-1), int64(mask(p.Bits-1))
		if x < lo || x > hi {
			return 0, fail(path, ErrTypeMismatch, "%d out of range for %s", x, p.Name())
		}
		return uint64(x) & mask(p.Bits), nil
	}
	if x < 0 {
		return 0, fail(path, ErrTypeMismatch, "%d out of range for %s", x, p.Name())
	}
	return unsignedBits(p, uint64(x), path)
}

func unsignedBits(p *schema.Primitive, x uint64, path string) (uint64, error) {
	limit := mask(p.Bits)
	if p.Signed {
		limit = mask(p.Bits - 1)
	}
	if x > limit {
		return 0, fail(path, ErrTypeMismatch, "%d out of range for %s", x, p.Name())
	}
	return x, nil
}

func codeUnits(s string, enc schema.Encoding) ([]uint64, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8 string", ErrTypeMismatch)
	}
	var units []uint64
	switch enc {
	case schema.ASCII:
		for i := range len(s) {
			if s[i] >= utf8.RuneSelf {
				return nil, fmt.Errorf("%w: non ASCII character in %q", ErrTypeMismatch, s)
			}
			units = append(units, uint64(s[i]))
		}
	case schema.UTF8:
		for i := range len(s) {
			units = append(units, uint64(s[i]))
		}
	case schema.UTF16:
		for _, u := range utf16.Encode([]rune(s)) {
			units = append(units, uint64(u))
		}
	case schema.UTF32:
		for _, r := range s {
			units = append(units, uint64(r))
		}
	}
	return units, nil
}

type decoder struct {
	mode schema.Mode
	in   []byte
	pos  int
}

func (d *decoder) take(n int, path string) ([]byte, error) {
	if d.pos+n > len(d.in) {
		return nil, fail(path, ErrTruncatedInput, "need %d units at offset %d, have %d", n, d.pos, len(d.in)-d.pos)
	}
	b := d.in[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readUint(bits int, path string) (uint64, error) {
	var v uint64
	if d.mode == schema.BitMode {
		units, err := d.take(bits, path)
		if err != nil {
			return 0, err
		}
		for _, u := range units {
			if u > 1 {
				return 0, fail(path, ErrMalformedDiscriminant, "bit unit holds %d", u)
			}
			v = v<<1 | uint64(u)
		}
		return v, nil
	}
	units, err := d.take(bits/8, path)
	if err != nil {
		return 0, err
	}
	for _, u := range units {
		v = v<<8 | uint64(u)
	}
	return v, nil
}

func (d *decoder) readBool(path string) (bool, error) {
	u, err := d.take(1, path)
	if err != nil {
		return false, err
	}
	switch u[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fail(path, ErrMalformedDiscriminant, "flag holds %d", u[0])
	}
}

// padding consumes the n units filling unused capacity or an absent option,
// which must all be zero.
func (d *decoder) padding(n int, path string) error {
	start := d.pos
	units, err := d.take(n, path)
	if err != nil {
		return err
	}
	for i, u := range units {
		if u != 0 {
			return fail(path, ErrNonZeroPadding, "unit %d holds %d", start+i, u)
		}
	}
	return nil
}

func (d *decoder) readSize(capacity int, path string) (int, error) {
	size, err := d.readUint(schema.SizeBits, path)
	if err != nil {
		return 0, err
	}
	if size > uint64(capacity) {
		return 0, fail(path, ErrMalformedDiscriminant, "size %d above capacity %d", size, capacity)
	}
	return int(size), nil
}

func (d *decoder) decode(s schema.Schema, path string) (any, error) {
	switch s := s.(type) {
	case *schema.Primitive:
		if s.Bool {
			return d.readBool(path)
		}
		u, err := d.readUint(s.Bits, path)
		if err != nil {
			return nil, err
		}
		return typedInteger(s, u), nil

	case *schema.FixedList:
		size, err := d.readSize(s.Capacity, path)
		if err != nil {
			return nil, err
		}
		items := make([]any, size)
		for i := range items {
			if items[i], err = d.decode(s.Elem, index(path, i)); err != nil {
				return nil, err
			}
		}
		return items, d.padding((s.Capacity-size)*s.Elem.Length(d.mode), path)

	case *schema.FixedMap:
		size, err := d.readSize(s.Capacity, path)
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, size)
		for i := range entries {
			if entries[i].Key, err = d.decode(s.Key, field(index(path, i), "key")); err != nil {
				return nil, err
			}
			if entries[i].Value, err = d.decode(s.Value, field(index(path, i), "value")); err != nil {
				return nil, err
			}
		}
		return entries, d.padding((s.Capacity-size)*(s.Key.Length(d.mode)+s.Value.Length(d.mode)), path)

	case *schema.FixedString:
		size, err := d.readSize(s.Capacity, path)
		if err != nil {
			return nil, err
		}
		unit := s.Encoding.Unit()
		units := make([]uint64, size)
		for i := range units {
			if units[i], err = d.readUint(unit.Bits, path); err != nil {
				return nil, err
			}
		}
		str, err := decodeString(units, s.Encoding)
		if err != nil {
			return nil, &Error{Path: path, Err: err}
		}
		return str, d.padding((s.Capacity-size)*unit.Length(d.mode), path)

	case *schema.Struct:
		fields := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			v, err := d.decode(f.Schema, field(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
		}
		return fields, nil

	case *schema.Enum:
		o, err := d.readUint(schema.SizeBits, path)
		if err != nil {
			return nil, err
		}
		if o >= uint64(len(s.Variants)) {
			return nil, fail(path, ErrMalformedDiscriminant, "ordinal %d out of range for %s", o, s.TypeName)
		}
		return s.Variants[o], nil

	case *schema.Option:
		present, err := d.readBool(path)
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, d.padding(s.Inner.Length(d.mode), path)
		}
		return d.decode(s.Inner, path)

	case *schema.Surrogate:
		p, err := d.decode(s.Proxy, path)
		if err != nil {
			return nil, err
		}
		v, err := s.Converter.FromProxy(p)
		if err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("%w: %s: %w", ErrMalformedDiscriminant, s.TypeName, err)}
		}
		return v, nil

	default:
		return nil, fail(path, ErrTypeMismatch, "unsupported schema %T", s)
	}
}

func typedInteger(p *schema.Primitive, u uint64) any {
	if p.Signed {
		shift := uint(64 - p.Bits)
		x := int64(u<<shift) >> shift
		switch p.Bits {
		case 8:
			return int8(x)
		case 16:
			return int16(x)
		case 32:
			return int32(x)
		default:
			return x
		}
	}
	switch p.Bits {
	case 8:
		return uint8(u)
	case 16:
		return uint16(u)
	case 32:
		return uint32(u)
	default:
		return u
	}
}

func decodeString(units []uint64, enc schema.Encoding) (string, error) {
	switch enc {
	case schema.ASCII, schema.UTF8:
		b := make([]byte, len(units))
		for i, u := range units {
			if enc == schema.ASCII && u >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: non ASCII code unit %d", ErrMalformedDiscriminant, u)
			}
			b[i] = byte(u)
		}
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid UTF-8 code units", ErrMalformedDiscriminant)
		}
		return string(b), nil
	case schema.UTF16:
		u16 := make([]uint16, len(units))
		for i, u := range units {
			u16[i] = uint16(u)
		}
		runes := utf16.Decode(u16)
		if !slices.Equal(utf16.Encode(runes), u16) {
			return "", fmt.Errorf("%w: unpaired UTF-16 surrogate", ErrMalformedDiscriminant)
		}
		return string(runes), nil
	default:
		runes := make([]rune, len(units))
		for i, u := range units {
			if u > utf8.MaxRune || !utf8.ValidRune(rune(u)) {
				return "", fmt.Errorf("%w: invalid code point %d", ErrMalformedDiscriminant, u)
			}
			runes[i] = rune(u)
		}
		return string(runes), nil
	}
}
