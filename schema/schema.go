// Package schema describes the binary shape of values encoded with the
// fixed-length codec. A Schema is immutable once built and its length in
// both codec modes is known without looking at any value.
package schema

import (
	"fmt"
	"strings"
)

// Mode selects the codec granularity. In ByteMode every unit is a byte, in
// BitMode every unit is a single bit stored as 0 or 1.
type Mode uint8

const (
	ByteMode Mode = iota
	BitMode
)

func (m Mode) String() string {
	switch m {
	case ByteMode:
		return "byte"
	case BitMode:
		return "bit"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode returns the mode named s ("byte" or "bit").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "byte", "":
		return ByteMode, nil
	case "bit":
		return BitMode, nil
	default:
		return 0, fmt.Errorf("unknown codec mode %q", s)
	}
}

// Kind is the variant tag of a Schema.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindFixedList
	KindFixedMap
	KindFixedString
	KindStruct
	KindEnum
	KindOption
	KindSurrogate
)

var kindNames = [...]string{
	KindPrimitive:   "primitive",
	KindFixedList:   "list",
	KindFixedMap:    "map",
	KindFixedString: "string",
	KindStruct:      "struct",
	KindEnum:        "enum",
	KindOption:      "option",
	KindSurrogate:   "surrogate",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Schema is the static description of a value's binary layout.
type Schema interface {
	Kind() Kind
	// Name is a stable identifier, also used for generated type names.
	Name() string
	// Length returns the number of units any value of this schema
	// occupies in mode m.
	Length(m Mode) int
}

// SizeBits is the width of the unsigned size field of lists and maps, of
// the length field of strings and of enum ordinals.
const SizeBits = 32

// lengths caches the length of a node in both modes.
type lengths struct {
	cached bool
	units  [2]int
}

func (l *lengths) get(m Mode, compute func(Mode) int) int {
	if l.cached {
		return l.units[m]
	}
	return compute(m)
}

func (l *lengths) set(compute func(Mode) int) {
	l.units = [2]int{compute(ByteMode), compute(BitMode)}
	l.cached = true
}

// Primitive is a fixed width integer or a boolean.
type Primitive struct {
	Bits   int
	Signed bool
	Bool   bool
}

var (
	boolSchema = &Primitive{Bits: 1, Bool: true}
	intSchemas = map[int]*Primitive{
		8: {Bits: 8, Signed: true}, 16: {Bits: 16, Signed: true},
		32: {Bits: 32, Signed: true}, 64: {Bits: 64, Signed: true},
	}
	uintSchemas = map[int]*Primitive{
		8: {Bits: 8}, 16: {Bits: 16}, 32: {Bits: 32}, 64: {Bits: 64},
	}
)

// Bool returns the boolean primitive.
func Bool() *Primitive { return boolSchema }

// Int returns the signed integer primitive of the given width (8, 16, 32
// or 64 bits). It panics on any other width.
func Int(bits int) *Primitive {
	p, ok := intSchemas[bits]
	if !ok {
		panic(fmt.Sprintf("schema: invalid integer width %d", bits))
	}
	return p
}

// Uint returns the unsigned integer primitive of the given width.
func Uint(bits int) *Primitive {
	p, ok := uintSchemas[bits]
	if !ok {
		panic(fmt.Sprintf("schema: invalid integer width %d", bits))
	}
	return p
}

func (*Primitive) Kind() Kind { return KindPrimitive }

func (p *Primitive) Name() string {
	switch {
	case p.Bool:
		return "Bool"
	case p.Signed:
		return fmt.Sprintf("Int%d", p.Bits)
	default:
		return fmt.Sprintf("UInt%d", p.Bits)
	}
}

func (p *Primitive) Length(m Mode) int {
	if p.Bool {
		return 1
	}
	if m == BitMode {
		return p.Bits
	}
	return p.Bits / 8
}

// sizeField is the schema of every size, length and ordinal field.
func sizeField() *Primitive { return Uint(SizeBits) }

// FixedList holds up to Capacity elements. It is encoded as its logical
// size followed by exactly Capacity element slots.
type FixedList struct {
	Capacity int
	Elem     Schema
	lengths
}

// NewFixedList returns a list of at most capacity elements. It panics if
// capacity is negative or elem is nil.
func NewFixedList(capacity int, elem Schema) *FixedList {
	if capacity < 0 || elem == nil {
		panic(fmt.Sprintf("schema: invalid list (capacity %d, elem %v)", capacity, elem))
	}
	l := &FixedList{Capacity: capacity, Elem: elem}
	l.set(l.compute)
	return l
}

func (*FixedList) Kind() Kind { return KindFixedList }

func (l *FixedList) Name() string {
	return fmt.Sprintf("List%dOf%s", l.Capacity, l.Elem.Name())
}

func (l *FixedList) Length(m Mode) int { return l.get(m, l.compute) }

func (l *FixedList) compute(m Mode) int {
	return sizeField().Length(m) + l.Capacity*l.Elem.Length(m)
}

// FixedMap holds up to Capacity key/value pairs, laid out like a FixedList
// of pairs.
type FixedMap struct {
	Capacity int
	Key      Schema
	Value    Schema
	lengths
}

// NewFixedMap returns a map of at most capacity entries. It panics on a
// negative capacity or a nil key or value schema.
func NewFixedMap(capacity int, key, value Schema) *FixedMap {
	if capacity < 0 || key == nil || value == nil {
		panic(fmt.Sprintf("schema: invalid map (capacity %d)", capacity))
	}
	mp := &FixedMap{Capacity: capacity, Key: key, Value: value}
	mp.set(mp.compute)
	return mp
}

func (*FixedMap) Kind() Kind { return KindFixedMap }

func (mp *FixedMap) Name() string {
	return fmt.Sprintf("Map%dOf%sTo%s", mp.Capacity, mp.Key.Name(), mp.Value.Name())
}

func (mp *FixedMap) Length(m Mode) int { return mp.get(m, mp.compute) }

func (mp *FixedMap) compute(m Mode) int {
	return sizeField().Length(m) + mp.Capacity*(mp.Key.Length(m)+mp.Value.Length(m))
}

// Encoding is the code unit encoding of a FixedString.
type Encoding uint8

const (
	ASCII Encoding = iota
	UTF8
	UTF16
	UTF32
)

// ParseEncoding returns the encoding named s.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "ascii":
		return ASCII, nil
	case "utf8":
		return UTF8, nil
	case "utf16":
		return UTF16, nil
	case "utf32":
		return UTF32, nil
	default:
		return 0, fmt.Errorf("unknown string encoding %q", s)
	}
}

func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ascii"
	case UTF8:
		return "utf8"
	case UTF16:
		return "utf16"
	case UTF32:
		return "utf32"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// Unit returns the unsigned primitive holding one code unit.
func (e Encoding) Unit() *Primitive {
	switch e {
	case UTF16:
		return Uint(16)
	case UTF32:
		return Uint(32)
	default:
		return Uint(8)
	}
}

// FixedString holds up to Capacity code units.
type FixedString struct {
	Capacity int
	Encoding Encoding
	lengths
}

// NewFixedString returns a string of at most capacity code units.
func NewFixedString(capacity int, enc Encoding) *FixedString {
	if capacity < 0 || enc > UTF32 {
		panic(fmt.Sprintf("schema: invalid string (capacity %d, encoding %v)", capacity, enc))
	}
	s := &FixedString{Capacity: capacity, Encoding: enc}
	s.set(s.compute)
	return s
}

func (*FixedString) Kind() Kind { return KindFixedString }

func (s *FixedString) Name() string {
	return fmt.Sprintf("String%d%s", s.Capacity, strings.ToUpper(s.Encoding.String()[:1])+s.Encoding.String()[1:])
}

func (s *FixedString) Length(m Mode) int { return s.get(m, s.compute) }

func (s *FixedString) compute(m Mode) int {
	return sizeField().Length(m) + s.Capacity*s.Encoding.Unit().Length(m)
}

// Field is a named member of a Struct.
type Field struct {
	Name   string
	Schema Schema
}

// Struct is the concatenation of its fields in declaration order.
type Struct struct {
	TypeName string
	Fields   []Field
	lengths
}

// NewStruct returns a struct schema. It panics on an empty name, a nil
// field schema or duplicated field names.
func NewStruct(name string, fields ...Field) *Struct {
	if name == "" {
		panic("schema: struct without name")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" || f.Schema == nil || seen[f.Name] {
			panic(fmt.Sprintf("schema: invalid field %q in struct %s", f.Name, name))
		}
		seen[f.Name] = true
	}
	s := &Struct{TypeName: name, Fields: fields}
	s.set(s.compute)
	return s
}

func (*Struct) Kind() Kind { return KindStruct }

func (s *Struct) Name() string { return s.TypeName }

func (s *Struct) Length(m Mode) int { return s.get(m, s.compute) }

func (s *Struct) compute(m Mode) int {
	n := 0
	for _, f := range s.Fields {
		n += f.Schema.Length(m)
	}
	return n
}

// Field returns the field called name.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Enum is encoded as the ordinal of its variant.
type Enum struct {
	TypeName string
	Variants []string
}

// NewEnum returns an enum schema. It panics if there are no variants or if
// a variant is repeated.
func NewEnum(name string, variants ...string) *Enum {
	if name == "" || len(variants) == 0 {
		panic(fmt.Sprintf("schema: invalid enum %q", name))
	}
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if v == "" || seen[v] {
			panic(fmt.Sprintf("schema: invalid variant %q in enum %s", v, name))
		}
		seen[v] = true
	}
	return &Enum{TypeName: name, Variants: variants}
}

func (*Enum) Kind() Kind { return KindEnum }

func (e *Enum) Name() string { return e.TypeName }

func (*Enum) Length(m Mode) int { return sizeField().Length(m) }

// Ordinal returns the position of variant, or -1.
func (e *Enum) Ordinal(variant string) int {
	for i, v := range e.Variants {
		if v == variant {
			return i
		}
	}
	return -1
}

// Option is a presence flag followed by the full width of Inner.
type Option struct {
	Inner Schema
	lengths
}

// NewOption returns an optional inner value.
func NewOption(inner Schema) *Option {
	if inner == nil {
		panic("schema: option without inner schema")
	}
	o := &Option{Inner: inner}
	o.set(o.compute)
	return o
}

func (*Option) Kind() Kind { return KindOption }

func (o *Option) Name() string { return "Option" + o.Inner.Name() }

func (o *Option) Length(m Mode) int { return o.get(m, o.compute) }

func (o *Option) compute(m Mode) int { return Bool().Length(m) + o.Inner.Length(m) }

// Converter maps values of a type without a direct schema to and from the
// value model of its proxy schema.
type Converter interface {
	ToProxy(v any) (any, error)
	FromProxy(p any) (any, error)
}

// ConverterFuncs adapts a pair of functions to Converter.
type ConverterFuncs struct {
	To   func(v any) (any, error)
	From func(p any) (any, error)
}

func (c ConverterFuncs) ToProxy(v any) (any, error)   { return c.To(v) }
func (c ConverterFuncs) FromProxy(p any) (any, error) { return c.From(p) }

// Surrogate substitutes Proxy for a type that has no schema of its own. The
// wire format is the proxy's.
type Surrogate struct {
	TypeName  string
	Proxy     Schema
	Converter Converter
}

// NewSurrogate returns a surrogate schema. It panics if the proxy or the
// converter is missing.
func NewSurrogate(name string, proxy Schema, conv Converter) *Surrogate {
	if name == "" || proxy == nil || conv == nil {
		panic(fmt.Sprintf("schema: invalid surrogate %q", name))
	}
	return &Surrogate{TypeName: name, Proxy: proxy, Converter: conv}
}

func (*Surrogate) Kind() Kind { return KindSurrogate }

func (s *Surrogate) Name() string { return s.TypeName }

func (s *Surrogate) Length(m Mode) int { return s.Proxy.Length(m) }
