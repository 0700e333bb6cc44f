package schema

import (
	"cmp"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TypeDescriptor is the structural description of a type as produced by an
// external reflection layer. Top level descriptors carry a Name and can be
// referenced from other descriptors with {kind: ref, ref: Name}.
type TypeDescriptor struct {
	Name           string            `yaml:"name,omitempty" json:"name,omitempty"`
	Kind           string            `yaml:"kind,omitempty" json:"kind,omitempty"`
	Capacity       *int              `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Encoding       string            `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Elem           *TypeDescriptor   `yaml:"elem,omitempty" json:"elem,omitempty"`
	Key            *TypeDescriptor   `yaml:"key,omitempty" json:"key,omitempty"`
	Value          *TypeDescriptor   `yaml:"value,omitempty" json:"value,omitempty"`
	Inner          *TypeDescriptor   `yaml:"inner,omitempty" json:"inner,omitempty"`
	Fields         []FieldDescriptor `yaml:"fields,omitempty" json:"fields,omitempty"`
	Variants       []string          `yaml:"variants,omitempty" json:"variants,omitempty"`
	Ref            string            `yaml:"ref,omitempty" json:"ref,omitempty"`
	Proxy          *TypeDescriptor   `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	Converter      string            `yaml:"converter,omitempty" json:"converter,omitempty"`
	IntegerDigits  *int              `yaml:"integerDigits,omitempty" json:"integerDigits,omitempty"`
	FractionDigits *int              `yaml:"fractionDigits,omitempty" json:"fractionDigits,omitempty"`
}

// FieldDescriptor is one ordered member of a struct descriptor.
type FieldDescriptor struct {
	Name string         `yaml:"name" json:"name"`
	Type TypeDescriptor `yaml:"type" json:"type"`
}

// Descriptors is the YAML document holding a set of named types.
type Descriptors struct {
	Types []TypeDescriptor `yaml:"types" json:"types"`
}

// ParseDescriptors decodes a YAML (or JSON) descriptor document.
func ParseDescriptors(data []byte) ([]TypeDescriptor, error) {
	var d Descriptors
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return d.Types, nil
}

// Resolver turns descriptors into schemas. Named types resolve to the same
// Schema pointer every time, through the resolver's cache. It is safe for
// concurrent use once all types and converters are registered.
type Resolver struct {
	mu         sync.RWMutex
	types      map[string]*TypeDescriptor
	converters map[string]Converter
	cache      *Cache[Schema]
}

// NewResolver returns a resolver storing its results in cache. A new cache
// is created if cache is nil.
func NewResolver(cache *Cache[Schema]) *Resolver {
	if cache == nil {
		cache = NewCache[Schema]()
	}
	return &Resolver{
		types:      make(map[string]*TypeDescriptor),
		converters: make(map[string]Converter),
		cache:      cache,
	}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache[Schema] { return r.cache }

// Register adds named type descriptors. Names must be unique.
func (r *Resolver) Register(descs ...TypeDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range descs {
		d := descs[i]
		if d.Name == "" {
			return fmt.Errorf("%w: top level type without name", ErrInvalidDescriptor)
		}
		if _, ok := r.types[d.Name]; ok {
			return fmt.Errorf("%w: type %s registered twice", ErrInvalidDescriptor, d.Name)
		}
		r.types[d.Name] = &d
	}
	return nil
}

// RegisterConverter makes conv available to surrogate descriptors naming it.
func (r *Resolver) RegisterConverter(name string, conv Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[name] = conv
}

// Names returns the registered type names in lexical order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the schema of the named type.
func (r *Resolver) Resolve(name string) (Schema, error) {
	if err := r.checkCycles(name, nil); err != nil {
		return nil, err
	}
	return r.resolveNamed(name)
}

// ResolveDescriptor resolves an anonymous descriptor, which may refer to
// registered types.
func (r *Resolver) ResolveDescriptor(d *TypeDescriptor) (Schema, error) {
	for _, ref := range refs(d) {
		if err := r.checkCycles(ref, nil); err != nil {
			return nil, err
		}
	}
	s, err := r.resolve(d, "")
	if err != nil {
		return nil, resolveError(d.Name, err)
	}
	return s, nil
}

// checkCycles walks the reference graph from name. It runs before anything
// is computed so that the cache never sees a recursive computation.
func (r *Resolver) checkCycles(name string, stack []string) error {
	for _, s := range stack {
		if s == name {
			return &ResolveError{
				Type: stack[0],
				Err:  fmt.Errorf("%w: %s", ErrUnsupportedRecursiveType, strings.Join(append(stack, name), " -> ")),
			}
		}
	}
	d, ok := r.descriptor(name)
	if !ok {
		if len(stack) == 0 {
			return &ResolveError{Type: name, Err: ErrUnknownType}
		}
		return &ResolveError{Type: stack[0], Err: fmt.Errorf("%w: %s", ErrUnknownType, name)}
	}
	for _, ref := range refs(d) {
		if err := r.checkCycles(ref, append(stack, name)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) descriptor(name string) (*TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

func (r *Resolver) converter(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[name]
	return c, ok
}

// refs returns the names referenced by d and its anonymous children.
func refs(d *TypeDescriptor) []string {
	if d == nil {
		return nil
	}
	var out []string
	if d.Ref != "" {
		out = append(out, d.Ref)
	}
	for _, c := range []*TypeDescriptor{d.Elem, d.Key, d.Value, d.Inner, d.Proxy} {
		out = append(out, refs(c)...)
	}
	for i := range d.Fields {
		out = append(out, refs(&d.Fields[i].Type)...)
	}
	return out
}

func (r *Resolver) resolveNamed(name string) (Schema, error) {
	return r.cache.GetOrCompute("type:"+name, func() (Schema, error) {
		d, ok := r.descriptor(name)
		if !ok {
			return nil, &ResolveError{Type: name, Err: ErrUnknownType}
		}
		s, err := r.resolve(d, "")
		if err != nil {
			return nil, resolveError(name, err)
		}
		return s, nil
	})
}

// resolveError attaches the type name to err unless a nested named type
// already did.
func resolveError(name string, err error) error {
	var re *ResolveError
	if errors.As(err, &re) {
		return err
	}
	var pe *pathError
	if errors.As(err, &pe) {
		return &ResolveError{Type: name, Path: pe.path, Err: pe.err}
	}
	return &ResolveError{Type: name, Err: err}
}

// pathError locates an error inside the descriptor being resolved.
type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return e.path + ": " + e.err.Error() }
func (e *pathError) Unwrap() error { return e.err }

func fail(path string, err error) error {
	return &pathError{path: path, err: err}
}

func (r *Resolver) resolve(d *TypeDescriptor, path string) (Schema, error) {
	kind := strings.ToLower(d.Kind)
	if kind == "" && d.Ref != "" {
		kind = "ref"
	}
	switch kind {
	case "bool":
		return Bool(), nil
	case "int8", "int16", "int32", "int64":
		bits, _ := strconv.Atoi(kind[3:])
		return Int(bits), nil
	case "uint8", "uint16", "uint32", "uint64":
		bits, _ := strconv.Atoi(kind[4:])
		return Uint(bits), nil
	case "list":
		if d.Capacity == nil {
			return nil, fail(path, ErrMissingCapacityAnnotation)
		}
		if d.Elem == nil {
			return nil, fail(path, fmt.Errorf("%w: list without elem", ErrInvalidDescriptor))
		}
		elem, err := r.resolve(d.Elem, join(path, "[]"))
		if err != nil {
			return nil, err
		}
		if *d.Capacity < 0 {
			return nil, fail(path, fmt.Errorf("%w: negative capacity", ErrInvalidDescriptor))
		}
		return NewFixedList(*d.Capacity, elem), nil
	case "map":
		if d.Capacity == nil {
			return nil, fail(path, ErrMissingCapacityAnnotation)
		}
		if d.Key == nil || d.Value == nil || *d.Capacity < 0 {
			return nil, fail(path, fmt.Errorf("%w: map needs key, value and a non negative capacity", ErrInvalidDescriptor))
		}
		key, err := r.resolve(d.Key, join(path, "key"))
		if err != nil {
			return nil, err
		}
		value, err := r.resolve(d.Value, join(path, "value"))
		if err != nil {
			return nil, err
		}
		return NewFixedMap(*d.Capacity, key, value), nil
	case "string":
		if d.Capacity == nil {
			return nil, fail(path, ErrMissingCapacityAnnotation)
		}
		enc, err := ParseEncoding(cmp.Or(d.Encoding, "utf8"))
		if err != nil || *d.Capacity < 0 {
			return nil, fail(path, fmt.Errorf("%w: string encoding %q capacity %d", ErrInvalidDescriptor, d.Encoding, *d.Capacity))
		}
		return NewFixedString(*d.Capacity, enc), nil
	case "struct":
		if d.Name == "" {
			return nil, fail(path, fmt.Errorf("%w: struct without name", ErrInvalidDescriptor))
		}
		fields := make([]Field, len(d.Fields))
		seen := make(map[string]bool, len(d.Fields))
		for i := range d.Fields {
			f := &d.Fields[i]
			if f.Name == "" || seen[f.Name] {
				return nil, fail(path, fmt.Errorf("%w: field %q", ErrInvalidDescriptor, f.Name))
			}
			seen[f.Name] = true
			s, err := r.resolve(&f.Type, join(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Schema: s}
		}
		return NewStruct(d.Name, fields...), nil
	case "enum":
		if d.Name == "" || len(d.Variants) == 0 {
			return nil, fail(path, fmt.Errorf("%w: enum needs a name and variants", ErrInvalidDescriptor))
		}
		seen := make(map[string]bool, len(d.Variants))
		for _, v := range d.Variants {
			if v == "" || seen[v] {
				return nil, fail(path, fmt.Errorf("%w: variant %q", ErrInvalidDescriptor, v))
			}
			seen[v] = true
		}
		return NewEnum(d.Name, d.Variants...), nil
	case "option":
		if d.Inner == nil {
			return nil, fail(path, fmt.Errorf("%w: option without inner", ErrInvalidDescriptor))
		}
		inner, err := r.resolve(d.Inner, join(path, "?"))
		if err != nil {
			return nil, err
		}
		return NewOption(inner), nil
	case "ref":
		return r.resolveNamed(d.Ref)
	case "float32", "float64":
		bits, _ := strconv.Atoi(kind[5:])
		intDigits, fracDigits := Float32IntegerDigits, Float32FractionDigits
		if bits == 64 {
			intDigits, fracDigits = Float64IntegerDigits, Float64FractionDigits
		}
		if d.IntegerDigits != nil {
			intDigits = *d.IntegerDigits
		}
		if d.FractionDigits != nil {
			fracDigits = *d.FractionDigits
		}
		if intDigits < 0 || fracDigits < 0 {
			return nil, fail(path, fmt.Errorf("%w: negative digit capacity", ErrInvalidDescriptor))
		}
		return r.builtin(fmt.Sprintf("float%d:%d:%d", bits, intDigits, fracDigits), func() Schema {
			return NewFloat(bits, intDigits, fracDigits)
		})
	case "decimal":
		if d.IntegerDigits == nil || d.FractionDigits == nil {
			return nil, fail(path, ErrMissingCapacityAnnotation)
		}
		if *d.IntegerDigits < 0 || *d.FractionDigits < 0 {
			return nil, fail(path, fmt.Errorf("%w: negative digit capacity", ErrInvalidDescriptor))
		}
		return r.builtin(fmt.Sprintf("decimal:%d:%d", *d.IntegerDigits, *d.FractionDigits), func() Schema {
			return NewDecimal(*d.IntegerDigits, *d.FractionDigits)
		})
	case "char":
		return r.builtin("char", func() Schema { return NewChar() })
	case "surrogate":
		if d.Name == "" || d.Proxy == nil {
			return nil, fail(path, fmt.Errorf("%w: surrogate needs a name and a proxy", ErrInvalidDescriptor))
		}
		conv, ok := r.converter(d.Converter)
		if !ok {
			return nil, fail(path, fmt.Errorf("%w: %q", ErrMissingSurrogateConverter, d.Converter))
		}
		proxy, err := r.resolve(d.Proxy, join(path, "proxy"))
		if err != nil {
			return nil, err
		}
		return NewSurrogate(d.Name, proxy, conv), nil
	default:
		return nil, fail(path, fmt.Errorf("%w: kind %q", ErrInvalidDescriptor, d.Kind))
	}
}

func (r *Resolver) builtin(key string, fn func() Schema) (Schema, error) {
	return r.cache.GetOrCompute("builtin:"+key, func() (Schema, error) { return fn(), nil })
}
