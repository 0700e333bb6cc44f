package circuitgen

import (
	"sort"
	"sync"

	"github.com/ing-bank/zkflow-sub006/schema"
)

// entry is the circuit mapping of one schema: its type and the expressions
// reading a value from a reader r and building its default.
type entry struct {
	ref  TypeRef
	read string
	zero string
}

// Registry remembers the types generated for each schema so a type is only
// declared once per build. Generators sharing a registry emit each type in
// a single file of the same package.
type Registry struct {
	mu      sync.Mutex
	entries map[schema.Schema]*entry
	names   map[string]schema.Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[schema.Schema]*entry),
		names:   make(map[string]schema.Schema),
	}
}

// Lookup returns the type generated for s.
func (r *Registry) Lookup(s schema.Schema) (TypeRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[s]
	if !ok {
		return TypeRef{}, false
	}
	return e.ref, true
}

// Names returns the generated type names in lexical order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.names))
	for n := range r.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
