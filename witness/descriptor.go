package witness

import (
	"fmt"
	"sort"

	"github.com/ing-bank/zkflow-sub006/schema"
	"gopkg.in/yaml.v3"
)

// GroupDescriptor declares Count components of one type in a standard group.
type GroupDescriptor struct {
	Type  schema.TypeDescriptor `yaml:"type" json:"type"`
	Count int                   `yaml:"count" json:"count"`
}

// SlotDescriptor declares one output or UTXO slot.
type SlotDescriptor struct {
	StateType string                `yaml:"stateType" json:"stateType"`
	Type      schema.TypeDescriptor `yaml:"type" json:"type"`
}

// LayoutDescriptor is the YAML form of a Layout. Groups are keyed by their
// JSON key (commands, time_window...).
type LayoutDescriptor struct {
	Name             string                     `yaml:"name" json:"name"`
	Mode             string                     `yaml:"mode,omitempty" json:"mode,omitempty"`
	ContractCapacity int                        `yaml:"contractCapacity,omitempty" json:"contractCapacity,omitempty"`
	Groups           map[string]GroupDescriptor `yaml:"groups,omitempty" json:"groups,omitempty"`
	Outputs          []SlotDescriptor           `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	InputUTXOs       []SlotDescriptor           `yaml:"inputUtxos,omitempty" json:"inputUtxos,omitempty"`
	ReferenceUTXOs   []SlotDescriptor           `yaml:"referenceUtxos,omitempty" json:"referenceUtxos,omitempty"`
}

// Resolve builds the layout, resolving every type through r.
func (d *LayoutDescriptor) Resolve(r *schema.Resolver) (*Layout, error) {
	mode, err := schema.ParseMode(d.Mode)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", d.Name, err)
	}
	l := NewLayout(d.Name, mode)
	if d.ContractCapacity > 0 {
		l.ContractCapacity = d.ContractCapacity
	}
	for key, gd := range d.Groups {
		g, err := ParseGroup(key)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", d.Name, err)
		}
		s, err := r.ResolveDescriptor(&gd.Type)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %s: %w", d.Name, key, err)
		}
		if err := l.SetGroup(g, s, gd.Count); err != nil {
			return nil, fmt.Errorf("layout %s: %w", d.Name, err)
		}
	}
	slots := []struct {
		descs []SlotDescriptor
		add   func(string, schema.Schema) error
	}{
		{d.Outputs, l.AddOutput},
		{d.InputUTXOs, l.AddInputUTXO},
		{d.ReferenceUTXOs, l.AddReferenceUTXO},
	}
	for _, group := range slots {
		for _, sd := range group.descs {
			s, err := r.ResolveDescriptor(&sd.Type)
			if err != nil {
				return nil, fmt.Errorf("layout %s: state %s: %w", d.Name, sd.StateType, err)
			}
			if err := group.add(sd.StateType, s); err != nil {
				return nil, fmt.Errorf("layout %s: %w", d.Name, err)
			}
		}
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", d.Name, err)
	}
	return l, nil
}

// catalogFile is a YAML document holding types and the layouts using them.
type catalogFile struct {
	Types   []schema.TypeDescriptor `yaml:"types"`
	Layouts []LayoutDescriptor      `yaml:"layouts"`
}

// Catalog is a set of named layouts sharing one resolver.
type Catalog struct {
	Resolver *schema.Resolver
	layouts  map[string]*Layout
}

// LoadCatalog parses a catalog document and resolves all its layouts.
// Layouts not naming a mode use mode.
func LoadCatalog(data []byte, r *schema.Resolver, mode schema.Mode) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDescriptor, err)
	}
	if r == nil {
		r = schema.NewResolver(nil)
	}
	if err := r.Register(f.Types...); err != nil {
		return nil, err
	}
	c := &Catalog{Resolver: r, layouts: make(map[string]*Layout, len(f.Layouts))}
	for i := range f.Layouts {
		if f.Layouts[i].Mode == "" {
			f.Layouts[i].Mode = mode.String()
		}
		l, err := f.Layouts[i].Resolve(r)
		if err != nil {
			return nil, err
		}
		if _, ok := c.layouts[l.Name]; ok {
			return nil, fmt.Errorf("%w: layout %s declared twice", ErrInvalidLayout, l.Name)
		}
		c.layouts[l.Name] = l
	}
	return c, nil
}

// Layout returns the named layout.
func (c *Catalog) Layout(name string) (*Layout, error) {
	l, ok := c.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return l, nil
}

// Names returns the layout names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.layouts))
	for n := range c.layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
