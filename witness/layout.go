package witness

import (
	"fmt"
	"sort"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/schema"
)

// DefaultContractCapacity is the number of ASCII characters reserved for
// the contract name attached to every transaction state.
const DefaultContractCapacity = 128

// GroupLayout is the static shape of a standard group: Count components of
// the same schema.
type GroupLayout struct {
	Schema schema.Schema
	Count  int
}

// Slot is one position of an output or UTXO group. Schema is the schema of
// the serialized transaction state, that is the state data together with its
// contract name.
type Slot struct {
	StateType string
	Schema    *schema.Struct
}

// Layout is the statically known shape of every witness built for one kind
// of transaction: the schema and count of each group and the unit mode.
type Layout struct {
	Name             string
	Mode             schema.Mode
	ContractCapacity int

	groups         map[Group]GroupLayout
	outputs        []Slot
	inputUTXOs     []Slot
	referenceUTXOs []Slot
	states         map[string]*schema.Struct
}

// NewLayout returns an empty layout.
func NewLayout(name string, mode schema.Mode) *Layout {
	return &Layout{
		Name:             name,
		Mode:             mode,
		ContractCapacity: DefaultContractCapacity,
		groups:           make(map[Group]GroupLayout),
		states:           make(map[string]*schema.Struct),
	}
}

// SetGroup declares count components of schema s in the standard group g.
func (l *Layout) SetGroup(g Group, s schema.Schema, count int) error {
	if g.Kind() != KindStandard {
		return fmt.Errorf("%w: %s is not a standard group", ErrInvalidGroup, g)
	}
	if count < 0 || (count > 0 && s == nil) {
		return fmt.Errorf("%w: %s needs a schema and a non negative count", ErrInvalidLayout, g)
	}
	l.groups[g] = GroupLayout{Schema: s, Count: count}
	return nil
}

// StateSchema returns the serialized transaction state schema of a state
// type: the state data followed by the contract name.
func (l *Layout) StateSchema(stateType string, state schema.Schema) (*schema.Struct, error) {
	if stateType == "" || state == nil {
		return nil, fmt.Errorf("%w: state type and schema are required", ErrInvalidLayout)
	}
	if s, ok := l.states[stateType]; ok {
		if data, _ := s.Field("data"); !schema.Equal(data.Schema, state) {
			return nil, fmt.Errorf("%w: state type %s declared with two schemas", ErrInvalidLayout, stateType)
		}
		return s, nil
	}
	s := schema.NewStruct(stateType+"TransactionState",
		schema.Field{Name: "data", Schema: state},
		schema.Field{Name: "contract", Schema: schema.NewFixedString(l.ContractCapacity, schema.ASCII)},
	)
	l.states[stateType] = s
	return s, nil
}

// AddOutput appends an output slot.
func (l *Layout) AddOutput(stateType string, state schema.Schema) error {
	s, err := l.StateSchema(stateType, state)
	if err != nil {
		return err
	}
	l.outputs = append(l.outputs, Slot{StateType: stateType, Schema: s})
	return nil
}

// AddInputUTXO declares a consumed state. UTXO slots are kept sorted by
// state type, in declaration order within a type, which is the order of
// their serialized map in the witness payload.
func (l *Layout) AddInputUTXO(stateType string, state schema.Schema) error {
	s, err := l.StateSchema(stateType, state)
	if err != nil {
		return err
	}
	l.inputUTXOs = insertSorted(l.inputUTXOs, Slot{StateType: stateType, Schema: s})
	return nil
}

// AddReferenceUTXO declares a referenced state, ordered like input UTXOs.
func (l *Layout) AddReferenceUTXO(stateType string, state schema.Schema) error {
	s, err := l.StateSchema(stateType, state)
	if err != nil {
		return err
	}
	l.referenceUTXOs = insertSorted(l.referenceUTXOs, Slot{StateType: stateType, Schema: s})
	return nil
}

func insertSorted(slots []Slot, s Slot) []Slot {
	i := sort.Search(len(slots), func(i int) bool { return slots[i].StateType > s.StateType })
	slots = append(slots, Slot{})
	copy(slots[i+1:], slots[i:])
	slots[i] = s
	return slots
}

// Group returns the layout of a standard group.
func (l *Layout) Group(g Group) GroupLayout {
	return l.groups[g]
}

// Slots returns the slots of the output and UTXO groups.
func (l *Layout) Slots(g Group) []Slot {
	switch g {
	case Outputs:
		return l.outputs
	case SerializedInputUTXOs, InputNonces:
		return l.inputUTXOs
	case SerializedReferenceUTXOs, ReferenceNonces:
		return l.referenceUTXOs
	default:
		return nil
	}
}

// Count returns the number of components of g.
func (l *Layout) Count(g Group) int {
	switch g.Kind() {
	case KindStandard:
		return l.groups[g].Count
	case KindMetadata:
		if g == PrivacySalt {
			return 1
		}
	}
	return len(l.Slots(g))
}

// ComponentSchema returns the schema of component i of g, or nil for
// metadata groups, which hold raw digest bytes.
func (l *Layout) ComponentSchema(g Group, i int) schema.Schema {
	switch g.Kind() {
	case KindStandard:
		return l.groups[g].Schema
	case KindOutput, KindUTXO:
		return l.Slots(g)[i].Schema
	default:
		return nil
	}
}

// ComponentLength returns the number of units of component i of g.
func (l *Layout) ComponentLength(g Group, i int) int {
	if g.Kind() == KindMetadata {
		return digest.Size
	}
	return l.ComponentSchema(g, i).Length(l.Mode)
}

// GroupLength returns the total number of units of g.
func (l *Layout) GroupLength(g Group) int {
	n := 0
	for i := range l.Count(g) {
		n += l.ComponentLength(g, i)
	}
	return n
}

// Validate checks the layout is consistent: every input and reference has
// a UTXO, and there is at most one notary and one time window.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidLayout)
	}
	if n, u := l.Count(Inputs), len(l.inputUTXOs); n != u {
		return fmt.Errorf("%w: %d inputs but %d input UTXOs", ErrInvalidLayout, n, u)
	}
	if n, u := l.Count(References), len(l.referenceUTXOs); n != u {
		return fmt.Errorf("%w: %d references but %d reference UTXOs", ErrInvalidLayout, n, u)
	}
	for _, g := range []Group{Notary, TimeWindow} {
		if l.Count(g) > 1 {
			return fmt.Errorf("%w: at most one %s component", ErrInvalidLayout, g)
		}
	}
	if l.ContractCapacity < 0 {
		return fmt.Errorf("%w: negative contract capacity", ErrInvalidLayout)
	}
	return nil
}

// Schemas returns every distinct component schema of the layout, in group
// order.
func (l *Layout) Schemas() []schema.Schema {
	var out []schema.Schema
	seen := make(map[schema.Schema]bool)
	add := func(s schema.Schema) {
		if s != nil && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, g := range ComponentGroups() {
		if g.Kind() == KindStandard {
			add(l.groups[g].Schema)
			continue
		}
		for _, s := range l.outputs {
			add(s.Schema)
		}
	}
	for _, s := range l.inputUTXOs {
		add(s.Schema)
	}
	for _, s := range l.referenceUTXOs {
		add(s.Schema)
	}
	return out
}
