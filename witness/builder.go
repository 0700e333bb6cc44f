package witness

import (
	"bytes"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
)

// Builder collects the serialized components of one transaction. Build
// groups them and freezes the builder; it cannot be reused afterwards.
type Builder struct {
	layout     *Layout
	components [NumComponentGroups][][]byte
	outputs    []string
	salt       []byte
	inputs     map[string][]UTXO
	references map[string][]UTXO
	frozen     bool
}

// NewBuilder returns a builder for witnesses of layout l.
func NewBuilder(l *Layout) (*Builder, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		layout:     l,
		inputs:     make(map[string][]UTXO),
		references: make(map[string][]UTXO),
	}, nil
}

func (b *Builder) checkLength(g Group, units []byte, want int) error {
	if len(units) != want {
		return fmt.Errorf("%w: %s component has %d units, want %d", ErrComponentLength, g, len(units), want)
	}
	return nil
}

// AddComponent appends a serialized component to the standard group g.
func (b *Builder) AddComponent(g Group, units []byte) error {
	if b.frozen {
		return ErrFrozen
	}
	if g.Kind() != KindStandard {
		return fmt.Errorf("%w: %s is not a standard group", ErrInvalidGroup, g)
	}
	gl := b.layout.Group(g)
	if len(b.components[g]) >= gl.Count {
		return fmt.Errorf("%w: %s holds at most %d components", ErrGroupSize, g, gl.Count)
	}
	if err := b.checkLength(g, units, gl.Schema.Length(b.layout.Mode)); err != nil {
		return err
	}
	b.components[g] = append(b.components[g], bytes.Clone(units))
	return nil
}

// AddOutput appends a serialized transaction state to the outputs. Outputs
// are added in the order of the layout's output slots.
func (b *Builder) AddOutput(stateType string, units []byte) error {
	if b.frozen {
		return ErrFrozen
	}
	slots := b.layout.Slots(Outputs)
	i := len(b.components[Outputs])
	if i >= len(slots) {
		return fmt.Errorf("%w: %s holds at most %d components", ErrGroupSize, Outputs, len(slots))
	}
	if slots[i].StateType != stateType {
		return fmt.Errorf("%w: output %d is a %s, got %s", ErrUnknownStateType, i, slots[i].StateType, stateType)
	}
	if err := b.checkLength(Outputs, units, slots[i].Schema.Length(b.layout.Mode)); err != nil {
		return err
	}
	b.components[Outputs] = append(b.components[Outputs], bytes.Clone(units))
	b.outputs = append(b.outputs, stateType)
	return nil
}

// AddInputUTXO adds a consumed state and the nonce it was committed under.
func (b *Builder) AddInputUTXO(stateType string, units, nonce []byte) error {
	return b.addUTXO(SerializedInputUTXOs, b.inputs, stateType, units, nonce)
}

// AddReferenceUTXO adds a referenced state and the nonce it was committed
// under.
func (b *Builder) AddReferenceUTXO(stateType string, units, nonce []byte) error {
	return b.addUTXO(SerializedReferenceUTXOs, b.references, stateType, units, nonce)
}

func (b *Builder) addUTXO(g Group, byType map[string][]UTXO, stateType string, units, nonce []byte) error {
	if b.frozen {
		return ErrFrozen
	}
	declared := 0
	var length int
	for _, s := range b.layout.Slots(g) {
		if s.StateType == stateType {
			declared++
			length = s.Schema.Length(b.layout.Mode)
		}
	}
	if declared == 0 {
		return fmt.Errorf("%w: %s in %s", ErrUnknownStateType, stateType, g)
	}
	if len(byType[stateType]) >= declared {
		return fmt.Errorf("%w: %s holds %d %s states", ErrGroupSize, g, declared, stateType)
	}
	if err := b.checkLength(g, units, length); err != nil {
		return err
	}
	if len(nonce) != digest.Size {
		return fmt.Errorf("%w: nonce has %d bytes, want %d", ErrComponentLength, len(nonce), digest.Size)
	}
	byType[stateType] = append(byType[stateType], UTXO{
		StateType: stateType,
		Units:     bytes.Clone(units),
		Nonce:     bytes.Clone(nonce),
	})
	return nil
}

// SetPrivacySalt sets the transaction salt.
func (b *Builder) SetPrivacySalt(salt []byte) error {
	if b.frozen {
		return ErrFrozen
	}
	if len(salt) != digest.Size {
		return fmt.Errorf("%w: privacy salt has %d bytes, want %d", ErrComponentLength, len(salt), digest.Size)
	}
	b.salt = bytes.Clone(salt)
	return nil
}

// Build checks every group holds the number of components its layout
// declares and returns the frozen witness. On error the builder is left
// open so the missing components can still be added.
func (b *Builder) Build() (*Witness, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	if b.salt == nil {
		return nil, ErrMissingPrivacySalt
	}
	for _, g := range ComponentGroups() {
		if got, want := len(b.components[g]), b.layout.Count(g); got != want {
			return nil, fmt.Errorf("%w: %s has %d components, want %d", ErrGroupSize, g, got, want)
		}
	}
	inputs, err := b.ordered(SerializedInputUTXOs, b.inputs)
	if err != nil {
		return nil, err
	}
	references, err := b.ordered(SerializedReferenceUTXOs, b.references)
	if err != nil {
		return nil, err
	}
	b.frozen = true
	w := &Witness{
		layout:         b.layout,
		components:     b.components,
		outputTypes:    b.outputs,
		salt:           b.salt,
		inputUTXOs:     inputs,
		referenceUTXOs: references,
	}
	log.Debugw("witness built",
		"layout", b.layout.Name,
		"mode", b.layout.Mode.String(),
		"shape", w.Shape().String(),
		"outputs", len(b.outputs),
		"inputUTXOs", len(inputs),
		"referenceUTXOs", len(references),
	)
	return w, nil
}

// ordered lays out the collected UTXOs following the layout slots: sorted
// by state type, then in the order they were added.
func (b *Builder) ordered(g Group, byType map[string][]UTXO) ([]UTXO, error) {
	slots := b.layout.Slots(g)
	out := make([]UTXO, 0, len(slots))
	next := make(map[string]int)
	for _, s := range slots {
		i := next[s.StateType]
		if i >= len(byType[s.StateType]) {
			return nil, fmt.Errorf("%w: %s is missing a %s state", ErrGroupSize, g, s.StateType)
		}
		out = append(out, byType[s.StateType][i])
		next[s.StateType] = i + 1
	}
	return out, nil
}
