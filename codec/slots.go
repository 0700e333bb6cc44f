package codec

import (
	"fmt"

	"github.com/ing-bank/zkflow-sub006/schema"
)

// SlotKind tells a real list element apart from padding.
type SlotKind uint8

const (
	Original SlotKind = iota
	Filler
)

func (k SlotKind) String() string {
	if k == Filler {
		return "filler"
	}
	return "original"
}

// Slot is one of the Capacity element positions of an encoded list.
type Slot struct {
	Kind  SlotKind
	Value any
}

// Slots lays elems out over the capacity of l: the elements first, tagged
// Original, then Filler slots holding the element default.
func Slots(l *schema.FixedList, elems []any) ([]Slot, error) {
	if len(elems) > l.Capacity {
		return nil, fmt.Errorf("%w: %d elements, capacity %d", ErrCapacityExceeded, len(elems), l.Capacity)
	}
	slots := make([]Slot, l.Capacity)
	for i, v := range elems {
		slots[i] = Slot{Kind: Original, Value: v}
	}
	if len(elems) < l.Capacity {
		def := schema.Default(l.Elem)
		for i := len(elems); i < l.Capacity; i++ {
			slots[i] = Slot{Kind: Filler, Value: def}
		}
	}
	return slots, nil
}

// DecodeSlots decodes an encoded list and returns all its slots. Filler
// slots carry the value found in the padding.
func DecodeSlots(l *schema.FixedList, units []byte, m schema.Mode) ([]Slot, error) {
	if len(units) != l.Length(m) {
		sentinel := ErrTruncatedInput
		if len(units) > l.Length(m) {
			sentinel = ErrTrailingInput
		}
		return nil, fail("", sentinel, "%d units for %s of length %d", len(units), schema.String(l), l.Length(m))
	}
	d := &decoder{mode: m, in: units}
	size, err := d.readSize(l.Capacity, "")
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, l.Capacity)
	for i := range slots {
		v, err := d.decode(l.Elem, index("", i))
		if err != nil {
			return nil, err
		}
		kind := Original
		if i >= size {
			kind = Filler
		}
		slots[i] = Slot{Kind: kind, Value: v}
	}
	return slots, nil
}

// Originals returns the values of the Original slots.
func Originals(slots []Slot) []any {
	var out []any
	for _, s := range slots {
		if s.Kind == Original {
			out = append(out, s.Value)
		}
	}
	return out
}
