package witness

import (
	"bytes"
	"slices"
)

// UTXO is a serialized transaction state consumed or referenced by a
// transaction, together with the nonce it was committed under as an output
// of the transaction that created it.
type UTXO struct {
	StateType string
	Units     []byte
	Nonce     []byte
}

// Shape tells which UTXO groups of a witness are present. Each shape gives
// a structurally different witness payload.
type Shape uint8

const (
	NoUTXOs Shape = iota
	InputUTXOsOnly
	ReferenceUTXOsOnly
	InputAndReferenceUTXOs
)

func (s Shape) String() string {
	switch s {
	case NoUTXOs:
		return "NoUTXOs"
	case InputUTXOsOnly:
		return "InputUTXOsOnly"
	case ReferenceUTXOsOnly:
		return "ReferenceUTXOsOnly"
	default:
		return "InputAndReferenceUTXOs"
	}
}

// Witness is the frozen, grouped set of serialized components of one
// transaction. It is safe for concurrent readers; accessors return copies.
type Witness struct {
	layout         *Layout
	components     [NumComponentGroups][][]byte
	outputTypes    []string
	salt           []byte
	inputUTXOs     []UTXO
	referenceUTXOs []UTXO
}

// Layout returns the layout the witness was built for, or nil when the
// witness was parsed from its JSON payload.
func (w *Witness) Layout() *Layout {
	return w.layout
}

// Components returns the serialized components of g. For UTXO groups these
// are the serialized states, for the nonce groups the nonces.
func (w *Witness) Components(g Group) [][]byte {
	switch {
	case int(g) < NumComponentGroups:
		return cloneUnits(w.components[g])
	case g == PrivacySalt:
		return [][]byte{bytes.Clone(w.salt)}
	}
	utxos := w.utxos(g)
	out := make([][]byte, len(utxos))
	for i, u := range utxos {
		if g == InputNonces || g == ReferenceNonces {
			out[i] = bytes.Clone(u.Nonce)
		} else {
			out[i] = bytes.Clone(u.Units)
		}
	}
	return out
}

func (w *Witness) utxos(g Group) []UTXO {
	switch g {
	case SerializedInputUTXOs, InputNonces:
		return w.inputUTXOs
	case SerializedReferenceUTXOs, ReferenceNonces:
		return w.referenceUTXOs
	}
	return nil
}

// Count returns the number of components of g.
func (w *Witness) Count(g Group) int {
	switch {
	case int(g) < NumComponentGroups:
		return len(w.components[g])
	case g == PrivacySalt:
		return 1
	}
	return len(w.utxos(g))
}

// Present reports whether g has at least one component. Absent groups are
// left out of the witness payload.
func (w *Witness) Present(g Group) bool {
	return w.Count(g) > 0
}

// PrivacySalt returns the salt all nonces derive from.
func (w *Witness) PrivacySalt() []byte {
	return bytes.Clone(w.salt)
}

// InputUTXOs returns the consumed states in canonical order.
func (w *Witness) InputUTXOs() []UTXO {
	return cloneUTXOs(w.inputUTXOs)
}

// ReferenceUTXOs returns the referenced states in canonical order.
func (w *Witness) ReferenceUTXOs() []UTXO {
	return cloneUTXOs(w.referenceUTXOs)
}

// OutputStateTypes returns the state type of each output. It is empty for a
// witness parsed from JSON.
func (w *Witness) OutputStateTypes() []string {
	return slices.Clone(w.outputTypes)
}

// Shape returns which UTXO groups are present.
func (w *Witness) Shape() Shape {
	in, ref := len(w.inputUTXOs) > 0, len(w.referenceUTXOs) > 0
	switch {
	case in && ref:
		return InputAndReferenceUTXOs
	case in:
		return InputUTXOsOnly
	case ref:
		return ReferenceUTXOsOnly
	default:
		return NoUTXOs
	}
}

func cloneUnits(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, u := range in {
		out[i] = bytes.Clone(u)
	}
	return out
}

func cloneUTXOs(in []UTXO) []UTXO {
	out := make([]UTXO, len(in))
	for i, u := range in {
		out[i] = UTXO{StateType: u.StateType, Units: bytes.Clone(u.Units), Nonce: bytes.Clone(u.Nonce)}
	}
	return out
}
