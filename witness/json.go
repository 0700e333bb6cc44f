package witness

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/types"
)

// payload is the JSON form of a witness, the input format of the circuit
// tooling. UTXO maps are left out when empty.
type payload struct {
	Inputs                   []types.DecimalBytes            `json:"inputs"`
	Outputs                  []types.DecimalBytes            `json:"outputs"`
	Commands                 []types.DecimalBytes            `json:"commands"`
	Attachments              []types.DecimalBytes            `json:"attachments"`
	Notary                   []types.DecimalBytes            `json:"notary"`
	TimeWindow               []types.DecimalBytes            `json:"time_window"`
	Signers                  []types.DecimalBytes            `json:"signers"`
	References               []types.DecimalBytes            `json:"references"`
	Parameters               []types.DecimalBytes            `json:"parameters"`
	PrivacySalt              types.DecimalBytes              `json:"privacy_salt"`
	InputNonces              []types.DecimalBytes            `json:"input_nonces"`
	ReferenceNonces          []types.DecimalBytes            `json:"reference_nonces"`
	SerializedInputUTXOs     map[string][]types.DecimalBytes `json:"serialized_input_utxos,omitempty"`
	SerializedReferenceUTXOs map[string][]types.DecimalBytes `json:"serialized_reference_utxos,omitempty"`
}

type envelope struct {
	Witness *payload `json:"witness"`
}

func (p *payload) group(g Group) *[]types.DecimalBytes {
	return [NumComponentGroups]*[]types.DecimalBytes{
		Inputs:      &p.Inputs,
		Outputs:     &p.Outputs,
		Commands:    &p.Commands,
		Attachments: &p.Attachments,
		Notary:      &p.Notary,
		TimeWindow:  &p.TimeWindow,
		Signers:     &p.Signers,
		References:  &p.References,
		Parameters:  &p.Parameters,
	}[g]
}

func utxoMap(utxos []UTXO) map[string][]types.DecimalBytes {
	if len(utxos) == 0 {
		return nil
	}
	m := make(map[string][]types.DecimalBytes)
	for _, u := range utxos {
		m[u.StateType] = append(m[u.StateType], u.Units)
	}
	return m
}

func nonces(utxos []UTXO) []types.DecimalBytes {
	out := make([]types.DecimalBytes, len(utxos))
	for i, u := range utxos {
		out[i] = u.Nonce
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (w *Witness) MarshalJSON() ([]byte, error) {
	p := &payload{
		PrivacySalt:              w.salt,
		InputNonces:              nonces(w.inputUTXOs),
		ReferenceNonces:          nonces(w.referenceUTXOs),
		SerializedInputUTXOs:     utxoMap(w.inputUTXOs),
		SerializedReferenceUTXOs: utxoMap(w.referenceUTXOs),
	}
	for _, g := range ComponentGroups() {
		*p.group(g) = types.DecimalBytesList(w.components[g])
	}
	return json.Marshal(envelope{Witness: p})
}

// UnmarshalJSON implements json.Unmarshaler. UTXOs are restored in
// canonical order, sorted by state type, and paired with the nonces in
// that order.
func (w *Witness) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	p := env.Witness
	if p == nil {
		return fmt.Errorf("missing witness object")
	}
	if len(p.PrivacySalt) != digest.Size {
		return fmt.Errorf("%w: privacy salt has %d bytes, want %d", ErrComponentLength, len(p.PrivacySalt), digest.Size)
	}
	var out Witness
	for _, g := range ComponentGroups() {
		out.components[g] = types.BytesList(*p.group(g))
	}
	out.salt = p.PrivacySalt
	var err error
	if out.inputUTXOs, err = parseUTXOs(SerializedInputUTXOs, p.SerializedInputUTXOs, p.InputNonces); err != nil {
		return err
	}
	if out.referenceUTXOs, err = parseUTXOs(SerializedReferenceUTXOs, p.SerializedReferenceUTXOs, p.ReferenceNonces); err != nil {
		return err
	}
	*w = out
	return nil
}

func parseUTXOs(g Group, m map[string][]types.DecimalBytes, nonces []types.DecimalBytes) ([]UTXO, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []UTXO
	for _, k := range keys {
		for _, units := range m[k] {
			out = append(out, UTXO{StateType: k, Units: units})
		}
	}
	if len(out) != len(nonces) {
		return nil, fmt.Errorf("%w: %s has %d states but %d nonces", ErrGroupSize, g, len(out), len(nonces))
	}
	for i, n := range nonces {
		if len(n) != digest.Size {
			return nil, fmt.Errorf("%w: nonce %d of %s has %d bytes", ErrComponentLength, i, g, len(n))
		}
		out[i].Nonce = n
	}
	return out, nil
}
