package witness

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/codec"
	"github.com/ing-bank/zkflow-sub006/schema"
	"github.com/ing-bank/zkflow-sub006/types"
)

// State is a transaction state given as host values.
type State struct {
	StateType string `json:"stateType"`
	Contract  string `json:"contract"`
	Data      any    `json:"data"`
}

// UTXOValue is a consumed or referenced state and the nonce it was
// committed under.
type UTXOValue struct {
	State
	Nonce types.HexBytes `json:"nonce"`
}

// Transaction holds the components of a transaction as host values, keyed
// by the JSON key of their group. Map values inside the components are
// given as lists of {"key", "value"} objects.
type Transaction struct {
	PrivacySalt    types.HexBytes   `json:"privacySalt"`
	Components     map[string][]any `json:"components"`
	Outputs        []State          `json:"outputs"`
	InputUTXOs     []UTXOValue      `json:"inputUtxos"`
	ReferenceUTXOs []UTXOValue      `json:"referenceUtxos"`
}

// ParseTransaction decodes a transaction from JSON, keeping numbers exact.
func ParseTransaction(data []byte) (*Transaction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tx := &Transaction{}
	if err := dec.Decode(tx); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}
	return tx, nil
}

// FromValues serializes the transaction values with the layout schemas and
// builds the witness.
func FromValues(l *Layout, tx *Transaction) (*Witness, error) {
	b, err := NewBuilder(l)
	if err != nil {
		return nil, err
	}
	if tx.PrivacySalt != nil {
		if err := b.SetPrivacySalt(tx.PrivacySalt); err != nil {
			return nil, err
		}
	}
	for key, values := range tx.Components {
		g, err := ParseGroup(key)
		if err != nil {
			return nil, err
		}
		if g.Kind() != KindStandard {
			return nil, fmt.Errorf("%w: %s components are given as states", ErrInvalidGroup, g)
		}
		s := l.Group(g).Schema
		if s == nil {
			return nil, fmt.Errorf("%w: %s has no components", ErrGroupSize, g)
		}
		for i, v := range values {
			units, err := encodeValue(s, v, l.Mode)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			if err := b.AddComponent(g, units); err != nil {
				return nil, err
			}
		}
	}
	for i, st := range tx.Outputs {
		units, err := encodeState(l, st)
		if err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		if err := b.AddOutput(st.StateType, units); err != nil {
			return nil, err
		}
	}
	for i, u := range tx.InputUTXOs {
		units, err := encodeState(l, u.State)
		if err != nil {
			return nil, fmt.Errorf("inputUtxos[%d]: %w", i, err)
		}
		if err := b.AddInputUTXO(u.StateType, units, u.Nonce); err != nil {
			return nil, err
		}
	}
	for i, u := range tx.ReferenceUTXOs {
		units, err := encodeState(l, u.State)
		if err != nil {
			return nil, fmt.Errorf("referenceUtxos[%d]: %w", i, err)
		}
		if err := b.AddReferenceUTXO(u.StateType, units, u.Nonce); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func encodeState(l *Layout, st State) ([]byte, error) {
	s, ok := l.states[st.StateType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStateType, st.StateType)
	}
	return encodeValue(s, map[string]any{"data": st.Data, "contract": st.Contract}, l.Mode)
}

func encodeValue(s schema.Schema, v any, m schema.Mode) ([]byte, error) {
	v, err := hostValue(s, v)
	if err != nil {
		return nil, err
	}
	return codec.Encode(s, v, m)
}

// hostValue converts a value decoded from JSON into the codec value model:
// map entries become codec.Entry values. Anything else is left to the codec
// to check.
func hostValue(s schema.Schema, v any) (any, error) {
	switch s := s.(type) {
	case *schema.FixedList:
		l, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(l))
		for i, e := range l {
			var err error
			if out[i], err = hostValue(s.Elem, e); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *schema.FixedMap:
		l, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]codec.Entry, len(l))
		for i, e := range l {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: map entry %d is a %T", codec.ErrTypeMismatch, i, e)
			}
			key, err := hostValue(s.Key, obj["key"])
			if err != nil {
				return nil, err
			}
			value, err := hostValue(s.Value, obj["value"])
			if err != nil {
				return nil, err
			}
			out[i] = codec.Entry{Key: key, Value: value}
		}
		return out, nil
	case *schema.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		out := make(map[string]any, len(obj))
		for name, fv := range obj {
			f, ok := s.Field(name)
			if !ok {
				out[name] = fv
				continue
			}
			var err error
			if out[name], err = hostValue(f.Schema, fv); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *schema.Option:
		if v == nil {
			return nil, nil
		}
		return hostValue(s.Inner, v)
	default:
		return v, nil
	}
}
