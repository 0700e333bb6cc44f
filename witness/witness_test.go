package witness

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/schema"
)

const testCatalog = `
types:
  - name: Amount
    kind: struct
    fields:
      - {name: quantity, type: {kind: int64}}
      - {name: token, type: {kind: string, capacity: 4, encoding: ascii}}
  - name: Cash
    kind: struct
    fields:
      - {name: owner, type: {kind: list, capacity: 2, elem: {kind: uint8}}}
      - {name: amount, type: {ref: Amount}}
  - name: StateRef
    kind: struct
    fields:
      - {name: tx, type: {kind: uint64}}
      - {name: index, type: {kind: uint32}}
  - name: CashCommand
    kind: enum
    variants: [Issue, Move, Exit]
layouts:
  - name: move
    contractCapacity: 8
    groups:
      inputs: {type: {ref: StateRef}, count: 1}
      references: {type: {ref: StateRef}, count: 1}
      commands: {type: {ref: CashCommand}, count: 1}
      signers: {type: {kind: uint16}, count: 2}
      notary: {type: {kind: uint16}, count: 1}
    outputs:
      - {stateType: Cash, type: {ref: Cash}}
    inputUtxos:
      - {stateType: Cash, type: {ref: Cash}}
    referenceUtxos:
      - {stateType: Cash, type: {ref: Cash}}
  - name: reference
    contractCapacity: 8
    groups:
      references: {type: {ref: StateRef}, count: 1}
      commands: {type: {ref: CashCommand}, count: 1}
    outputs:
      - {stateType: Cash, type: {ref: Cash}}
    referenceUtxos:
      - {stateType: Cash, type: {ref: Cash}}
  - name: issue
    mode: bit
    groups:
      commands: {type: {ref: CashCommand}, count: 1}
    outputs:
      - {stateType: Cash, type: {ref: Cash}}
`

func hex32(b byte) string {
	return `"0x` + hex.EncodeToString(bytes.Repeat([]byte{b}, 32)) + `"`
}

const testCash = `{"owner": [1, 2], "amount": {"quantity": 100, "token": "EUR"}}`

func testLayout(c *qt.C, name string) *Layout {
	cat, err := LoadCatalog([]byte(testCatalog), nil, schema.ByteMode)
	c.Assert(err, qt.IsNil)
	l, err := cat.Layout(name)
	c.Assert(err, qt.IsNil)
	return l
}

func TestCatalog(t *testing.T) {
	c := qt.New(t)
	cat, err := LoadCatalog([]byte(testCatalog), nil, schema.ByteMode)
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Names(), qt.DeepEquals, []string{"issue", "move", "reference"})
	_, err = cat.Layout("exit")
	c.Assert(err, qt.ErrorIs, ErrUnknownLayout)

	issue, err := cat.Layout("issue")
	c.Assert(err, qt.IsNil)
	c.Assert(issue.Mode, qt.Equals, schema.BitMode)
	c.Assert(issue.ContractCapacity, qt.Equals, DefaultContractCapacity)
}

func TestLayoutLengths(t *testing.T) {
	c := qt.New(t)
	l := testLayout(c, "move")

	c.Assert(l.Count(Inputs), qt.Equals, 1)
	c.Assert(l.Count(Signers), qt.Equals, 2)
	c.Assert(l.Count(Attachments), qt.Equals, 0)
	c.Assert(l.Count(PrivacySalt), qt.Equals, 1)
	c.Assert(l.Count(InputNonces), qt.Equals, 1)

	// StateRef: u64 + u32
	c.Assert(l.ComponentLength(Inputs, 0), qt.Equals, 12)
	c.Assert(l.GroupLength(Signers), qt.Equals, 4)
	// Cash (4+2 + 8+4+4) followed by the contract name (4+8)
	c.Assert(l.ComponentLength(Outputs, 0), qt.Equals, 34)
	c.Assert(l.ComponentSchema(Outputs, 0).Name(), qt.Equals, "CashTransactionState")
	c.Assert(l.ComponentLength(InputNonces, 0), qt.Equals, 32)
	c.Assert(l.GroupLength(SerializedReferenceUTXOs), qt.Equals, 34)
	// StateRef, CashTransactionState, CashCommand and UInt16, once each
	c.Assert(l.Schemas(), qt.HasLen, 4)
}

func TestLayoutValidate(t *testing.T) {
	c := qt.New(t)
	cash := schema.NewStruct("Cash", schema.Field{Name: "quantity", Schema: schema.Int(64)})
	ref := schema.NewStruct("StateRef", schema.Field{Name: "index", Schema: schema.Uint(32)})

	l := NewLayout("move", schema.ByteMode)
	c.Assert(l.SetGroup(Inputs, ref, 2), qt.IsNil)
	c.Assert(l.AddInputUTXO("Cash", cash), qt.IsNil)
	c.Assert(l.Validate(), qt.ErrorIs, ErrInvalidLayout)
	c.Assert(l.AddInputUTXO("Cash", cash), qt.IsNil)
	c.Assert(l.Validate(), qt.IsNil)

	c.Assert(l.SetGroup(Notary, schema.Uint(16), 2), qt.IsNil)
	c.Assert(l.Validate(), qt.ErrorMatches, `invalid layout: at most one Notary component`)

	c.Assert(l.SetGroup(Outputs, cash, 1), qt.ErrorIs, ErrInvalidGroup)
	other := schema.NewStruct("Cash", schema.Field{Name: "quantity", Schema: schema.Int(32)})
	c.Assert(l.AddOutput("Cash", other), qt.ErrorIs, ErrInvalidLayout)
}

func TestUTXOOrder(t *testing.T) {
	c := qt.New(t)
	token := schema.NewStruct("Token", schema.Field{Name: "id", Schema: schema.Uint(8)})
	bond := schema.NewStruct("Bond", schema.Field{Name: "id", Schema: schema.Uint(16)})

	l := NewLayout("swap", schema.ByteMode)
	l.ContractCapacity = 0
	ref := schema.NewStruct("StateRef", schema.Field{Name: "index", Schema: schema.Uint(32)})
	c.Assert(l.SetGroup(Inputs, ref, 3), qt.IsNil)
	c.Assert(l.AddInputUTXO("Token", token), qt.IsNil)
	c.Assert(l.AddInputUTXO("Bond", bond), qt.IsNil)
	c.Assert(l.AddInputUTXO("Token", token), qt.IsNil)

	var types []string
	for _, s := range l.Slots(SerializedInputUTXOs) {
		types = append(types, s.StateType)
	}
	c.Assert(types, qt.DeepEquals, []string{"Bond", "Token", "Token"})

	b, err := NewBuilder(l)
	c.Assert(err, qt.IsNil)
	c.Assert(b.SetPrivacySalt(bytes.Repeat([]byte{1}, 32)), qt.IsNil)
	for i := range 3 {
		c.Assert(b.AddComponent(Inputs, []byte{0, 0, 0, byte(i)}), qt.IsNil)
	}
	// state (id) followed by the empty contract name size
	c.Assert(b.AddInputUTXO("Token", []byte{7, 0, 0, 0, 0}, bytes.Repeat([]byte{7}, 32)), qt.IsNil)
	c.Assert(b.AddInputUTXO("Token", []byte{8, 0, 0, 0, 0}, bytes.Repeat([]byte{8}, 32)), qt.IsNil)
	c.Assert(b.AddInputUTXO("Token", []byte{9, 0, 0, 0, 0}, bytes.Repeat([]byte{9}, 32)), qt.ErrorIs, ErrGroupSize)
	_, err = b.Build()
	c.Assert(err, qt.ErrorMatches, `group size mismatch: SerializedInputUTXOs is missing a Bond state`)
	c.Assert(b.AddInputUTXO("Bond", []byte{0, 1, 0, 0, 0, 0}, bytes.Repeat([]byte{1}, 32)), qt.IsNil)

	w, err := b.Build()
	c.Assert(err, qt.IsNil)
	utxos := w.InputUTXOs()
	c.Assert(utxos, qt.HasLen, 3)
	c.Assert(utxos[0].StateType, qt.Equals, "Bond")
	c.Assert(utxos[1].Units[0], qt.Equals, byte(7))
	c.Assert(utxos[2].Nonce[0], qt.Equals, byte(8))
	c.Assert(w.Shape(), qt.Equals, InputUTXOsOnly)

	data, err := json.Marshal(w)
	c.Assert(err, qt.IsNil)
	var parsed Witness
	c.Assert(json.Unmarshal(data, &parsed), qt.IsNil)
	c.Assert(parsed.InputUTXOs(), qt.DeepEquals, utxos)
	c.Assert(parsed.Layout(), qt.IsNil)
}

func TestBuilderErrors(t *testing.T) {
	c := qt.New(t)
	l := testLayout(c, "reference")
	b, err := NewBuilder(l)
	c.Assert(err, qt.IsNil)

	_, err = b.Build()
	c.Assert(err, qt.ErrorIs, ErrMissingPrivacySalt)
	c.Assert(b.SetPrivacySalt([]byte{1}), qt.ErrorIs, ErrComponentLength)
	c.Assert(b.SetPrivacySalt(bytes.Repeat([]byte{1}, 32)), qt.IsNil)

	c.Assert(b.AddComponent(Commands, []byte{0, 0, 1}), qt.ErrorIs, ErrComponentLength)
	c.Assert(b.AddComponent(Outputs, []byte{0}), qt.ErrorIs, ErrInvalidGroup)
	c.Assert(b.AddComponent(Signers, nil), qt.ErrorIs, ErrGroupSize)
	c.Assert(b.AddComponent(Commands, []byte{0, 0, 0, 1}), qt.IsNil)
	c.Assert(b.AddComponent(Commands, []byte{0, 0, 0, 1}), qt.ErrorIs, ErrGroupSize)
	c.Assert(b.AddOutput("Bond", make([]byte, 34)), qt.ErrorIs, ErrUnknownStateType)
	c.Assert(b.AddInputUTXO("Cash", make([]byte, 34), make([]byte, 32)), qt.ErrorIs, ErrUnknownStateType)
	c.Assert(b.AddReferenceUTXO("Cash", make([]byte, 34), make([]byte, 31)), qt.ErrorIs, ErrComponentLength)

	_, err = b.Build()
	c.Assert(err, qt.ErrorMatches, `group size mismatch: Outputs has 0 components, want 1`)

	c.Assert(b.AddOutput("Cash", make([]byte, 34)), qt.IsNil)
	c.Assert(b.AddComponent(References, make([]byte, 12)), qt.IsNil)
	c.Assert(b.AddReferenceUTXO("Cash", make([]byte, 34), make([]byte, 32)), qt.IsNil)
	w, err := b.Build()
	c.Assert(err, qt.IsNil)
	c.Assert(w.Count(Outputs), qt.Equals, 1)

	c.Assert(b.AddComponent(Commands, []byte{0, 0, 0, 1}), qt.ErrorIs, ErrFrozen)
	c.Assert(b.SetPrivacySalt(make([]byte, 32)), qt.ErrorIs, ErrFrozen)
	_, err = b.Build()
	c.Assert(err, qt.ErrorIs, ErrFrozen)
}

func referenceTransaction(quantity int) string {
	return `{
  "privacySalt": ` + hex32(0x01) + `,
  "components": {
    "references": [{"tx": 1, "index": 0}],
    "commands": ["Move"]
  },
  "outputs": [{"stateType": "Cash", "contract": "cash", "data": {"owner": [3], "amount": {"quantity": ` + strconv.Itoa(quantity) + `, "token": "EUR"}}}],
  "referenceUtxos": [{"stateType": "Cash", "contract": "cash", "data": ` + testCash + `, "nonce": ` + hex32(0x02) + `}]
}`
}

func TestFromValuesReferenceOnly(t *testing.T) {
	c := qt.New(t)
	l := testLayout(c, "reference")
	tx, err := ParseTransaction([]byte(referenceTransaction(10)))
	c.Assert(err, qt.IsNil)
	w, err := FromValues(l, tx)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Shape(), qt.Equals, ReferenceUTXOsOnly)
	c.Assert(w.Present(Inputs), qt.IsFalse)
	c.Assert(w.Present(References), qt.IsTrue)
	c.Assert(w.OutputStateTypes(), qt.DeepEquals, []string{"Cash"})
	c.Assert(w.Components(Commands), qt.DeepEquals, [][]byte{{0, 0, 0, 1}})
	c.Assert(w.Components(References), qt.DeepEquals, [][]byte{{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}})
	c.Assert(w.Components(ReferenceNonces), qt.DeepEquals, [][]byte{bytes.Repeat([]byte{2}, 32)})

	data, err := json.Marshal(w)
	c.Assert(err, qt.IsNil)
	var raw map[string]map[string]json.RawMessage
	c.Assert(json.Unmarshal(data, &raw), qt.IsNil)
	body := raw["witness"]
	_, ok := body["serialized_input_utxos"]
	c.Assert(ok, qt.IsFalse)
	_, ok = body["serialized_reference_utxos"]
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(body["inputs"]), qt.Equals, "[]")
	c.Assert(string(body["input_nonces"]), qt.Equals, "[]")
	c.Assert(string(body["commands"]), qt.Equals, `[["0","0","0","1"]]`)

	var refs map[string][][]string
	c.Assert(json.Unmarshal(body["serialized_reference_utxos"], &refs), qt.IsNil)
	c.Assert(refs["Cash"], qt.HasLen, 1)
	c.Assert(refs["Cash"][0], qt.HasLen, 34)
	// owner size, then the owner slots
	c.Assert(refs["Cash"][0][:6], qt.DeepEquals, []string{"0", "0", "0", "2", "1", "2"})

	var parsed Witness
	c.Assert(json.Unmarshal(data, &parsed), qt.IsNil)
	for _, g := range append(ComponentGroups(), PrivacySalt, ReferenceNonces, SerializedReferenceUTXOs) {
		c.Assert(parsed.Components(g), qt.DeepEquals, w.Components(g), qt.Commentf("group %s", g))
	}
	c.Assert(parsed.Shape(), qt.Equals, ReferenceUTXOsOnly)
}

func TestFromValuesErrors(t *testing.T) {
	c := qt.New(t)
	l := testLayout(c, "reference")

	tx, err := ParseTransaction([]byte(referenceTransaction(10)))
	c.Assert(err, qt.IsNil)
	tx.Components["notary"] = []any{json.Number("1")}
	_, err = FromValues(l, tx)
	c.Assert(err, qt.ErrorIs, ErrGroupSize)

	tx, err = ParseTransaction([]byte(referenceTransaction(10)))
	c.Assert(err, qt.IsNil)
	tx.Components["commands"] = []any{"Burn"}
	_, err = FromValues(l, tx)
	c.Assert(err, qt.ErrorMatches, `commands\[0\]: .*`)

	tx, err = ParseTransaction([]byte(referenceTransaction(10)))
	c.Assert(err, qt.IsNil)
	tx.Outputs[0].Contract = "a contract name too long"
	_, err = FromValues(l, tx)
	c.Assert(err, qt.ErrorMatches, `outputs\[0\]: contract: capacity exceeded.*`)

	_, err = ParseTransaction([]byte(`{"components": 1}`))
	c.Assert(err, qt.ErrorMatches, `invalid transaction: .*`)
}

func TestBitModeWitness(t *testing.T) {
	c := qt.New(t)
	l := testLayout(c, "issue")
	tx := &Transaction{
		PrivacySalt: bytes.Repeat([]byte{5}, 32),
		Components:  map[string][]any{"commands": {"Issue"}},
		Outputs: []State{{
			StateType: "Cash",
			Contract:  "cash",
			Data: map[string]any{
				"owner":  []any{1},
				"amount": map[string]any{"quantity": 1, "token": "EUR"},
			},
		}},
	}
	w, err := FromValues(l, tx)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Shape(), qt.Equals, NoUTXOs)
	c.Assert(w.Components(Commands)[0], qt.HasLen, 32)
	c.Assert(w.Components(Outputs)[0], qt.HasLen, l.ComponentLength(Outputs, 0))
	for _, u := range w.Components(Outputs)[0] {
		c.Assert(u <= 1, qt.IsTrue)
	}
	// the privacy salt stays raw bytes in bit mode
	c.Assert(w.PrivacySalt(), qt.DeepEquals, bytes.Repeat([]byte{5}, 32))
}

func TestHostValueMaps(t *testing.T) {
	c := qt.New(t)
	m := schema.NewFixedMap(2, schema.Uint(8), schema.NewOption(schema.Bool()))
	v, err := hostValue(m, []any{
		map[string]any{"key": json.Number("1"), "value": true},
		map[string]any{"key": json.Number("2"), "value": nil},
	})
	c.Assert(err, qt.IsNil)
	units, err := encodeValue(m, []any{
		map[string]any{"key": json.Number("1"), "value": true},
		map[string]any{"key": json.Number("2"), "value": nil},
	}, schema.ByteMode)
	c.Assert(err, qt.IsNil)
	c.Assert(units, qt.DeepEquals, []byte{0, 0, 0, 2, 1, 1, 1, 2, 0, 0})
	c.Assert(v, qt.HasLen, 2)

	_, err = hostValue(m, []any{1})
	c.Assert(err, qt.ErrorMatches, `type mismatch: map entry 0 is a int`)
}

func TestParseGroup(t *testing.T) {
	c := qt.New(t)
	g, err := ParseGroup("time_window")
	c.Assert(err, qt.IsNil)
	c.Assert(g, qt.Equals, TimeWindow)
	g, err = ParseGroup("SerializedInputUTXOs")
	c.Assert(err, qt.IsNil)
	c.Assert(g.Kind(), qt.Equals, KindUTXO)
	c.Assert(g.Hashed(), qt.IsFalse)
	c.Assert(Outputs.Hashed(), qt.IsTrue)
	c.Assert(PrivacySalt.JSONKey(), qt.Equals, "privacy_salt")
	_, err = ParseGroup("votes")
	c.Assert(err, qt.ErrorIs, ErrInvalidGroup)
	c.Assert(Group(42).String(), qt.Equals, "Group(42)")
}
