package cashtypes

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/circuits/bfl"
	"github.com/ing-bank/zkflow-sub006/codec"
	"github.com/ing-bank/zkflow-sub006/schema"
)

type cashCircuit struct {
	Units    [CashUnits]frontend.Variable
	Owner    [2]frontend.Variable
	Quantity frontend.Variable
	Currency frontend.Variable
	Note     [3]frontend.Variable
	Initial  frontend.Variable
}

func (c *cashCircuit) Define(api frontend.API) error {
	r := bfl.NewReader(api, c.Units[:], schema.ByteMode)
	v := DeserializeCash(api, r)
	if r.Remaining() != 0 {
		return fmt.Errorf("%d units left after reading", r.Remaining())
	}
	api.AssertIsEqual(v.Owner.Size, 2)
	for i := range c.Owner {
		api.AssertIsEqual(v.Owner.Items[i], c.Owner[i])
	}
	api.AssertIsEqual(v.Quantity, c.Quantity)
	api.AssertIsEqual(v.Currency, c.Currency)
	api.AssertIsEqual(v.Note.Present, 1)
	api.AssertIsEqual(v.Note.Value.Length, 2)
	for i := range c.Note {
		api.AssertIsEqual(v.Note.Value.Units[i], c.Note[i])
	}
	api.AssertIsEqual(v.Initial, c.Initial)
	return nil
}

func unitsOf(b []byte) [CashUnits]frontend.Variable {
	var units [CashUnits]frontend.Variable
	for i := range b {
		units[i] = b[i]
	}
	return units
}

func TestDeserializeCash(t *testing.T) {
	c := qt.New(t)
	encoded, err := codec.Encode(Schema(), map[string]any{
		"owner":    []any{uint8(0xde), uint8(0xad)},
		"quantity": int32(-5),
		"currency": "USD",
		"note":     "ok",
		"initial":  'Z',
	}, schema.ByteMode)
	c.Assert(err, qt.IsNil)
	c.Assert(encoded, qt.HasLen, CashUnits)
	c.Assert(Schema().Length(schema.ByteMode), qt.Equals, CashUnits)

	assignment := &cashCircuit{
		Units:    unitsOf(encoded),
		Owner:    [2]frontend.Variable{0xde, 0xad},
		Quantity: -5,
		Currency: CurrencyUSD,
		Note:     [3]frontend.Variable{'o', 'k', 0},
		Initial:  'Z',
	}
	c.Assert(test.IsSolved(&cashCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNil)

	// a wrong expectation must not solve
	assignment.Currency = CurrencyEUR
	c.Assert(test.IsSolved(&cashCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)

	// owner size above capacity
	encoded[3] = 3
	assignment = &cashCircuit{
		Units:    unitsOf(encoded),
		Owner:    [2]frontend.Variable{0xde, 0xad},
		Quantity: -5,
		Currency: CurrencyUSD,
		Note:     [3]frontend.Variable{'o', 'k', 0},
		Initial:  'Z',
	}
	c.Assert(test.IsSolved(&cashCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

type defaultCircuit struct {
	Units [CashUnits]frontend.Variable
}

func (c *defaultCircuit) Define(api frontend.API) error {
	v := DeserializeCash(api, bfl.NewReader(api, c.Units[:], schema.ByteMode))
	d := DefaultCash()
	api.AssertIsEqual(v.Owner.Size, d.Owner.Size)
	for i := range v.Owner.Items {
		api.AssertIsEqual(v.Owner.Items[i], d.Owner.Items[i])
	}
	api.AssertIsEqual(v.Quantity, d.Quantity)
	api.AssertIsEqual(v.Currency, d.Currency)
	api.AssertIsEqual(v.Note.Present, d.Note.Present)
	api.AssertIsEqual(v.Note.Value.Length, d.Note.Value.Length)
	for i := range v.Note.Value.Units {
		api.AssertIsEqual(v.Note.Value.Units[i], d.Note.Value.Units[i])
	}
	api.AssertIsEqual(v.Initial, d.Initial)
	return nil
}

func TestDefaultCash(t *testing.T) {
	c := qt.New(t)
	zeros := make([]byte, CashUnits)
	c.Assert(test.IsSolved(&defaultCircuit{}, &defaultCircuit{Units: unitsOf(zeros)}, ecc.BN254.ScalarField()), qt.IsNil)

	zeros[0] = 1
	c.Assert(test.IsSolved(&defaultCircuit{}, &defaultCircuit{Units: unitsOf(zeros)}, ecc.BN254.ScalarField()), qt.IsNotNil)
}
