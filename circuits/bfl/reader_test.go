package bfl

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/codec"
	"github.com/ing-bank/zkflow-sub006/schema"
)

var testSchema = schema.NewStruct("Sample",
	schema.Field{Name: "flag", Schema: schema.Bool()},
	schema.Field{Name: "delta", Schema: schema.Int(16)},
	schema.Field{Name: "amount", Schema: schema.Uint(32)},
	schema.Field{Name: "color", Schema: schema.NewEnum("Color", "Red", "Green", "Blue")},
	schema.Field{Name: "scores", Schema: schema.NewFixedList(3, schema.Int(8))},
	schema.Field{Name: "label", Schema: schema.NewOption(schema.NewFixedString(2, schema.ASCII))},
)

var testValue = map[string]any{
	"flag":   true,
	"delta":  -300,
	"amount": uint32(70000),
	"color":  "Blue",
	"scores": []any{int8(-1), int8(5)},
	"label":  "ok",
}

type sampleCircuit struct {
	mode   schema.Mode `gnark:"-"`
	Units  []frontend.Variable
	Flag   frontend.Variable
	Delta  frontend.Variable
	Amount frontend.Variable
	Color  frontend.Variable
	Size   frontend.Variable
	First  frontend.Variable
	Label  [2]frontend.Variable
}

func (c *sampleCircuit) Define(api frontend.API) error {
	r := NewReader(api, c.Units, c.mode)
	n := Read(r, testSchema)
	if r.Remaining() != 0 {
		panic("units left after reading")
	}
	api.AssertIsEqual(n.Field("flag").Value, c.Flag)
	api.AssertIsEqual(n.Field("delta").Value, c.Delta)
	api.AssertIsEqual(n.Field("amount").Value, c.Amount)
	api.AssertIsEqual(n.Field("color").Value, c.Color)
	api.AssertIsEqual(n.Field("scores").Size, c.Size)
	api.AssertIsEqual(n.Field("scores").Items[0].Value, c.First)
	api.AssertIsEqual(n.Field("scores").Items[2].Value, 0)
	label := n.Field("label")
	api.AssertIsEqual(label.Present, 1)
	for i := range c.Label {
		api.AssertIsEqual(label.Inner.Items[i].Value, c.Label[i])
	}
	return nil
}

func unitsOf(b []byte) []frontend.Variable {
	units := make([]frontend.Variable, len(b))
	for i := range b {
		units[i] = b[i]
	}
	return units
}

func TestRead(t *testing.T) {
	c := qt.New(t)
	for _, m := range []schema.Mode{schema.ByteMode, schema.BitMode} {
		encoded, err := codec.Encode(testSchema, testValue, m)
		c.Assert(err, qt.IsNil)

		placeholder := &sampleCircuit{mode: m, Units: make([]frontend.Variable, len(encoded))}
		assignment := &sampleCircuit{
			mode:   m,
			Units:  unitsOf(encoded),
			Flag:   1,
			Delta:  -300,
			Amount: 70000,
			Color:  2,
			Size:   2,
			First:  -1,
			Label:  [2]frontend.Variable{'o', 'k'},
		}
		c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNil, qt.Commentf("mode %s", m))

		// a wrong expectation must not solve
		assignment.Delta = 300
		c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
	}
}

type boundCircuit struct {
	Units []frontend.Variable
}

func (c *boundCircuit) Define(api frontend.API) error {
	Read(NewReader(api, c.Units, schema.ByteMode), schema.NewFixedList(1, schema.Bool()))
	return nil
}

func TestReadRejectsMalformedUnits(t *testing.T) {
	c := qt.New(t)
	placeholder := &boundCircuit{Units: make([]frontend.Variable, 5)}
	// size above capacity
	c.Assert(test.IsSolved(placeholder, &boundCircuit{Units: unitsOf([]byte{0, 0, 0, 2, 1})}, ecc.BN254.ScalarField()), qt.IsNotNil)
	// flag out of range
	c.Assert(test.IsSolved(placeholder, &boundCircuit{Units: unitsOf([]byte{0, 0, 0, 1, 2})}, ecc.BN254.ScalarField()), qt.IsNotNil)
	// byte out of range
	c.Assert(test.IsSolved(placeholder, &boundCircuit{Units: []frontend.Variable{0, 0, 0, 256, 1}}, ecc.BN254.ScalarField()), qt.IsNotNil)
	c.Assert(test.IsSolved(placeholder, &boundCircuit{Units: unitsOf([]byte{0, 0, 0, 1, 1})}, ecc.BN254.ScalarField()), qt.IsNil)
}
