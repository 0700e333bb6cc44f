package schema

import (
	"encoding/json"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"
)

func TestFloatConverter(t *testing.T) {
	c := qt.New(t)
	f64 := NewFloat(64, Float64IntegerDigits, Float64FractionDigits)
	c.Assert(f64.Name(), qt.Equals, "Float64")
	for _, v := range []float64{0, 1, -1, 3.25, -0.125, 1e300, math.SmallestNonzeroFloat64, math.MaxFloat64, math.Inf(1), math.Inf(-1)} {
		p, err := f64.Converter.ToProxy(v)
		c.Assert(err, qt.IsNil)
		back, err := f64.Converter.FromProxy(p)
		c.Assert(err, qt.IsNil)
		c.Assert(back, qt.Equals, v)
	}

	p, err := f64.Converter.ToProxy(12.5)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.DeepEquals, map[string]any{
		"kind":     "Finite",
		"negative": false,
		"integer":  []any{uint8(1), uint8(2)},
		"fraction": []any{uint8(5)},
	})

	p, err = f64.Converter.ToProxy(math.Copysign(0, -1))
	c.Assert(err, qt.IsNil)
	back, err := f64.Converter.FromProxy(p)
	c.Assert(err, qt.IsNil)
	c.Assert(math.Signbit(back.(float64)), qt.IsTrue)

	p, err = f64.Converter.ToProxy(math.NaN())
	c.Assert(err, qt.IsNil)
	back, err = f64.Converter.FromProxy(p)
	c.Assert(err, qt.IsNil)
	c.Assert(math.IsNaN(back.(float64)), qt.IsTrue)

	_, err = f64.Converter.ToProxy("1.0")
	c.Assert(err, qt.ErrorMatches, "expected float, got string")
}

func TestFloat32Converter(t *testing.T) {
	c := qt.New(t)
	f32 := NewFloat(32, Float32IntegerDigits, Float32FractionDigits)
	for _, v := range []float32{0.1, -2.5, math.MaxFloat32, math.SmallestNonzeroFloat32} {
		p, err := f32.Converter.ToProxy(v)
		c.Assert(err, qt.IsNil)
		m := p.(map[string]any)
		c.Assert(len(m["integer"].([]any)) <= Float32IntegerDigits, qt.IsTrue)
		c.Assert(len(m["fraction"].([]any)) <= Float32FractionDigits, qt.IsTrue)
		back, err := f32.Converter.FromProxy(p)
		c.Assert(err, qt.IsNil)
		c.Assert(back, qt.Equals, v)
	}
	_, err := f32.Converter.ToProxy(0.1)
	c.Assert(err, qt.ErrorMatches, "0.1 is not representable as float32")

	custom := NewFloat(32, 3, 2)
	c.Assert(custom.Name(), qt.Equals, "Float32I3F2")
}

func TestDecimalConverter(t *testing.T) {
	c := qt.New(t)
	d := NewDecimal(4, 4)
	for in, want := range map[string]string{
		"12.5":     "12.5",
		"-0012.50": "-12.5",
		"+7":       "7",
		"-0.0":     "0",
		".25":      "0.25",
		"1.5e2":    "150",
		"25e-4":    "0.0025",
	} {
		p, err := d.Converter.ToProxy(in)
		c.Assert(err, qt.IsNil, qt.Commentf(in))
		out, err := d.Converter.FromProxy(p)
		c.Assert(err, qt.IsNil)
		c.Assert(out.(decimal.Decimal).String(), qt.Equals, want, qt.Commentf(in))
	}
	for _, in := range []string{"", "-", "1.2.3", "1e", "abc"} {
		_, err := d.Converter.ToProxy(in)
		c.Assert(err, qt.ErrorMatches, "invalid decimal.*", qt.Commentf(in))
	}
	_, err := d.Converter.ToProxy(1.5)
	c.Assert(err, qt.ErrorMatches, "expected decimal, got float64")
}

func TestDecimalConverterDigits(t *testing.T) {
	c := qt.New(t)
	d := NewDecimal(4, 3)
	digits := func(s ...uint8) []any {
		l := make([]any, len(s))
		for i, x := range s {
			l[i] = x
		}
		return l
	}
	for _, tc := range []struct {
		in   any
		want map[string]any
	}{
		{decimal.RequireFromString("1.50"), map[string]any{"negative": false, "integer": digits(1), "fraction": digits(5)}},
		{decimal.New(-1205, -3), map[string]any{"negative": true, "integer": digits(1), "fraction": digits(2, 0, 5)}},
		{decimal.New(12, 2), map[string]any{"negative": false, "integer": digits(1, 2, 0, 0), "fraction": digits()}},
		{decimal.New(7, -3), map[string]any{"negative": false, "integer": digits(), "fraction": digits(0, 0, 7)}},
		{decimal.Zero, map[string]any{"negative": false, "integer": digits(), "fraction": digits()}},
		{json.Number("0.10"), map[string]any{"negative": false, "integer": digits(), "fraction": digits(1)}},
	} {
		p, err := d.Converter.ToProxy(tc.in)
		c.Assert(err, qt.IsNil)
		c.Assert(p, qt.DeepEquals, tc.want, qt.Commentf("%v", tc.in))
		back, err := d.Converter.FromProxy(p)
		c.Assert(err, qt.IsNil)
		c.Assert(back.(decimal.Decimal).Equal(decimalValue(c, tc.in)), qt.IsTrue, qt.Commentf("%v", back))
	}

	// digits past the capacity are cut one beyond it
	p, err := d.Converter.ToProxy(decimal.New(1, 400))
	c.Assert(err, qt.IsNil)
	c.Assert(p.(map[string]any)["integer"], qt.HasLen, 5)
	p, err = d.Converter.ToProxy(decimal.New(1, -400))
	c.Assert(err, qt.IsNil)
	c.Assert(p.(map[string]any)["fraction"], qt.HasLen, 4)

	def := Default(d)
	c.Assert(def.(decimal.Decimal).IsZero(), qt.IsTrue)
}

func decimalValue(c *qt.C, v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case json.Number:
		return decimal.RequireFromString(string(x))
	}
	c.Fatalf("unexpected %T", v)
	return decimal.Decimal{}
}

func TestCharConverter(t *testing.T) {
	c := qt.New(t)
	ch := NewChar()
	p, err := ch.Converter.ToProxy('€')
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.Equals, uint32(0x20ac))
	back, err := ch.Converter.FromProxy(p)
	c.Assert(err, qt.IsNil)
	c.Assert(back, qt.Equals, '€')

	_, err = ch.Converter.FromProxy(uint32(0xd800))
	c.Assert(err, qt.ErrorMatches, "invalid code point 55296")
}
