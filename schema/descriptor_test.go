package schema

import (
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

const testDescriptors = `
types:
  - name: Amount
    kind: struct
    fields:
      - {name: quantity, type: {kind: int64}}
      - {name: token, type: {kind: string, capacity: 8, encoding: ascii}}
  - name: Currency
    kind: enum
    variants: [EUR, USD]
  - name: Cash
    kind: struct
    fields:
      - {name: owner, type: {kind: list, capacity: 4, elem: {kind: uint8}}}
      - {name: amount, type: {ref: Amount}}
      - {name: currency, type: {kind: ref, ref: Currency}}
      - {name: rate, type: {kind: float64}}
      - {name: price, type: {kind: decimal, integerDigits: 10, fractionDigits: 2}}
      - {name: flag, type: {kind: char}}
      - {name: note, type: {kind: option, inner: {kind: string, capacity: 16}}}
      - {name: meta, type: {kind: map, capacity: 2, key: {kind: uint16}, value: {kind: bool}}}
`

func newTestResolver(c *qt.C) *Resolver {
	descs, err := ParseDescriptors([]byte(testDescriptors))
	c.Assert(err, qt.IsNil)
	r := NewResolver(nil)
	c.Assert(r.Register(descs...), qt.IsNil)
	return r
}

func TestResolve(t *testing.T) {
	c := qt.New(t)
	r := newTestResolver(c)
	c.Assert(r.Names(), qt.DeepEquals, []string{"Amount", "Cash", "Currency"})

	s, err := r.Resolve("Cash")
	c.Assert(err, qt.IsNil)
	cash := s.(*Struct)
	c.Assert(cash.Fields, qt.HasLen, 8)

	amount, err := r.Resolve("Amount")
	c.Assert(err, qt.IsNil)
	// named types resolve to the same pointer wherever they are used
	f, ok := cash.Field("amount")
	c.Assert(ok, qt.IsTrue)
	c.Assert(f.Schema, qt.Equals, amount)

	f, _ = cash.Field("rate")
	c.Assert(f.Schema.Name(), qt.Equals, "Float64")
	f, _ = cash.Field("price")
	c.Assert(f.Schema.Name(), qt.Equals, "DecimalI10F2")
	f, _ = cash.Field("note")
	c.Assert(String(f.Schema), qt.Equals, "Option<String<16, utf8>>")

	again, err := r.Resolve("Cash")
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, s)
	c.Assert(r.Cache().Keys(), qt.Contains, "type:Cash")
}

func TestResolveErrors(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		yaml string
		root string
		err  error
		msg  string
	}{{
		yaml: `types: [{name: A, kind: struct, fields: [{name: xs, type: {kind: list, elem: {kind: bool}}}]}]`,
		root: "A",
		err:  ErrMissingCapacityAnnotation,
		msg:  "resolve A at xs: missing capacity annotation",
	}, {
		yaml: `types: [{name: A, kind: struct, fields: [{name: s, type: {kind: string}}]}]`,
		root: "A",
		err:  ErrMissingCapacityAnnotation,
	}, {
		yaml: `types: [{name: A, kind: struct, fields: [{name: m, type: {kind: map, key: {kind: bool}, value: {kind: bool}}}]}]`,
		root: "A",
		err:  ErrMissingCapacityAnnotation,
	}, {
		yaml: `types: [{name: A, kind: struct, fields: [{name: b, type: {ref: B}}]}, {name: B, kind: struct, fields: [{name: a, type: {kind: option, inner: {ref: A}}}]}]`,
		root: "A",
		err:  ErrUnsupportedRecursiveType,
		msg:  "resolve A: unsupported recursive type: A -> B -> A",
	}, {
		yaml: `types: [{name: A, kind: struct, fields: [{name: self, type: {kind: list, capacity: 2, elem: {ref: A}}}]}]`,
		root: "A",
		err:  ErrUnsupportedRecursiveType,
	}, {
		yaml: `types: [{name: A, kind: surrogate, converter: missing, proxy: {kind: uint32}}]`,
		root: "A",
		err:  ErrMissingSurrogateConverter,
	}, {
		yaml: `types: [{name: A, kind: struct, fields: [{name: b, type: {ref: B}}]}]`,
		root: "A",
		err:  ErrUnknownType,
	}, {
		yaml: `types: [{name: A, kind: float128}]`,
		root: "A",
		err:  ErrInvalidDescriptor,
	}, {
		yaml: `types: [{name: A, kind: decimal, integerDigits: 3}]`,
		root: "A",
		err:  ErrMissingCapacityAnnotation,
	}}
	for _, tc := range tests {
		descs, err := ParseDescriptors([]byte(tc.yaml))
		c.Assert(err, qt.IsNil)
		r := NewResolver(nil)
		c.Assert(r.Register(descs...), qt.IsNil)
		_, err = r.Resolve(tc.root)
		c.Assert(err, qt.ErrorIs, tc.err, qt.Commentf(tc.yaml))
		if tc.msg != "" {
			c.Assert(err, qt.ErrorMatches, tc.msg)
		}
		var re *ResolveError
		c.Assert(errors.As(err, &re), qt.IsTrue)
		// failures are never cached
		c.Assert(r.Cache().Len(), qt.Equals, 0)
	}

	_, err := NewResolver(nil).Resolve("Nope")
	c.Assert(err, qt.ErrorIs, ErrUnknownType)
}

func TestRegisterErrors(t *testing.T) {
	c := qt.New(t)
	r := NewResolver(nil)
	c.Assert(r.Register(TypeDescriptor{Name: "A", Kind: "bool"}), qt.IsNil)
	c.Assert(r.Register(TypeDescriptor{Name: "A", Kind: "bool"}), qt.ErrorIs, ErrInvalidDescriptor)
	c.Assert(r.Register(TypeDescriptor{Kind: "bool"}), qt.ErrorIs, ErrInvalidDescriptor)

	_, err := ParseDescriptors([]byte("types: [[["))
	c.Assert(err, qt.ErrorIs, ErrInvalidDescriptor)
}

func TestResolveSurrogate(t *testing.T) {
	c := qt.New(t)
	r := NewResolver(nil)
	r.RegisterConverter("celsius", ConverterFuncs{
		To:   func(v any) (any, error) { return int32(v.(float64) * 100), nil },
		From: func(p any) (any, error) { return float64(p.(int32)) / 100, nil },
	})
	c.Assert(r.Register(TypeDescriptor{
		Name: "Celsius", Kind: "surrogate", Converter: "celsius", Proxy: &TypeDescriptor{Kind: "int32"},
	}), qt.IsNil)
	s, err := r.Resolve("Celsius")
	c.Assert(err, qt.IsNil)
	c.Assert(s.Kind(), qt.Equals, KindSurrogate)
	c.Assert(s.Length(ByteMode), qt.Equals, 4)
	c.Assert(Default(s), qt.Equals, float64(0))
}

func TestResolveDescriptor(t *testing.T) {
	c := qt.New(t)
	r := newTestResolver(c)
	capacity := 3
	s, err := r.ResolveDescriptor(&TypeDescriptor{
		Kind:     "list",
		Capacity: &capacity,
		Elem:     &TypeDescriptor{Ref: "Amount"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(String(s), qt.Equals, "List<3, Amount>")

	_, err = r.ResolveDescriptor(&TypeDescriptor{Kind: "list", Elem: &TypeDescriptor{Kind: "bool"}})
	c.Assert(err, qt.ErrorIs, ErrMissingCapacityAnnotation)
}

func TestResolveConcurrent(t *testing.T) {
	c := qt.New(t)
	r := newTestResolver(c)
	var wg sync.WaitGroup
	results := make([]Schema, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := r.Resolve([]string{"Cash", "Amount"}[i%2])
			if err == nil {
				results[i] = s
			}
		}()
	}
	wg.Wait()
	for i := range results {
		c.Assert(results[i], qt.Equals, results[i%2])
		c.Assert(results[i], qt.IsNotNil)
	}
}
