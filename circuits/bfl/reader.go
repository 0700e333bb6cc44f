// Package bfl reads fixed-length encoded values inside a gnark circuit. The
// Reader consumes witness units exactly like codec.Decode does on the host,
// so a circuit can rebuild any value from the same unit slice.
package bfl

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/ing-bank/zkflow-sub006/schema"
)

// Reader walks a slice of witness units. Every unit read is constrained to
// its mode: 0 or 1 in bit mode, below 256 in byte mode.
type Reader struct {
	api   frontend.API
	units []frontend.Variable
	mode  schema.Mode
	pos   int
}

// NewReader returns a reader over units encoded in mode.
func NewReader(api frontend.API, units []frontend.Variable, mode schema.Mode) *Reader {
	return &Reader{api: api, units: units, mode: mode}
}

// Mode returns the unit granularity.
func (r *Reader) Mode() schema.Mode { return r.mode }

// Offset returns the number of units consumed so far.
func (r *Reader) Offset() int { return r.pos }

// Remaining returns the number of units left.
func (r *Reader) Remaining() int { return len(r.units) - r.pos }

// Skip advances the reader by n units without reading them.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// take panics when the circuit layout asks for more units than available,
// which can only come from a schema/witness size mismatch at definition time.
func (r *Reader) take(n int) []frontend.Variable {
	if n < 0 || r.pos+n > len(r.units) {
		panic(fmt.Sprintf("bfl: reading %d units at offset %d of %d", n, r.pos, len(r.units)))
	}
	u := r.units[r.pos : r.pos+n]
	r.pos += n
	return u
}

// bits reads an n-bit integer and returns its bits, least significant first.
func (r *Reader) bits(n int) []frontend.Variable {
	if r.mode == schema.BitMode {
		units := r.take(n)
		out := make([]frontend.Variable, n)
		for i, u := range units {
			r.api.AssertIsBoolean(u)
			out[n-1-i] = u
		}
		return out
	}
	units := r.take(n / 8)
	out := make([]frontend.Variable, 0, n)
	for i := len(units) - 1; i >= 0; i-- {
		out = append(out, r.api.ToBinary(units[i], 8)...)
	}
	return out
}

// ReadBool reads a one unit flag constrained to 0 or 1.
func (r *Reader) ReadBool() frontend.Variable {
	u := r.take(1)[0]
	r.api.AssertIsBoolean(u)
	return u
}

// ReadUint reads an unsigned integer of the given width.
func (r *Reader) ReadUint(bits int) frontend.Variable {
	return r.api.FromBinary(r.bits(bits)...)
}

// ReadInt reads a two's complement integer of the given width and returns
// it as a signed field value (p - |v| for negative v).
func (r *Reader) ReadInt(bits int) frontend.Variable {
	b := r.bits(bits)
	magnitude := r.api.FromBinary(b[:bits-1]...)
	return r.api.Sub(magnitude, r.api.Mul(b[bits-1], pow2(bits-1)))
}

// ReadSize reads a size field and asserts it does not exceed capacity.
func (r *Reader) ReadSize(capacity int) frontend.Variable {
	size := r.ReadUint(schema.SizeBits)
	r.api.AssertIsLessOrEqual(size, capacity)
	return size
}

// ReadOrdinal reads an enum ordinal and asserts it names one of n variants.
func (r *Reader) ReadOrdinal(n int) frontend.Variable {
	o := r.ReadUint(schema.SizeBits)
	r.api.AssertIsLessOrEqual(o, n-1)
	return o
}

func pow2(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n))
}
