package circuits

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
)

// HashSize is the number of byte units of an in-circuit digest.
const HashSize = digest.Size

// Hash is an in-circuit digest, kept both as its field element and as its
// 32 big-endian byte units. Elem is nil for constants that are not field
// elements, like the all ones root of an absent group.
type Hash struct {
	Elem  frontend.Variable
	Bytes []frontend.Variable
}

// NewHash decomposes a digest field element into its byte units.
func NewHash(api frontend.API, elem frontend.Variable) Hash {
	return Hash{Elem: elem, Bytes: FieldBytes(api, elem)}
}

// ConstHash returns the hash with the given constant bytes.
func ConstHash(b []byte) Hash {
	return Hash{Bytes: ConstBytes(b)}
}

// ConstBytes turns host bytes into constant byte units.
func ConstBytes(b []byte) []frontend.Variable {
	units := make([]frontend.Variable, len(b))
	for i := range b {
		units[i] = b[i]
	}
	return units
}

// FieldBytes returns the 32 big-endian byte units of v. The decomposition
// uses the full field bit length, so it is unique.
func FieldBytes(api frontend.API, v frontend.Variable) []frontend.Variable {
	bits := api.ToBinary(v, api.Compiler().FieldBitLen())
	for len(bits) < 8*HashSize {
		bits = append(bits, 0)
	}
	out := make([]frontend.Variable, HashSize)
	for i := range out {
		lo := 8 * (HashSize - 1 - i)
		out[i] = api.FromBinary(bits[lo : lo+8]...)
	}
	return out
}

// HashBytes returns the MiMC digest of the concatenation of parts, packed
// exactly like digest.MiMC: 31 byte chunks followed by the byte length. Every
// unit is constrained to a byte.
func HashBytes(api frontend.API, parts ...[]frontend.Variable) (frontend.Variable, error) {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return nil, fmt.Errorf("failed to create mimc hasher: %w", err)
	}
	var data []frontend.Variable
	for _, p := range parts {
		data = append(data, p...)
	}
	for start := 0; start < len(data); start += digest.ChunkSize {
		end := min(start+digest.ChunkSize, len(data))
		var acc frontend.Variable = 0
		for _, u := range data[start:end] {
			api.ToBinary(u, 8)
			acc = api.Add(api.Mul(acc, 256), u)
		}
		h.Write(acc)
	}
	h.Write(len(data))
	return h.Sum(), nil
}

func uint32Bytes(v int) []frontend.Variable {
	return ConstBytes(binary.BigEndian.AppendUint32(nil, uint32(v)))
}

// Nonce derives the nonce of leaf index of group from the privacy salt.
func Nonce(api frontend.API, salt []frontend.Variable, group, index int) (Hash, error) {
	elem, err := HashBytes(api, salt, uint32Bytes(group), uint32Bytes(index))
	if err != nil {
		return Hash{}, err
	}
	return NewHash(api, elem), nil
}

// LeafHash hashes a serialized component with its nonce.
func LeafHash(api frontend.API, nonce, component []frontend.Variable) (Hash, error) {
	elem, err := HashBytes(api, nonce, component)
	if err != nil {
		return Hash{}, err
	}
	return NewHash(api, elem), nil
}

// MerkleRoot computes the root of leaves padded with zero hashes to the next
// power of two. A single leaf is its own root.
func MerkleRoot(api frontend.API, leaves []Hash) (Hash, error) {
	if len(leaves) == 0 {
		return Hash{}, fmt.Errorf("no leaves")
	}
	size := 1
	for size < len(leaves) {
		size *= 2
	}
	level := make([]Hash, size)
	copy(level, leaves)
	for i := len(leaves); i < size; i++ {
		level[i] = Hash{Elem: 0, Bytes: ConstBytes(make([]byte, HashSize))}
	}
	for len(level) > 1 {
		next := make([]Hash, len(level)/2)
		for i := range next {
			elem, err := HashBytes(api, level[2*i].Bytes, level[2*i+1].Bytes)
			if err != nil {
				return Hash{}, err
			}
			next[i] = NewHash(api, elem)
		}
		level = next
	}
	return level[0], nil
}
