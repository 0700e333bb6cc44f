// Package digest provides the 32-byte hash functions used to derive leaf
// nonces, leaf hashes and Merkle nodes. Every implementation hashes the
// concatenation of its input parts, so Sum(a, b) == Sum(append(a, b...)).
package digest

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ing-bank/zkflow-sub006/crypto/hash/poseidon"
	blake2b "github.com/minio/blake2b-simd"
	sha256 "github.com/minio/sha256-simd"
)

// Size is the output length in bytes of every builtin digest.
const Size = 32

// ChunkSize is the number of input bytes packed into one BN254 field element
// by the field-friendly digests. 31 bytes always fit below the modulus.
const ChunkSize = 31

const (
	NameBlake2b256 = "blake2b256"
	NameSHA256     = "sha256"
	NameMiMC       = "mimc"
	NamePoseidon   = "poseidon"
)

// DefaultPersonalization is the Blake2b personalization used when none is
// given to ByName.
var DefaultPersonalization = []byte("zkflow-bfl-v1\x00\x00\x00")

// Digest is a hash function producing a fixed-size output.
type Digest interface {
	Name() string
	Size() int
	Sum(parts ...[]byte) []byte
}

// ByName returns the builtin digest registered under name.
func ByName(name string) (Digest, error) {
	switch name {
	case NameBlake2b256, "":
		return Blake2b256(DefaultPersonalization)
	case NameSHA256:
		return SHA256(), nil
	case NameMiMC:
		return MiMC(), nil
	case NamePoseidon:
		return Poseidon(), nil
	default:
		return nil, fmt.Errorf("unknown digest %q", name)
	}
}

// Names lists the builtin digest names.
func Names() []string {
	return []string{NameBlake2b256, NameSHA256, NameMiMC, NamePoseidon}
}

// ZeroHash returns a hash-sized value of zero bytes, used to pad Merkle trees.
func ZeroHash(d Digest) []byte {
	return make([]byte, d.Size())
}

// AllOnesHash returns a hash-sized value of 0xff bytes, used as the root of
// an absent component group.
func AllOnesHash(d Digest) []byte {
	return bytes.Repeat([]byte{0xff}, d.Size())
}

type blake2bDigest struct {
	person []byte
}

// Blake2b256 returns a Blake2b digest with a 32-byte output and the given
// personalization (at most 16 bytes, may be nil).
func Blake2b256(personalization []byte) (Digest, error) {
	if len(personalization) > 16 {
		return nil, fmt.Errorf("blake2b personalization too long: %d bytes", len(personalization))
	}
	return &blake2bDigest{person: bytes.Clone(personalization)}, nil
}

func (*blake2bDigest) Name() string { return NameBlake2b256 }

func (*blake2bDigest) Size() int { return Size }

func (d *blake2bDigest) Sum(parts ...[]byte) []byte {
	h, err := blake2b.New(&blake2b.Config{Size: Size, Person: d.person})
	if err != nil {
		// the config is validated by Blake2b256
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

type sha256Digest struct{}

// SHA256 returns a SHA-256 digest.
func SHA256() Digest { return sha256Digest{} }

func (sha256Digest) Name() string { return NameSHA256 }

func (sha256Digest) Size() int { return Size }

func (sha256Digest) Sum(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// FieldElements packs data into BN254 scalar field elements: consecutive
// ChunkSize-byte big-endian chunks (the last one possibly shorter) followed
// by one element holding the total byte length. The trailing length keeps
// inputs that differ only in trailing zero bytes apart.
func FieldElements(data []byte) []fr.Element {
	elems := make([]fr.Element, 0, len(data)/ChunkSize+2)
	for start := 0; start < len(data); start += ChunkSize {
		end := min(start+ChunkSize, len(data))
		var e fr.Element
		e.SetBytes(data[start:end])
		elems = append(elems, e)
	}
	var l fr.Element
	l.SetUint64(uint64(len(data)))
	return append(elems, l)
}

type mimcDigest struct{}

// MiMC returns the BN254 MiMC digest. The input is packed with FieldElements
// so that the same value can be recomputed inside a gnark circuit.
func MiMC() Digest { return mimcDigest{} }

func (mimcDigest) Name() string { return NameMiMC }

func (mimcDigest) Size() int { return Size }

func (mimcDigest) Sum(parts ...[]byte) []byte {
	h := mimc.NewMiMC()
	for _, e := range FieldElements(bytes.Join(parts, nil)) {
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			// canonical elements are always accepted
			panic(err)
		}
	}
	return h.Sum(nil)
}

type poseidonDigest struct{}

// Poseidon returns the BN254 Poseidon digest (iden3 parameters). The input
// is packed with FieldElements and absorbed with poseidon.Sponge.
func Poseidon() Digest { return poseidonDigest{} }

func (poseidonDigest) Name() string { return NamePoseidon }

func (poseidonDigest) Size() int { return Size }

func (poseidonDigest) Sum(parts ...[]byte) []byte {
	elems := FieldElements(bytes.Join(parts, nil))
	inputs := make([]*big.Int, len(elems))
	for i := range elems {
		inputs[i] = new(big.Int)
		elems[i].BigInt(inputs[i])
	}
	res, err := poseidon.Sponge(inputs...)
	if err != nil {
		// inputs are non-empty and reduced
		panic(err)
	}
	out := make([]byte, Size)
	return res.FillBytes(out)
}
