// Package txwitness implements the circuit proving that a transaction
// witness hashes to a public transaction id and that the states it consumes
// and references hash to previously committed values.
package txwitness

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

type Circuit struct {
	// ---------------------------------------------------------------------------------------------
	// PUBLIC INPUTS

	TransactionID   frontend.Variable   `gnark:",public"`
	InputHashes     []frontend.Variable `gnark:",public"`
	ReferenceHashes []frontend.Variable `gnark:",public"`

	// ---------------------------------------------------------------------------------------------
	// SECRET INPUTS

	PrivacySalt     []frontend.Variable
	Groups          [witness.NumComponentGroups][][]frontend.Variable
	InputUTXOs      [][]frontend.Variable
	InputNonces     [][]frontend.Variable
	ReferenceUTXOs  [][]frontend.Variable
	ReferenceNonces [][]frontend.Variable
}

// Define declares the circuit's constraints
func (c *Circuit) Define(api frontend.API) error {
	if len(c.PrivacySalt) != digest.Size {
		circuits.FrontendError(api, "invalid privacy salt", fmt.Errorf("%d units, want %d", len(c.PrivacySalt), digest.Size))
		return nil
	}
	if err := c.VerifyTransactionID(api); err != nil {
		return err
	}
	if err := VerifyUTXOHashes(api, c.InputUTXOs, c.InputNonces, c.InputHashes); err != nil {
		return fmt.Errorf("input utxos: %w", err)
	}
	if err := VerifyUTXOHashes(api, c.ReferenceUTXOs, c.ReferenceNonces, c.ReferenceHashes); err != nil {
		return fmt.Errorf("reference utxos: %w", err)
	}
	return nil
}

// VerifyTransactionID recomputes the leaf hashes and root of every
// component group and asserts the root over them is the public
// transaction id.
func (c *Circuit) VerifyTransactionID(api frontend.API) error {
	allOnes := circuits.ConstHash(digest.AllOnesHash(Digest()))
	roots := make([]circuits.Hash, witness.NumComponentGroups)
	for g, components := range c.Groups {
		if len(components) == 0 {
			roots[g] = allOnes
			continue
		}
		leaves := make([]circuits.Hash, len(components))
		for i, component := range components {
			nonce, err := circuits.Nonce(api, c.PrivacySalt, g, i)
			if err != nil {
				return err
			}
			if leaves[i], err = circuits.LeafHash(api, nonce.Bytes, component); err != nil {
				return err
			}
		}
		root, err := circuits.MerkleRoot(api, leaves)
		if err != nil {
			return fmt.Errorf("%s: %w", witness.Group(g), err)
		}
		roots[g] = root
	}
	id, err := circuits.MerkleRoot(api, roots)
	if err != nil {
		return err
	}
	api.AssertIsEqual(id.Elem, c.TransactionID)
	return nil
}

// VerifyUTXOHashes asserts each serialized state hashed with its nonce
// gives the committed hash.
func VerifyUTXOHashes(api frontend.API, utxos, nonces [][]frontend.Variable, hashes []frontend.Variable) error {
	if len(utxos) != len(hashes) || len(nonces) != len(hashes) {
		return fmt.Errorf("%d states, %d nonces and %d hashes", len(utxos), len(nonces), len(hashes))
	}
	for i := range utxos {
		h, err := circuits.LeafHash(api, nonces[i], utxos[i])
		if err != nil {
			return err
		}
		api.AssertIsEqual(h.Elem, hashes[i])
	}
	return nil
}

func units(lengths []int) [][]frontend.Variable {
	out := make([][]frontend.Variable, len(lengths))
	for i, n := range lengths {
		out[i] = make([]frontend.Variable, n)
	}
	return out
}

func lengths(n int, length func(i int) int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = length(i)
	}
	return out
}

func fixed(n, length int) []int {
	return lengths(n, func(int) int { return length })
}

// NewPlaceholder returns the circuit shaped for witnesses of layout l, as
// needed to compile it.
func NewPlaceholder(l *witness.Layout) *Circuit {
	c := &Circuit{
		PrivacySalt: make([]frontend.Variable, digest.Size),
	}
	for _, g := range witness.ComponentGroups() {
		c.Groups[g] = units(lengths(l.Count(g), func(i int) int { return l.ComponentLength(g, i) }))
	}
	in := l.Count(witness.SerializedInputUTXOs)
	ref := l.Count(witness.SerializedReferenceUTXOs)
	c.InputUTXOs = units(lengths(in, func(i int) int { return l.ComponentLength(witness.SerializedInputUTXOs, i) }))
	c.InputNonces = units(fixed(in, digest.Size))
	c.InputHashes = make([]frontend.Variable, in)
	c.ReferenceUTXOs = units(lengths(ref, func(i int) int { return l.ComponentLength(witness.SerializedReferenceUTXOs, i) }))
	c.ReferenceNonces = units(fixed(ref, digest.Size))
	c.ReferenceHashes = make([]frontend.Variable, ref)
	return c
}

// Placeholder returns the circuit shaped like w. It allows compiling for a
// witness parsed from its payload, which carries no layout.
func Placeholder(w *witness.Witness) *Circuit {
	c := &Circuit{
		PrivacySalt: make([]frontend.Variable, digest.Size),
	}
	size := func(g witness.Group) []int {
		components := w.Components(g)
		return lengths(len(components), func(i int) int { return len(components[i]) })
	}
	for _, g := range witness.ComponentGroups() {
		c.Groups[g] = units(size(g))
	}
	c.InputUTXOs = units(size(witness.SerializedInputUTXOs))
	c.InputNonces = units(size(witness.InputNonces))
	c.InputHashes = make([]frontend.Variable, len(c.InputUTXOs))
	c.ReferenceUTXOs = units(size(witness.SerializedReferenceUTXOs))
	c.ReferenceNonces = units(size(witness.ReferenceNonces))
	c.ReferenceHashes = make([]frontend.Variable, len(c.ReferenceUTXOs))
	return c
}

func assignUnits(b []byte) []frontend.Variable {
	out := make([]frontend.Variable, len(b))
	for i, u := range b {
		out[i] = u
	}
	return out
}

func assignAll(list [][]byte) [][]frontend.Variable {
	out := make([][]frontend.Variable, len(list))
	for i, b := range list {
		out[i] = assignUnits(b)
	}
	return out
}

func bigInt(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

func bytesList(list []types.DecimalBytes) [][]byte { return types.BytesList(list) }

func assignHashes(hashes [][]byte) []frontend.Variable {
	out := make([]frontend.Variable, len(hashes))
	for i, h := range hashes {
		out[i] = bigInt(h)
	}
	return out
}

// Assign returns the full assignment of the circuit for w and its public
// input, which must have been computed with the MiMC digest.
func Assign(w *witness.Witness, pub *merkle.PublicInput) (*Circuit, error) {
	if len(pub.InputHashes) != w.Count(witness.SerializedInputUTXOs) ||
		len(pub.ReferenceHashes) != w.Count(witness.SerializedReferenceUTXOs) {
		return nil, fmt.Errorf("public input does not match the witness UTXOs")
	}
	c := &Circuit{
		TransactionID:   bigInt(pub.TransactionID),
		InputHashes:     assignHashes(bytesList(pub.InputHashes)),
		ReferenceHashes: assignHashes(bytesList(pub.ReferenceHashes)),
		PrivacySalt:     assignUnits(w.PrivacySalt()),
		InputUTXOs:      assignAll(w.Components(witness.SerializedInputUTXOs)),
		InputNonces:     assignAll(w.Components(witness.InputNonces)),
		ReferenceUTXOs:  assignAll(w.Components(witness.SerializedReferenceUTXOs)),
		ReferenceNonces: assignAll(w.Components(witness.ReferenceNonces)),
	}
	for _, g := range witness.ComponentGroups() {
		c.Groups[g] = assignAll(w.Components(g))
	}
	return c, nil
}

// Compile returns the constraint system of the circuit for layout l.
func Compile(l *witness.Layout) (constraint.ConstraintSystem, error) {
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewPlaceholder(l))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", l.Name, err)
	}
	return cs, nil
}
