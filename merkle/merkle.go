// Package merkle derives the nonces and leaf hashes of a witness and the
// transaction id committing to all of them. The same computation runs in
// circuit in circuits/txwitness.
package merkle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/witness"
	"golang.org/x/sync/errgroup"
)

// ErrNoLeaves is returned when computing the root of an empty tree.
var ErrNoLeaves = errors.New("no leaves")

func be32(v int) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

// Nonce derives the nonce of the leaf at index in group from the privacy
// salt: H(salt || group || index), with group and index as big-endian
// uint32.
func Nonce(d digest.Digest, salt []byte, group witness.Group, index int) []byte {
	return d.Sum(salt, be32(int(group)), be32(index))
}

// LeafHash hashes a serialized component with its nonce.
func LeafHash(d digest.Digest, nonce, component []byte) []byte {
	return d.Sum(nonce, component)
}

// Root returns the root of the binary tree over leaves, padded with zero
// hashes to the next power of two. A single leaf is its own root.
func Root(d digest.Digest, leaves [][]byte) ([]byte, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}
	size := 1
	for size < len(leaves) {
		size *= 2
	}
	level := make([][]byte, size)
	copy(level, leaves)
	for i := len(leaves); i < size; i++ {
		level[i] = digest.ZeroHash(d)
	}
	for len(level) > 1 {
		next := make([][]byte, len(level)/2)
		for i := range next {
			next[i] = d.Sum(level[2*i], level[2*i+1])
		}
		level = next
	}
	return bytes.Clone(level[0]), nil
}

// GroupLeafHashes returns the leaf hashes of every component of g, which
// must be one of the component groups.
func GroupLeafHashes(d digest.Digest, w *witness.Witness, g witness.Group) ([][]byte, error) {
	if !g.Hashed() {
		return nil, fmt.Errorf("%w: %s is not leaf hashed", witness.ErrInvalidGroup, g)
	}
	salt := w.PrivacySalt()
	components := w.Components(g)
	hashes := make([][]byte, len(components))
	for i, c := range components {
		hashes[i] = LeafHash(d, Nonce(d, salt, g, i), c)
	}
	return hashes, nil
}

// GroupRoots returns the root of each component group in canonical order.
// Absent groups contribute the all ones hash. Groups are hashed
// concurrently.
func GroupRoots(d digest.Digest, w *witness.Witness) ([][]byte, error) {
	roots := make([][]byte, witness.NumComponentGroups)
	var eg errgroup.Group
	for _, g := range witness.ComponentGroups() {
		if !w.Present(g) {
			roots[g] = digest.AllOnesHash(d)
			continue
		}
		eg.Go(func() error {
			leaves, err := GroupLeafHashes(d, w, g)
			if err != nil {
				return err
			}
			root, err := Root(d, leaves)
			if err != nil {
				return fmt.Errorf("%s: %w", g, err)
			}
			roots[g] = root
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return roots, nil
}

// TransactionID returns the root over the group roots.
func TransactionID(d digest.Digest, w *witness.Witness) ([]byte, error) {
	roots, err := GroupRoots(d, w)
	if err != nil {
		return nil, err
	}
	return Root(d, roots)
}

// UTXOHashes returns the leaf hash of each UTXO under the nonce it was
// committed with, in canonical order. These must equal the output leaf
// hashes of the transactions that created the states.
func UTXOHashes(d digest.Digest, utxos []witness.UTXO) [][]byte {
	hashes := make([][]byte, len(utxos))
	for i, u := range utxos {
		hashes[i] = LeafHash(d, u.Nonce, u.Units)
	}
	return hashes
}
