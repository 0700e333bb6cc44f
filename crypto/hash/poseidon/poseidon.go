// Package poseidon hashes arbitrary length inputs with the iden3 Poseidon
// permutation over the BN254 scalar field.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// maxInputs is the widest Poseidon instance supported by go-iden3-crypto.
const maxInputs = 16

// Sponge hashes an arbitrary number of field elements by absorbing them in
// blocks of 15 next to the running state:
//
//	state_0 = 0
//	state_i = Poseidon(state_{i-1}, block_i...)
//
// There is no upper bound on the number of inputs, so serialized components
// of any size can be hashed.
func Sponge(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	state := big.NewInt(0)
	for start := 0; start < len(inputs); start += maxInputs - 1 {
		end := min(start+maxInputs-1, len(inputs))
		block := append([]*big.Int{state}, inputs[start:end]...)
		next, err := poseidon.Hash(block)
		if err != nil {
			return nil, err
		}
		state = next
	}
	return state, nil
}
