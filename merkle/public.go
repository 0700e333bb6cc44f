package merkle

import (
	"bytes"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// PublicInput is what a verifier knows of a transaction: its id and the
// committed hashes of the states it consumes and references.
type PublicInput struct {
	InputHashes     []types.DecimalBytes `json:"input_hashes"`
	ReferenceHashes []types.DecimalBytes `json:"reference_hashes"`
	TransactionID   types.DecimalBytes   `json:"transaction_id"`
}

// NewPublicInput computes the public input of w.
func NewPublicInput(d digest.Digest, w *witness.Witness) (*PublicInput, error) {
	id, err := TransactionID(d, w)
	if err != nil {
		return nil, err
	}
	return &PublicInput{
		InputHashes:     types.DecimalBytesList(UTXOHashes(d, w.InputUTXOs())),
		ReferenceHashes: types.DecimalBytesList(UTXOHashes(d, w.ReferenceUTXOs())),
		TransactionID:   id,
	}, nil
}

// Mismatch is one public value the witness does not reproduce.
type Mismatch struct {
	Item     string         `json:"item"`
	Expected types.HexBytes `json:"expected,omitempty"`
	Actual   types.HexBytes `json:"actual,omitempty"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", m.Item, m.Expected, m.Actual)
}

// Result is the outcome of a verification. Valid is false as soon as one
// item mismatches.
type Result struct {
	Valid      bool       `json:"valid"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Verify recomputes the transaction id and the UTXO hashes of w and
// compares them with pub. A witness that cannot be hashed is reported as
// an error; any difference is reported in the result.
func Verify(d digest.Digest, w *witness.Witness, pub *PublicInput) (*Result, error) {
	id, err := TransactionID(d, w)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if !bytes.Equal(id, pub.TransactionID) {
		res.Mismatches = append(res.Mismatches, Mismatch{
			Item:     "transaction_id",
			Expected: types.HexBytes(pub.TransactionID),
			Actual:   id,
		})
	}
	res.Mismatches = append(res.Mismatches, compare("input_hashes", pub.InputHashes, UTXOHashes(d, w.InputUTXOs()))...)
	res.Mismatches = append(res.Mismatches, compare("reference_hashes", pub.ReferenceHashes, UTXOHashes(d, w.ReferenceUTXOs()))...)
	res.Valid = len(res.Mismatches) == 0
	return res, nil
}

func compare(item string, expected []types.DecimalBytes, actual [][]byte) []Mismatch {
	if len(expected) != len(actual) {
		return []Mismatch{{Item: fmt.Sprintf("%s: %d hashes, witness has %d", item, len(expected), len(actual))}}
	}
	var out []Mismatch
	for i := range expected {
		if !bytes.Equal(expected[i], actual[i]) {
			out = append(out, Mismatch{
				Item:     fmt.Sprintf("%s[%d]", item, i),
				Expected: types.HexBytes(expected[i]),
				Actual:   actual[i],
			})
		}
	}
	return out
}
