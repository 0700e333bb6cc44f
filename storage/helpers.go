package storage

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// outputKey truncates the hash of the transaction id and the output index to
// the key length of the outputs tree.
func outputKey(txID []byte, index int) []byte {
	data := binary.BigEndian.AppendUint32(append([]byte(nil), txID...), uint32(index))
	hash := sha256.Sum256(data)
	return hash[:outputsKeyLen]
}
