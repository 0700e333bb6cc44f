package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// WitnessRecord is a stored witness with the layout and digest it was built
// and hashed with.
type WitnessRecord struct {
	TransactionID types.HexBytes `cbor:"0,keyasint" json:"transactionId"`
	Layout        string         `cbor:"1,keyasint" json:"layout"`
	Digest        string         `cbor:"2,keyasint" json:"digest"`
	Payload       []byte         `cbor:"3,keyasint" json:"-"`
	CreatedAt     time.Time      `cbor:"4,keyasint" json:"createdAt"`
}

// Witness decodes the stored witness payload. The witness carries no layout.
func (r *WitnessRecord) Witness() (*witness.Witness, error) {
	w := &witness.Witness{}
	if err := json.Unmarshal(r.Payload, w); err != nil {
		return nil, fmt.Errorf("could not decode witness %x: %w", r.TransactionID, err)
	}
	return w, nil
}

// SetWitness stores w under txID.
func (s *Storage) SetWitness(txID []byte, layout, digest string, w *witness.Witness) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("could not encode witness: %w", err)
	}
	record := &WitnessRecord{
		TransactionID: txID,
		Layout:        layout,
		Digest:        digest,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.setArtifact(witnessPrefix, txID, record); err != nil {
		return fmt.Errorf("could not store witness: %w", err)
	}
	log.Debugw("witness stored", "txid", types.HexBytes(txID).String(), "layout", layout, "size", len(payload))
	return nil
}

// Witness returns the witness record stored under txID or ErrNotFound.
func (s *Storage) Witness(txID []byte) (*WitnessRecord, error) {
	record := &WitnessRecord{}
	if err := s.getArtifact(witnessPrefix, txID, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListWitnesses returns the transaction ids of the stored witnesses.
func (s *Storage) ListWitnesses() ([]types.HexBytes, error) {
	keys, err := s.listArtifacts(witnessPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]types.HexBytes, len(keys))
	for i, k := range keys {
		ids[i] = k
	}
	return ids, nil
}

// SetPublicInput stores the public input of the transaction txID.
func (s *Storage) SetPublicInput(txID []byte, pub *merkle.PublicInput) error {
	return s.setArtifact(publicPrefix, txID, pub)
}

// PublicInput returns the public input stored for txID or ErrNotFound.
func (s *Storage) PublicInput(txID []byte) (*merkle.PublicInput, error) {
	pub := &merkle.PublicInput{}
	if err := s.getArtifact(publicPrefix, txID, pub); err != nil {
		return nil, err
	}
	return pub, nil
}

// SetSource stores the generated circuit source of a layout.
func (s *Storage) SetSource(layout string, source []byte) error {
	return s.setArtifact(sourcePrefix, []byte(layout), source)
}

// Source returns the generated circuit source of a layout or ErrNotFound.
func (s *Storage) Source(layout string) ([]byte, error) {
	var source []byte
	if err := s.getArtifact(sourcePrefix, []byte(layout), &source); err != nil {
		return nil, err
	}
	return source, nil
}
