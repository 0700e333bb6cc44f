package api

import (
	"encoding/json"
	"time"

	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// Layouts is the response to a layouts list request.
type Layouts struct {
	Layouts []string `json:"layouts"`
}

// GroupInfo describes the components of a group of a layout.
type GroupInfo struct {
	Group  string `json:"group"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Length int    `json:"length"`
}

// SlotInfo describes a state slot of a layout.
type SlotInfo struct {
	StateType string `json:"stateType"`
	Type      string `json:"type"`
	Length    int    `json:"length"`
}

// LayoutInfo is the response to a layout request.
type LayoutInfo struct {
	Name             string      `json:"name"`
	Mode             string      `json:"mode"`
	ContractCapacity int         `json:"contractCapacity"`
	Groups           []GroupInfo `json:"groups"`
	Outputs          []SlotInfo  `json:"outputs"`
	InputUTXOs       []SlotInfo  `json:"inputUtxos"`
	ReferenceUTXOs   []SlotInfo  `json:"referenceUtxos"`
}

// NewWitness is the request to build and store a witness.
type NewWitness struct {
	Layout      string               `json:"layout"`
	Transaction *witness.Transaction `json:"transaction"`
}

// WitnessResponse is the response to a witness creation request.
type WitnessResponse struct {
	TransactionID types.HexBytes      `json:"transactionId"`
	Layout        string              `json:"layout"`
	Digest        string              `json:"digest"`
	Shape         string              `json:"shape"`
	PublicInput   *merkle.PublicInput `json:"publicInput"`
}

// WitnessList is the response to a witnesses list request.
type WitnessList struct {
	Witnesses []types.HexBytes `json:"witnesses"`
}

// StoredWitness is the response to a witness request. Payload holds the
// witness JSON document.
type StoredWitness struct {
	TransactionID types.HexBytes  `json:"transactionId"`
	Layout        string          `json:"layout"`
	Digest        string          `json:"digest"`
	CreatedAt     time.Time       `json:"createdAt"`
	Payload       json.RawMessage `json:"payload"`
}

// OutputsRoot is the response to a committed outputs root request.
type OutputsRoot struct {
	Root types.HexBytes `json:"root"`
}

// CommittedOutput is the response to a committed output request.
type CommittedOutput struct {
	TransactionID types.HexBytes `json:"transactionId"`
	Index         int            `json:"index"`
	LeafHash      types.HexBytes `json:"leafHash"`
}
