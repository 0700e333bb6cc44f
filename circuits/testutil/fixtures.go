// Package testutil holds a small layout catalog and transactions shared by
// the tests of the packages built on top of witnesses.
package testutil

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ing-bank/zkflow-sub006/schema"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// Catalog declares a Cash state and the layouts moving it.
const Catalog = `
types:
  - name: Cash
    kind: struct
    fields:
      - {name: owner, type: {kind: uint8}}
      - {name: quantity, type: {kind: int32}}
  - name: StateRef
    kind: struct
    fields:
      - {name: tx, type: {kind: uint32}}
      - {name: index, type: {kind: uint8}}
  - name: CashCommand
    kind: enum
    variants: [Issue, Move, Exit]
layouts:
  - name: move
    contractCapacity: 4
    groups:
      inputs: {type: {ref: StateRef}, count: 1}
      references: {type: {ref: StateRef}, count: 1}
      commands: {type: {ref: CashCommand}, count: 1}
      notary: {type: {kind: uint16}, count: 1}
    outputs:
      - {stateType: Cash, type: {ref: Cash}}
    inputUtxos:
      - {stateType: Cash, type: {ref: Cash}}
    referenceUtxos:
      - {stateType: Cash, type: {ref: Cash}}
  - name: issue
    contractCapacity: 4
    groups:
      commands: {type: {ref: CashCommand}, count: 1}
    outputs:
      - {stateType: Cash, type: {ref: Cash}}
`

// Hex32 returns the quoted hex string of 32 bytes set to b.
func Hex32(b byte) string {
	return `"0x` + hex.EncodeToString(bytes.Repeat([]byte{b}, 32)) + `"`
}

// MoveTransaction spends one Cash state of quantity into a new one.
func MoveTransaction(quantity int) string {
	return fmt.Sprintf(`{
  "privacySalt": %s,
  "components": {
    "inputs": [{"tx": 7, "index": 0}],
    "references": [{"tx": 3, "index": 1}],
    "commands": ["Move"],
    "notary": [9]
  },
  "outputs": [{"stateType": "Cash", "contract": "cash", "data": {"owner": 2, "quantity": %d}}],
  "inputUtxos": [{"stateType": "Cash", "contract": "cash", "data": {"owner": 1, "quantity": %d}, "nonce": %s}],
  "referenceUtxos": [{"stateType": "Cash", "contract": "cash", "data": {"owner": 5, "quantity": 1}, "nonce": %s}]
}`, Hex32(0x01), quantity, quantity, Hex32(0x02), Hex32(0x03))
}

// IssueTransaction creates a Cash state out of nothing.
func IssueTransaction(quantity int) string {
	return fmt.Sprintf(`{
  "privacySalt": %s,
  "components": {"commands": ["Issue"]},
  "outputs": [{"stateType": "Cash", "contract": "cash", "data": {"owner": 1, "quantity": %d}}]
}`, Hex32(0x04), quantity)
}

// Layout returns the named layout of Catalog in byte mode.
func Layout(name string) (*witness.Layout, error) {
	cat, err := witness.LoadCatalog([]byte(Catalog), nil, schema.ByteMode)
	if err != nil {
		return nil, err
	}
	return cat.Layout(name)
}

// Witness builds the witness of the JSON transaction tx for the named layout.
func Witness(layout, tx string) (*witness.Witness, error) {
	l, err := Layout(layout)
	if err != nil {
		return nil, err
	}
	parsed, err := witness.ParseTransaction([]byte(tx))
	if err != nil {
		return nil, err
	}
	return witness.FromValues(l, parsed)
}
