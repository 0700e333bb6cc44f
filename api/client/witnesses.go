package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/ing-bank/zkflow-sub006/api"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// call performs the request and decodes a 200 response into out.
func (c *HTTPclient) call(method string, body, out any, urlPath ...string) error {
	data, status, err := c.Request(method, body, nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return newError(status, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

// Layouts returns the names of the layouts served.
func (c *HTTPclient) Layouts() ([]string, error) {
	res := &api.Layouts{}
	if err := c.call(HTTPGET, nil, res, api.LayoutsEndpoint); err != nil {
		return nil, err
	}
	return res.Layouts, nil
}

// Layout describes the named layout.
func (c *HTTPclient) Layout(name string) (*api.LayoutInfo, error) {
	res := &api.LayoutInfo{}
	if err := c.call(HTTPGET, nil, res, api.LayoutsEndpoint, name); err != nil {
		return nil, err
	}
	return res, nil
}

// LayoutCircuit returns the generated circuit source of the named layout.
func (c *HTTPclient) LayoutCircuit(name string) ([]byte, error) {
	data, status, err := c.Request(HTTPGET, nil, nil, api.LayoutsEndpoint, name, "circuit")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(status, data)
	}
	return data, nil
}

// NewWitness builds and stores the witness of tx for the named layout.
func (c *HTTPclient) NewWitness(layout string, tx *witness.Transaction) (*api.WitnessResponse, error) {
	res := &api.WitnessResponse{}
	if err := c.call(HTTPPOST, &api.NewWitness{Layout: layout, Transaction: tx}, res, api.WitnessesEndpoint); err != nil {
		return nil, err
	}
	return res, nil
}

// Witness returns the stored witness of transaction txID.
func (c *HTTPclient) Witness(txID types.HexBytes) (*witness.Witness, error) {
	res := &api.StoredWitness{}
	if err := c.call(HTTPGET, nil, res, api.WitnessesEndpoint, txID.String()); err != nil {
		return nil, err
	}
	w := &witness.Witness{}
	if err := json.Unmarshal(res.Payload, w); err != nil {
		return nil, fmt.Errorf("could not decode witness: %w", err)
	}
	return w, nil
}

// PublicInput returns the public input stored for transaction txID.
func (c *HTTPclient) PublicInput(txID types.HexBytes) (*merkle.PublicInput, error) {
	res := &merkle.PublicInput{}
	if err := c.call(HTTPGET, nil, res, api.WitnessesEndpoint, txID.String(), "public"); err != nil {
		return nil, err
	}
	return res, nil
}

// Verify checks pub against the stored witness of transaction txID.
func (c *HTTPclient) Verify(txID types.HexBytes, pub *merkle.PublicInput) (*merkle.Result, error) {
	res := &merkle.Result{}
	if err := c.call(HTTPPOST, pub, res, api.WitnessesEndpoint, txID.String(), "verify"); err != nil {
		return nil, err
	}
	return res, nil
}

// CommittedOutput returns the leaf hash committed for output index of
// transaction txID.
func (c *HTTPclient) CommittedOutput(txID types.HexBytes, index int) (types.HexBytes, error) {
	res := &api.CommittedOutput{}
	if err := c.call(HTTPGET, nil, res, path.Dir(api.OutputsRootEndpoint), txID.String(), strconv.Itoa(index)); err != nil {
		return nil, err
	}
	return res.LeafHash, nil
}

// OutputsRoot returns the root of the committed outputs tree.
func (c *HTTPclient) OutputsRoot() (types.HexBytes, error) {
	res := &api.OutputsRoot{}
	if err := c.call(HTTPGET, nil, res, api.OutputsRootEndpoint); err != nil {
		return nil, err
	}
	return res.Root, nil
}
