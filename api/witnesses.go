package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/merkle"
	stg "github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/types"
	"github.com/ing-bank/zkflow-sub006/witness"
)

func urlTransactionID(w http.ResponseWriter, r *http.Request) (types.HexBytes, bool) {
	txID, err := types.HexStringToHexBytes(chi.URLParam(r, TransactionIDURLParam))
	if err != nil || len(txID) != digest.Size {
		ErrMalformedTransactionID.Withf("%q", chi.URLParam(r, TransactionIDURLParam)).Write(w)
		return nil, false
	}
	return txID, true
}

// newWitness builds the witness of a transaction, stores it with its public
// input and commits the leaf hashes of its outputs
// POST /witnesses
func (a *API) newWitness(w http.ResponseWriter, r *http.Request) {
	req := &NewWitness{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Transaction == nil {
		ErrMalformedBody.With("missing transaction").Write(w)
		return
	}
	l, err := a.catalog.Layout(req.Layout)
	if err != nil {
		errorFor(err, ErrLayoutNotFound).Write(w)
		return
	}
	wit, err := witness.FromValues(l, req.Transaction)
	if err != nil {
		errorFor(err, ErrInvalidTransaction).Write(w)
		return
	}
	pub, err := merkle.NewPublicInput(a.digest, wit)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	txID := []byte(pub.TransactionID)
	if _, err := a.storage.Witness(txID); err == nil {
		ErrTransactionAlreadyExists.With(types.HexBytes(txID).String()).Write(w)
		return
	}
	outputs, err := merkle.GroupLeafHashes(a.digest, wit, witness.Outputs)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	if err := a.storage.SetWitness(txID, l.Name, a.digest.Name(), wit); err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	if err := a.storage.SetPublicInput(txID, pub); err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	if err := a.storage.CommitOutputs(txID, outputs); err != nil {
		errorFor(err, ErrStorageFailure).Write(w)
		return
	}
	log.Infow("new witness", "txid", types.HexBytes(txID).String(), "layout", l.Name, "shape", wit.Shape().String())
	httpWriteJSON(w, &WitnessResponse{
		TransactionID: txID,
		Layout:        l.Name,
		Digest:        a.digest.Name(),
		Shape:         wit.Shape().String(),
		PublicInput:   pub,
	})
}

// witnesses lists the transaction ids of the stored witnesses
// GET /witnesses
func (a *API) witnesses(w http.ResponseWriter, r *http.Request) {
	ids, err := a.storage.ListWitnesses()
	if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	if ids == nil {
		ids = []types.HexBytes{}
	}
	httpWriteJSON(w, &WitnessList{Witnesses: ids})
}

func (a *API) storedWitness(w http.ResponseWriter, txID types.HexBytes) (*stg.WitnessRecord, bool) {
	record, err := a.storage.Witness(txID)
	if errors.Is(err, stg.ErrNotFound) {
		ErrWitnessNotFound.With(txID.String()).Write(w)
		return nil, false
	}
	if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return nil, false
	}
	return record, true
}

// witness returns a stored witness
// GET /witnesses/{txid}
func (a *API) witness(w http.ResponseWriter, r *http.Request) {
	txID, ok := urlTransactionID(w, r)
	if !ok {
		return
	}
	record, ok := a.storedWitness(w, txID)
	if !ok {
		return
	}
	httpWriteJSON(w, &StoredWitness{
		TransactionID: record.TransactionID,
		Layout:        record.Layout,
		Digest:        record.Digest,
		CreatedAt:     record.CreatedAt,
		Payload:       record.Payload,
	})
}

// publicInput returns the public input of a stored witness
// GET /witnesses/{txid}/public
func (a *API) publicInput(w http.ResponseWriter, r *http.Request) {
	txID, ok := urlTransactionID(w, r)
	if !ok {
		return
	}
	pub, err := a.storage.PublicInput(txID)
	if errors.Is(err, stg.ErrNotFound) {
		ErrWitnessNotFound.With(txID.String()).Write(w)
		return
	}
	if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, pub)
}

// verify checks the public input in the body against a stored witness,
// hashing it with the digest it was stored with
// POST /witnesses/{txid}/verify
func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	txID, ok := urlTransactionID(w, r)
	if !ok {
		return
	}
	pub := &merkle.PublicInput{}
	if err := json.NewDecoder(r.Body).Decode(pub); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	record, ok := a.storedWitness(w, txID)
	if !ok {
		return
	}
	d, err := digest.ByName(record.Digest)
	if err != nil {
		ErrStoredWitnessCorrupted.WithErr(err).Write(w)
		return
	}
	wit, err := record.Witness()
	if err != nil {
		ErrStoredWitnessCorrupted.WithErr(err).Write(w)
		return
	}
	result, err := merkle.Verify(d, wit, pub)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	log.Debugw("public input verified", "txid", txID.String(), "valid", result.Valid)
	httpWriteJSON(w, result)
}
