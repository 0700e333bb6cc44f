package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	stg "github.com/ing-bank/zkflow-sub006/storage"
)

// outputsRoot returns the root of the committed outputs tree
// GET /outputs/root
func (a *API) outputsRoot(w http.ResponseWriter, r *http.Request) {
	root, err := a.storage.OutputsRoot()
	if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &OutputsRoot{Root: root})
}

// committedOutput returns the leaf hash committed for an output
// GET /outputs/{txid}/{index}
func (a *API) committedOutput(w http.ResponseWriter, r *http.Request) {
	txID, ok := urlTransactionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, OutputIndexURLParam))
	if err != nil || index < 0 {
		ErrMalformedOutputIndex.Withf("%q", chi.URLParam(r, OutputIndexURLParam)).Write(w)
		return
	}
	h, err := a.storage.CommittedOutput(txID, index)
	if errors.Is(err, stg.ErrNotFound) {
		ErrOutputNotFound.Withf("%s[%d]", txID.String(), index).Write(w)
		return
	}
	if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &CommittedOutput{TransactionID: txID, Index: index, LeafHash: h})
}
