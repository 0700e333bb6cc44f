//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// Codes 40001-49999 are client errors, answered with a 4xx status. Codes
// 50001-59999 are server failures, answered with a 5xx status. Codes are
// never renumbered or reused; new errors take the next free code of their
// range.
var (
	ErrResourceNotFound         = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody            = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrLayoutNotFound           = Error{Code: 40008, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("layout not found")}
	ErrMalformedTransactionID   = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed transaction ID")}
	ErrWitnessNotFound          = Error{Code: 40010, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("witness not found")}
	ErrInvalidTransaction       = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid transaction")}
	ErrMalformedOutputIndex     = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed output index")}
	ErrOutputNotFound           = Error{Code: 40013, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("output not committed")}
	ErrTransactionAlreadyExists = Error{Code: 40014, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("transaction already stored")}
	ErrUnsupportedLayoutCircuit = Error{Code: 40015, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("layout circuit cannot be generated")}
	ErrCapacityExceeded         = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("value exceeds its schema capacity")}
	ErrMalformedValue           = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("value does not match its schema")}
	ErrUnknownStateType         = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("state type not in layout")}
	ErrMissingPrivacySalt       = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("missing privacy salt")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrStorageFailure             = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("storage failure")}
	ErrStoredWitnessCorrupted     = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("stored witness cannot be read")}
)
