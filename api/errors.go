package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ing-bank/zkflow-sub006/codec"
	"github.com/ing-bank/zkflow-sub006/log"
	stg "github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// Error is an API failure: the cause, the stable error code returned to the
// client and the HTTP status of the response.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// errorBody is the JSON form of an Error, {"error":"layout not found: x","code":40008}.
type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// MarshalJSON encodes the message and the code. The HTTP status is left out.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorBody{Error: e.Err.Error(), Code: e.Code})
}

func (e Error) Error() string {
	return e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }

// Is matches any Error carrying the same code, so a detailed copy made with
// With or WithErr is still its catalogue entry.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Write sends e as the JSON body of a response with its HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warnw("could not encode API error", "error", err, "code", e.Code)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	httpWrite(w, e.HTTPstatus, "application/json", append(msg, '\n'))
}

// With returns a copy of e with s appended to its message.
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %s", e.Err, s),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// Withf is With on a formatted message.
func (e Error) Withf(format string, args ...any) Error {
	return e.With(fmt.Sprintf(format, args...))
}

// WithErr returns a copy of e caused by err. Both e and err stay reachable
// with errors.Is.
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %w", e.Err, err),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// causes maps the failures of the witness, codec and storage packages onto
// the catalogue, first match wins.
var causes = []struct {
	err error
	api Error
}{
	{witness.ErrUnknownLayout, ErrLayoutNotFound},
	{witness.ErrUnknownStateType, ErrUnknownStateType},
	{witness.ErrMissingPrivacySalt, ErrMissingPrivacySalt},
	{codec.ErrCapacityExceeded, ErrCapacityExceeded},
	{codec.ErrTypeMismatch, ErrMalformedValue},
	{codec.ErrUnsupportedDirectEncoding, ErrMalformedValue},
	{stg.ErrAlreadyCommitted, ErrTransactionAlreadyExists},
	{stg.ErrNotFound, ErrResourceNotFound},
}

// errorFor returns the catalogue entry of err, or fallback when err has no
// entry of its own, carrying err as its cause.
func errorFor(err error, fallback Error) Error {
	for _, c := range causes {
		if errors.Is(err, c.err) {
			return c.api.WithErr(err)
		}
	}
	return fallback.WithErr(err)
}
