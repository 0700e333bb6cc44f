package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/circuits/testutil"
	"github.com/ing-bank/zkflow-sub006/codec"
	stg "github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/witness"
)

func TestErrorFor(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		err  error
		want Error
	}{
		{fmt.Errorf("%w: swap", witness.ErrUnknownLayout), ErrLayoutNotFound},
		{fmt.Errorf("outputs[0]: %w", &codec.Error{Path: "contract", Err: codec.ErrCapacityExceeded}), ErrCapacityExceeded},
		{&codec.Error{Path: "quantity", Err: codec.ErrTypeMismatch}, ErrMalformedValue},
		{witness.ErrMissingPrivacySalt, ErrMissingPrivacySalt},
		{fmt.Errorf("%w: 0x01[0]", stg.ErrAlreadyCommitted), ErrTransactionAlreadyExists},
		{fmt.Errorf("%w: inputs", witness.ErrGroupSize), ErrInvalidTransaction},
	} {
		got := errorFor(tc.err, ErrInvalidTransaction)
		c.Assert(got.Code, qt.Equals, tc.want.Code, qt.Commentf("%v", tc.err))
		c.Assert(got.HTTPstatus, qt.Equals, tc.want.HTTPstatus)
		c.Assert(errors.Is(got, tc.want), qt.IsTrue)
		c.Assert(errors.Is(got, tc.err), qt.IsTrue)
	}

	err := ErrLayoutNotFound.With("swap")
	c.Assert(err, qt.ErrorMatches, "layout not found: swap")
	c.Assert(errors.Is(err, ErrLayoutNotFound), qt.IsTrue)
	c.Assert(errors.Is(err, ErrWitnessNotFound), qt.IsFalse)
}

func TestErrorWrite(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()
	ErrOutputNotFound.Withf("%s[%d]", "0x01", 2).Write(rec)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/json")
	var body errorBody
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &body), qt.IsNil)
	c.Assert(body, qt.DeepEquals, errorBody{Error: "output not committed: 0x01[2]", Code: 40013})
}

func TestWriteJSONMarshalFailure(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()
	httpWriteJSON(rec, map[string]any{"ch": make(chan int)})
	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/json")
	c.Assert(errorCode(c, rec), qt.Equals, ErrMarshalingServerJSONFailed.Code)

	rec = httptest.NewRecorder()
	httpWriteJSON(rec, &Layouts{Layouts: []string{"move"}})
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Equals, `{"layouts":["move"]}`+"\n")
}

func TestWitnessErrorCodes(t *testing.T) {
	c := qt.New(t)
	a := testAPI(c)

	unsalted := `{"layout": "issue", "transaction": {
  "components": {"commands": ["Issue"]},
  "outputs": [{"stateType": "Cash", "contract": "cash", "data": {"owner": 1, "quantity": 3}}]
}}`
	rec := request(c, a, http.MethodPost, WitnessesEndpoint, unsalted)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(errorCode(c, rec), qt.Equals, ErrMissingPrivacySalt.Code)

	longContract := `{"layout": "issue", "transaction": {
  "privacySalt": ` + testutil.Hex32(1) + `,
  "components": {"commands": ["Issue"]},
  "outputs": [{"stateType": "Cash", "contract": "cashcash", "data": {"owner": 1, "quantity": 3}}]
}}`
	rec = request(c, a, http.MethodPost, WitnessesEndpoint, longContract)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(errorCode(c, rec), qt.Equals, ErrCapacityExceeded.Code)

	rec = request(c, a, http.MethodPost, WitnessesEndpoint, `{"layout": "swap", "transaction": {}}`)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorCode(c, rec), qt.Equals, ErrLayoutNotFound.Code)
}
