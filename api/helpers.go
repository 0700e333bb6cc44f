package api

import (
	"encoding/json"
	"net/http"

	"github.com/ing-bank/zkflow-sub006/log"
)

// httpWriteJSON sends data as a JSON response. Nothing is written before
// data is encoded, so an encoding failure still gets its error status.
func httpWriteJSON(w http.ResponseWriter, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	httpWrite(w, http.StatusOK, "application/json", append(body, '\n'))
	log.Debugw("api response", "bytes", len(body))
}

// httpWriteOK sends an empty successful response.
func httpWriteOK(w http.ResponseWriter) {
	httpWrite(w, http.StatusOK, "", []byte("\n"))
}

func httpWrite(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
}
