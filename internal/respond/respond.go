package respond

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type (
	// ErrorBody is what clients receive on every failed request.
	ErrorBody struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
)

func JSON(w http.ResponseWriter, status int, v interface{}) {
	buf, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{StatusCode: status, Message: message})
}

// Decode reads a JSON body of at most 1MB into out, unknown fields are ignored.
func Decode(w http.ResponseWriter, r *http.Request, out interface{}) error {
	const maxBody = 1_000_000
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(out)
}
