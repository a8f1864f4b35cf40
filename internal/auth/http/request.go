package http

import (
	"encoding/json"
	"net/http"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses a JSON request body into dst, writing the error
// response itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		errInvalidBody.Write(w)
		return false
	}
	return true
}

// decodeBestEffort parses an optional JSON body, ignoring anything it
// cannot make sense of.
func decodeBestEffort(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}
