package handler

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into v, mapping any failure to a 400
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
