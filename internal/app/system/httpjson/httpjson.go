// internal/app/system/httpjson/httpjson.go
// Package httpjson has the request/response JSON helpers shared by the
// API feature handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; drawing/chat payloads are tiny and
// anything larger is a client bug or abuse.
const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Decode when the request carried no body
// at all, so callers can distinguish "absent" from "malformed".
var ErrEmptyBody = errors.New("request body is empty")

// Write serializes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode parses the request body into dst, enforcing the body cap.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}
