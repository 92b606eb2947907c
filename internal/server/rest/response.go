package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json; charset=utf-8"

	maxJSONBody = 1 << 20
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
		return
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, detailResponse{Detail: detail})
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, messageResponse{Message: message})
}

// decodeJSON reads a single JSON value of at most maxJSONBody bytes from the
// request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return newHTTPError(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return errUnprocessable(fmt.Sprintf("invalid request body: %v", err), err)
	}
	if dec.More() {
		return errUnprocessable("invalid request body: unexpected data after JSON value", nil)
	}
	return nil
}
