package httpapi

import (
	"net/http"

	apperrors "huddle/errors"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError answers with the status the failure taxonomy assigns. The body
// carries the sentinel text only; wrapped detail stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := http.StatusText(status)
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnauthorized:
		message = err.Error()
	}
	writeJSON(w, status, errorBody{Error: message})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrInvalidPayload
	}
	return nil
}
