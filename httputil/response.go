package httputil

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.Marshal(v)
	if nil != err {
		return fmt.Errorf("failed to encode response body: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); nil != err {
		return fmt.Errorf("failed to write response body: %v", err)
	}

	return nil
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, msg string) error {
	return WriteJSON(w, status, ErrorBody{Success: false, Error: msg})
}
