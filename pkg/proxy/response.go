package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Content types of BFF responses.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteBody writes an upstream body verbatim.
func WriteBody(w http.ResponseWriter, statusCode int, contentType string, body []byte) error {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// WriteStatus answers with a status code and no body. Upstream failures
// use it so nothing about the failure reaches the client.
func WriteStatus(w http.ResponseWriter, statusCode int) {
	w.WriteHeader(statusCode)
}

// WriteRequestError answers 400 with the validation message as plain text.
func WriteRequestError(w http.ResponseWriter, err *RequestError) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
