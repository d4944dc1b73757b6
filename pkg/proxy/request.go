package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// MaxRequestBodySize is the maximum accepted inbound body size (1MB).
const MaxRequestBodySize = 1 << 20

// RequestError is an inbound request the BFF refuses to forward. It maps
// to 400.
type RequestError struct {
	Message string
	Param   string
	Cause   error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s", e.Param, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying decode or parse error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// DecodeJSONBody decodes the request body into v. Bodies larger than
// MaxRequestBodySize, empty bodies and malformed JSON give a *RequestError.
//
//	var q handlers.Quote
//	if err := proxy.DecodeJSONBody(r, &q); err != nil {
//	    // 400
//	}
func DecodeJSONBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) > MaxRequestBodySize {
		return &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Param:   "body",
		}
	}

	if len(body) == 0 {
		return &RequestError{Message: "request body is empty", Param: "body"}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Param:   "body",
			Cause:   err,
		}
	}

	return nil
}

// ParseIntParam parses a path parameter that must be a base 10 integer.
func ParseIntParam(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		var numErr *strconv.NumError
		message := "must be an integer"
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			message = "is out of range"
		}
		return 0, &RequestError{
			Message: fmt.Sprintf("%q %s", raw, message),
			Param:   name,
			Cause:   err,
		}
	}
	return n, nil
}
