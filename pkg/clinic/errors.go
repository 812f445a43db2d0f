package clinic

import (
	"encoding/json"
	"errors"
	"strings"
)

// APIError is returned for any non-2xx backend response. Message carries the
// backend's message/error body field when one was present, otherwise the
// per-operation fallback string. That message is the only error detail shown
// to operators, so callers should surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// ErrUnexpectedResponse is returned when a single-entity response body does
// not match any accepted envelope shape.
var ErrUnexpectedResponse = errors.New("unexpected response shape")

// errorBody is the JSON error envelope used across the backend.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// extractErrorMessage pulls the human-readable message out of an error
// response body. JSON bodies are probed for message/error fields; anything
// else is used as raw text. The fallback wins when nothing usable remains.
func extractErrorMessage(body []byte, contentType, fallback string) string {
	if len(body) > 0 && strings.Contains(contentType, "application/json") {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			if eb.Message != "" {
				return eb.Message
			}
			if eb.Error != "" {
				return eb.Error
			}
		}
	} else if txt := strings.TrimSpace(string(body)); txt != "" {
		return txt
	}
	return fallback
}
