package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// GenericMessage is shown when the server gave no usable message.
const GenericMessage = "Something went wrong. Please try again."

// Reason explains why a session ended or could not be used.
type Reason string

const (
	ReasonSessionExpired Reason = "session_expired"
	ReasonNoSession      Reason = "no_session"
	ReasonInactivity     Reason = "inactivity"
	ReasonLogout         Reason = "logout"
)

// SessionError means the caller must log in again.
type SessionError struct {
	Reason Reason
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session unavailable: %s", e.Reason)
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	// Message is the top level "error" field, if any.
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// UserMessage returns the first structured message of the response, or
// GenericMessage for unstructured failures.
func (e *APIError) UserMessage() string {
	if len(e.Fields) > 0 {
		paths := make([]string, 0, len(e.Fields))
		for p := range e.Fields {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			if msgs := e.Fields[p]; len(msgs) > 0 && msgs[0] != "" {
				return msgs[0]
			}
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericMessage
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Error  string              `json:"error"`
		Detail string              `json:"detail"`
		Fields map[string][]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	apiErr.Message = payload.Error
	if apiErr.Message == "" {
		apiErr.Message = payload.Detail
	}
	apiErr.Fields = payload.Fields
	return apiErr
}
