package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Failure kinds for backend calls. Callers classify with errors.Is; the
// concrete *Error carries status and backend message for display.
var (
	// ErrUnavailable covers transport failures and server errors. Nothing may
	// be assumed about server state: the order may or may not exist.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrConflict is a business-rule rejection (insufficient stock, malformed
	// input). The backend guarantees it performed no partial mutation.
	ErrConflict = errors.New("rejected by backend validation")
	// ErrForbidden means the caller lacks the role for the attempted action.
	// Surfaced distinctly so the console explains instead of retrying.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the referenced entity is gone, typically a stale id
	// held across a delete.
	ErrNotFound = errors.New("not found")
)

type Error struct {
	Kind    error  // one of the sentinel errors above
	Status  int    // HTTP status, 0 for transport failures
	Message string // backend-supplied message when present
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// errorBody is the shape the backend's exception handler emits.
type errorBody struct {
	Error string `json:"error"`
}

func newErrorFromResponse(resp *http.Response) *Error {
	e := &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return e
	}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		e.Message = eb.Error
	}
	return e
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return ErrConflict
	default:
		return ErrUnavailable
	}
}
