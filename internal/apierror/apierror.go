// Package apierror defines the JSON error body of the API.
package apierror

import "fmt"

// Body is written for every failed request.
type Body struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Error is an error with the status and body the client receives.
type Error struct {
	Status  int
	Message string
	Details any
}

// New creates an API error.
func New(status int, message string, details any) *Error {
	return &Error{Status: status, Message: message, Details: details}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Body returns the response body of e.
func (e *Error) Body() Body {
	return Body{Error: e.Message, Details: e.Details}
}
