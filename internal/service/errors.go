package service

import "fmt"

// APIError is a transport-facing error with a stable machine code.
type APIError struct {
	Code        string
	Description string
	Status      int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newAPIError(code, description string, status int) *APIError {
	return &APIError{Code: code, Description: description, Status: status}
}
