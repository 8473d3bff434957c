package api

import "net/http"

// Error is the request-boundary error of the API: every failure a handler can
// produce is one of these, rendered as a negotiated error document. None are
// fatal to the process.
type Error struct {
	Status  int
	Message string
	// Data is merged into the error document (e.g. a "form" error map).
	Data map[string]any
}

func (e *Error) Error() string { return e.Message }

// Document returns the response body for this error.
func (e *Error) Document() Document {
	doc := Document{"error": e.Message}
	for k, v := range e.Data {
		doc[k] = v
	}
	return doc
}

func NewError(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Status: status, Message: message}
}

func NotAcceptable() *Error {
	return NewError(http.StatusNotAcceptable, "Not acceptable")
}

func UnsupportedMediaType() *Error {
	return NewError(http.StatusUnsupportedMediaType, "Unsupported media type")
}

func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

func MethodNotAllowed() *Error {
	return NewError(http.StatusMethodNotAllowed, "Method not allowed")
}

func PermissionDenied() *Error {
	return NewError(http.StatusForbidden, "Permission denied")
}

// ValidationFailed carries the field name to error list mapping of a failed
// model form.
func ValidationFailed(fieldErrors map[string][]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Data:    map[string]any{"form": fieldErrors},
	}
}
