package cberror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error tags returned by the board server.
const (
	TagInvalidParameters = "invalid-parameters"
	TagUnauthorized      = "unauthorized"
	TagUserNotFound      = "user-not-found"
	TagItemNotFound      = "item-not-found"
	TagSnapshotNotFound  = "snapshot-not-found"
	TagNotAMenu          = "not-a-menu"
	TagUnsupportedFile   = "unsupported-file"
	TagFileTooLarge      = "file-too-large"
)

type (
	// A CBError represents the error format that can be rendered by the board server.
	CBError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if cberr, ok := errors.Cause(err).(*CBError); ok && cberr.HTTPCode != 0 {
		return cberr.HTTPCode
	}
	return http.StatusInternalServerError
}

// Tag returns the tag of err, or an empty string when err is not a CBError.
func Tag(err error) string {
	if cberr, ok := errors.Cause(err).(*CBError); ok {
		return cberr.FieldError.Tag
	}
	return ""
}

// New returns a new CBError with the given message.
func New(message string) *CBError {
	return &CBError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new CBError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *CBError {
	return &CBError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// BadRequest returns an invalid-parameters error.
func BadRequest(format string, args ...interface{}) *CBError {
	return NewWithTagCode(http.StatusBadRequest, TagInvalidParameters, fmt.Sprintf(format, args...))
}

// NotFound returns a 404 error with the given tag.
func NotFound(tag, message string) *CBError {
	return NewWithTagCode(http.StatusNotFound, tag, message)
}

// IsNotFound returns true if err is a 404 error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Error implements error interface.
func (e *CBError) Error() string {
	return e.FieldError.Message
}
