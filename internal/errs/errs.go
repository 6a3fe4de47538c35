// Package errs is the error taxonomy shared by repos, services and handlers.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeMalformedInput Code = "MALFORMED_INPUT"
	CodePersistence    Code = "PERSISTENCE_ERROR"
	CodeUnauthorized   Code = "UNAUTHORIZED"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its code.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrMalformedInput = errors.New("malformed input")
	ErrPersistence    = errors.New("persistence failure")
	ErrUnauthorized   = errors.New("unauthorized")
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeNotFound:       {HTTPStatus: http.StatusNotFound, PublicMessage: "Not found"},
	CodeValidation:     {HTTPStatus: http.StatusBadRequest, PublicMessage: "Please check the highlighted fields"},
	CodeMalformedInput: {HTTPStatus: http.StatusBadRequest, PublicMessage: "Bad request"},
	CodePersistence:    {HTTPStatus: http.StatusInternalServerError, PublicMessage: "Something went wrong. Please try again."},
	CodeUnauthorized:   {HTTPStatus: http.StatusUnauthorized, PublicMessage: "Invalid email or password"},
}

var sentinelByCode = map[Code]error{
	CodeNotFound:       ErrNotFound,
	CodeValidation:     ErrValidation,
	CodeMalformedInput: ErrMalformedInput,
	CodePersistence:    ErrPersistence,
	CodeUnauthorized:   ErrUnauthorized,
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodePersistence]
}

type Error struct {
	code    Code
	message string
	fields  map[string]string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// NotFound builds a NOT_FOUND error for a resource kind and id.
func NotFound(kind string, id any) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %v not found", kind, id))
}

// Persistence wraps a store failure.
func Persistence(err error, op string) *Error {
	return Wrap(CodePersistence, err, op)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodePersistence
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Fields holds per-field validation messages.
func (e *Error) Fields() map[string]string {
	if e == nil {
		return nil
	}
	return e.fields
}

func (e *Error) WithFields(fields map[string]string) *Error {
	if e == nil {
		return nil
	}
	e.fields = fields
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return sentinelByCode[e.code] == target
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf reports the code of err, PERSISTENCE_ERROR for untyped errors.
func CodeOf(err error) Code {
	if te := As(err); te != nil {
		return te.Code()
	}
	return CodePersistence
}
