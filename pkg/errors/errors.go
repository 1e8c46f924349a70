package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures by the stage of an export that produced them
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeListing  ErrorType = "listing"
	ErrorTypeFetch    ErrorType = "fetch"
	ErrorTypeMetadata ErrorType = "metadata"
	ErrorTypeLedger   ErrorType = "ledger"
	ErrorTypeArchive  ErrorType = "archive"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error is a typed export error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error wrapping err, which may be nil
func New(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

func Auth(message string, err error) *Error     { return New(ErrorTypeAuth, message, err) }
func Listing(message string, err error) *Error  { return New(ErrorTypeListing, message, err) }
func Fetch(message string, err error) *Error    { return New(ErrorTypeFetch, message, err) }
func Metadata(message string, err error) *Error { return New(ErrorTypeMetadata, message, err) }
func Ledger(message string, err error) *Error   { return New(ErrorTypeLedger, message, err) }
func Archive(message string, err error) *Error  { return New(ErrorTypeArchive, message, err) }
func Config(message string, err error) *Error   { return New(ErrorTypeConfig, message, err) }

// TypeOf returns the type of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain contains a typed error of type t
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}

// IsFatal reports whether err should end the run with a non-zero exit.
// Only authentication and configuration failures are fatal.
func IsFatal(err error) bool {
	return IsType(err, ErrorTypeAuth) || IsType(err, ErrorTypeConfig)
}
