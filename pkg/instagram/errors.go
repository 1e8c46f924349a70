package instagram

import (
	"errors"
	"fmt"
)

// ErrorType classifies Instagram API failures
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an Instagram API error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("instagram %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsAuthError reports whether err means the session is missing, invalid or expired
func IsAuthError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeAuth
}

// ErrNotLoggedIn is returned by API calls made before a successful Login
var ErrNotLoggedIn = &Error{Type: ErrorTypeAuth, Message: "not logged in"}
