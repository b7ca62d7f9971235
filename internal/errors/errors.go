package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Session errors
	ErrNoSession           = errors.New("no active session")
	ErrInvalidSession      = errors.New("invalid session")
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrSessionSuperseded   = errors.New("session superseded")

	// Authorization policy errors
	ErrAccessDenied = errors.New("access denied")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")

	// Gateway errors
	ErrGatewayRejected    = errors.New("gateway rejected request")
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// Storage errors
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
