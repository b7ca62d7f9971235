package auth

import (
	"errors"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// Result is the normalized outcome of Login and Register.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	MsgLoginSuccess       = "Login successful"
	MsgLoginFailed        = "Login failed"
	MsgAccessDenied       = "Access denied. Only trainers and users can sign in to this application."
	MsgRegisterSuccess    = "Registration successful"
	MsgRegisterFailed     = "Registration failed"
	MsgGatewayUnavailable = "Unable to reach the server, please try again later"
)

func success(message string) Result {
	return Result{Success: true, Message: message}
}

// failure maps an error to a user-facing message. gatewayMessage, when set,
// is the message the gateway put in its envelope.
func failure(err error, gatewayMessage, fallback string) Result {
	switch {
	case errors.Is(err, apperrors.ErrAccessDenied):
		return Result{Message: MsgAccessDenied}
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		return Result{Message: MsgGatewayUnavailable}
	}
	return Result{Message: utils.FirstNonEmpty(gatewayMessage, fallback)}
}
