package gateway

import "strings"

// StatusSuccess is the envelope status discriminator for a successful call.
const StatusSuccess = "Success"

// Envelope is the status envelope every identity endpoint answers with.
// HTTPStatus is the transport status code and is not part of the payload.
type Envelope[T any] struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message,omitempty"`
	Data       *T     `json:"data,omitempty"`
	HTTPStatus int    `json:"-"`
}

// IsSuccess reports whether the envelope carries the success discriminator.
func (e *Envelope[T]) IsSuccess() bool {
	return e != nil && strings.EqualFold(e.Status, StatusSuccess)
}

// LoginData is the payload of login, google-login and facebook-login.
type LoginData struct {
	AccessToken      string   `json:"accessToken"`
	RefreshToken     string   `json:"refreshToken"`
	Roles            []string `json:"roles"`
	ProfileCompleted bool     `json:"profileCompleted"`
}

// RefreshData is the payload of refresh-token. RefreshToken is only present
// when the gateway rotates refresh tokens.
type RefreshData struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

type (
	LoginEnvelope   = Envelope[LoginData]
	RefreshEnvelope = Envelope[RefreshData]
)

// RegistrationRequest carries the sign-up form fields.
type RegistrationRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role,omitempty"`
}

// RegisterResponse is the register answer; StatusCode 200 means success.
type RegisterResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
