// Package api defines the response envelope shared by every endpoint.
package api

// Response is the success envelope: status code, payload and a human-readable
// message.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// NewResponse builds a success envelope.
func NewResponse(statusCode int, data any, message string) *Response {
	return &Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	}
}

// LoginResponse is the login payload: tokens in the body in addition to the
// cookies, for clients that cannot use cookies.
type LoginResponse struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is the refresh payload.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// PageResponse wraps a paged listing.
type PageResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}
