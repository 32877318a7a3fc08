// Package api provides the thin HTTP adapters over the typed service surface.
package api

// ErrorResponse is the uniform error body for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
