package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error is the JSON body of every failed API call.
type Error struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *Error) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func NewError(statusCode int, code, message string) *Error {
	return &Error{StatusCode: statusCode, ErrorCode: code, Message: message}
}
