package responses

import (
	"fmt"
)

// Error is the reply sent when a request could not be served. Code tells
// failure classes apart for clients, Message is for humans.
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status: %d, code: %d, message: %q", e.Status, e.Code, e.Message)
}

// NewError builds an error reply with the default internal status.
func NewError(code int, message string) *Error {
	return &Error{
		Status:  500,
		Code:    code,
		Message: message,
	}
}
