package core

import (
	"time"
)

// ValidatePayload validates a user-supplied payload function
func ValidatePayload(payload Payload) error {
	if payload == nil {
		return &Error{Code: "INVALID_PAYLOAD", Message: "payload cannot be nil"}
	}
	return nil
}

// ValidateTimeout validates a per-call timeout
// Zero means no deadline
func ValidateTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return &Error{Code: "INVALID_TIMEOUT", Message: "timeout cannot be negative"}
	}
	return nil
}
