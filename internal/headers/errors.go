package headers

import (
	"errors"
	"fmt"
)

// TokenError indicates the host refused to issue a callback token.
type TokenError struct {
	Status TokenStatus
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("callback token request %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("callback token request %s", e.Status)
}

func (e *TokenError) Unwrap() error { return e.Err }

// IsTokenError reports whether err (or any error in its chain) is a
// TokenError.
func IsTokenError(err error) bool {
	var tokenErr *TokenError
	return errors.As(err, &tokenErr)
}

// MissingPropertyError is returned when a successful response does not
// carry the transport headers property.
type MissingPropertyError struct {
	MessageID  string `json:"messageId"`
	PropertyID string `json:"propertyId"`
	Reason     string `json:"message"`
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf(
		"message %s: extended property %q missing: %s",
		e.MessageID, e.PropertyID, e.Reason,
	)
}

// IsMissingPropertyError reports whether err (or any error in its chain)
// is a MissingPropertyError.
func IsMissingPropertyError(err error) bool {
	var missing *MissingPropertyError
	return errors.As(err, &missing)
}
