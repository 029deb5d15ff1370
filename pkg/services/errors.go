package services

import (
	"errors"
	"fmt"
)

// ErrSessionRequired matches any *SessionRequiredError via errors.Is.
var ErrSessionRequired = errors.New("session required")

const (
	HospitalLoginPath = "/hospital/login"
	VendorLoginPath   = "/vendor/login"
)

// SessionRequiredError is returned when a screen needs an identity the
// session does not have yet. The caller is expected to send the visitor
// to LoginPath instead of reporting a failure.
type SessionRequiredError struct {
	Kind      string
	LoginPath string
}

func (e *SessionRequiredError) Error() string {
	return fmt.Sprintf("%s identity required, login at %s", e.Kind, e.LoginPath)
}

func (e *SessionRequiredError) Is(target error) bool {
	return target == ErrSessionRequired
}
