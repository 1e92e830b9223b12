package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these to HTTP
// status codes; anything not listed here is an internal error.
var (
	ErrNotFound        = errors.New("not found")
	ErrExpired         = errors.New("expired")
	ErrExhausted       = errors.New("view limit reached")
	ErrBlocked         = errors.New("too many failed attempts, request a new OTP")
	ErrNotVerified     = errors.New("email not verified")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrNoChallenge     = errors.New("no OTP requested for this email")
	ErrDelivery        = errors.New("failed to send email")
	ErrStorage         = errors.New("storage unavailable")
	ErrTooManyRequests = errors.New("too many OTP requests, try again later")
)

// ErrInvalidCode is returned on a wrong-code attempt and carries the number
// of tries left before lockout
type ErrInvalidCode struct {
	Remaining int
}

func (e *ErrInvalidCode) Error() string {
	return fmt.Sprintf("invalid OTP, %d attempt(s) remaining", e.Remaining)
}
