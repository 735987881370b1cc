package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRateLimited          = errors.New("too many OTP requests")
	ErrOTPNotFound          = errors.New("no valid OTP found")
	ErrOTPExpired           = errors.New("OTP has expired")
	ErrOTPAttemptsExhausted = errors.New("too many failed OTP attempts")
	ErrInvalidOTP           = errors.New("invalid OTP code")

	ErrInvalidToken   = errors.New("invalid refresh token")
	ErrRefreshExpired = errors.New("refresh token expired")
)

// LockedError reports a temporarily locked account. Remaining is the number
// of minutes until the lockout window elapses, rounded up; zero when the
// account was locked by this very attempt.
type LockedError struct {
	Remaining int
}

func (e *LockedError) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("account locked, try again in %d minutes", e.Remaining)
	}
	return "account locked due to too many failed login attempts"
}

// IsAccountLocked reports whether err is a lockout failure.
func IsAccountLocked(err error) bool {
	var locked *LockedError
	return errors.As(err, &locked)
}

// PasswordPolicyError carries the specific rule a password failed.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}
