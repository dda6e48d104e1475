package domain

import (
	"errors"
	"fmt"
)

// Stable error kinds. Every failure the engines return wraps exactly one of
// these so callers can match with errors.Is and still read a human reason.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotFound               = errors.New("not found")
)

// Errorf wraps a stable error kind with a formatted reason.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, kind)...)
}
