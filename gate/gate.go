// Package gate protects the shop with a numeric PIN.
//
// PINs are never stored in clear: Hash returns a bcrypt hash that Check
// compares a candidate against.
package gate

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum number of digits of a PIN.
const MinLength = 4

// MaxLength bounds the PIN so that it always fits a bcrypt input.
const MaxLength = 12

var (
	// ErrInvalidPIN reports a PIN that is too short, too long or not only digits.
	ErrInvalidPIN = errors.New("invalid PIN")
	// ErrWrongPIN reports a PIN that does not match the stored hash.
	ErrWrongPIN = errors.New("wrong PIN")
)

// Validate checks that pin has between MinLength and MaxLength digits.
func Validate(pin string) error {
	if len(pin) < MinLength {
		return fmt.Errorf("%w: at least %d digits", ErrInvalidPIN, MinLength)
	}
	if len(pin) > MaxLength {
		return fmt.Errorf("%w: at most %d digits", ErrInvalidPIN, MaxLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: digits only", ErrInvalidPIN)
		}
	}
	return nil
}

// Hash validates pin and returns its hash.
func Hash(pin string) (string, error) {
	if err := Validate(pin); err != nil {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash PIN: %w", err)
	}
	return string(h), nil
}

// Check returns nil when pin matches hash, ErrWrongPIN otherwise.
func Check(hash, pin string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrWrongPIN
	}
	if err != nil {
		return fmt.Errorf("could not check PIN: %w", err)
	}
	return nil
}
