// Package moneypkg provides common money amount related functionality for apps.
package moneypkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every amount and balance.
const Places = 2

// MaxAmount is the largest amount accepted in a single operation.
//
// Balances are stored as NUMERIC(19, 2).
var MaxAmount = decimal.RequireFromString("1000000000000")

var (
	// ErrMalformed indicates that the amount is not a decimal number.
	ErrMalformed = errors.New("malformed amount")
	// ErrTooPrecise indicates that the amount has more than Places fractional digits.
	ErrTooPrecise = errors.New("too many fractional digits")
	// ErrNotPositive indicates that the amount is zero or negative.
	ErrNotPositive = errors.New("amount must be positive")
	// ErrTooLarge indicates that the amount exceeds MaxAmount.
	ErrTooLarge = errors.New("amount is too large")
)

// Parse converts the amount string into a decimal.
//
// The amount must be a positive number with at most Places fractional digits
// not greater than MaxAmount.
func Parse(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, ErrMalformed
	}

	if !d.Equal(d.Truncate(Places)) {
		return decimal.Zero, ErrTooPrecise
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}

	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrTooLarge
	}

	return d, nil
}

// IsValidAmount returns true if the amount can be parsed by Parse.
func IsValidAmount(amount string) bool {
	_, err := Parse(amount)
	return err == nil
}

// ValidAmount validates whether the field holds a valid money amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if a, ok := fl.Field().Interface().(string); ok {
		return IsValidAmount(a)
	}

	return false
}
