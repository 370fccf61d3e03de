package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code. Only the currencies the app supports are
// accepted.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	ILS Currency = "ILS"
)

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	switch c {
	case USD, EUR, ILS:
		return true
	}
	return false
}

var (
	ErrBadAmount = errors.New("amount must be a decimal with at most two fraction digits")
	ErrBadDate   = errors.New("date must be in YYYY-MM-DD format")
)

// ParseAmount parses a monetary amount from its wire form. The value must
// be a valid decimal with a scale of at most two digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrBadAmount
	}
	if d.Exponent() < -2 {
		return decimal.Zero, ErrBadAmount
	}
	return d, nil
}

// FormatAmount renders an amount in its wire form: a fixed-point string
// with exactly two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ValidateDate checks a transaction date string.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return nil
}
