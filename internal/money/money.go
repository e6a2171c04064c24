package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrInvalidCurrency is returned when a currency code is not a known ISO-4217 code
var ErrInvalidCurrency = errors.New("invalid currency code")

// Money is an immutable amount paired with exactly one currency.
// The zero value carries no currency and stands for "no money given".
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money value for an already validated currency code
func New(amount decimal.Decimal, currencyCode string) Money {
	return Money{amount: amount, currency: strings.ToUpper(currencyCode)}
}

// Parse builds Money from a textual amount and currency code
func Parse(amount, currencyCode string) (Money, error) {
	code, err := ParseCurrency(currencyCode)
	if err != nil {
		return Money{}, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: value, currency: code}, nil
}

// MustParse is Parse for fixtures and seed data; it panics on bad input
func MustParse(amount, currencyCode string) Money {
	m, err := Parse(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseCurrency validates an ISO-4217 code and returns its canonical form
func ParseCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// Amount returns the monetary amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the ISO-4217 code
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether m is the zero Money (no currency attached)
func (m Money) IsZero() bool {
	return m.currency == ""
}

// Equal compares amount numerically and currency exactly
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders the amount with two decimals followed by the currency code
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
