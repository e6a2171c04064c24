package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of every converted amount
const Scale = 2

// ErrInvalidRate is returned when converting with a zero rate
var ErrInvalidRate = errors.New("rate cannot be zero")

// RoundingMode decides what happens to the digits dropped past Scale
type RoundingMode int

const (
	// RoundHalfDown rounds to nearest, ties toward zero (0.005 -> 0.00)
	RoundHalfDown RoundingMode = iota
	// RoundHalfUp rounds to nearest, ties away from zero (0.005 -> 0.01)
	RoundHalfUp
	// RoundHalfEven rounds to nearest, ties to the even neighbour
	RoundHalfEven
	// RoundDown truncates toward zero
	RoundDown
)

func (mode RoundingMode) String() string {
	switch mode {
	case RoundHalfDown:
		return "HALF_DOWN"
	case RoundHalfUp:
		return "HALF_UP"
	case RoundHalfEven:
		return "HALF_EVEN"
	case RoundDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

var (
	two  = decimal.NewFromInt(2)
	unit = decimal.New(1, -Scale)
)

// Convert divides amount by rate and rounds the exact quotient to Scale digits.
// The decision is taken on the exact remainder, never on an intermediate
// rounded quotient, so results are reproducible for any input precision.
func Convert(amount, rate decimal.Decimal, mode RoundingMode) (decimal.Decimal, error) {
	if rate.IsZero() {
		return decimal.Decimal{}, ErrInvalidRate
	}

	// quotient is truncated toward zero; remainder carries the sign of amount
	quotient, remainder := amount.QuoRem(rate, Scale)
	if remainder.IsZero() || mode == RoundDown {
		return quotient.Round(Scale), nil
	}

	// compare the dropped fraction against one half of a unit in the last place
	half := remainder.Abs().Mul(two).Cmp(rate.Abs().Mul(unit))

	awayFromZero := false
	switch mode {
	case RoundHalfDown:
		awayFromZero = half > 0
	case RoundHalfUp:
		awayFromZero = half >= 0
	case RoundHalfEven:
		awayFromZero = half > 0 || (half == 0 && isOddInLastPlace(quotient))
	}

	if awayFromZero {
		if amount.Sign()*rate.Sign() < 0 {
			quotient = quotient.Sub(unit)
		} else {
			quotient = quotient.Add(unit)
		}
	}
	return quotient.Round(Scale), nil
}

func isOddInLastPlace(quotient decimal.Decimal) bool {
	lastDigit := quotient.Shift(Scale).Abs().Mod(two)
	return !lastDigit.IsZero()
}

// ConvertMoney converts m into targetCurrency using rate and the given mode
func ConvertMoney(m Money, rate decimal.Decimal, targetCurrency string, mode RoundingMode) (Money, error) {
	converted, err := Convert(m.Amount(), rate, mode)
	if err != nil {
		return Money{}, err
	}
	return New(converted, targetCurrency), nil
}
