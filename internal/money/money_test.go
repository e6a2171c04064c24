package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	code, err := ParseCurrency("eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	code, err = ParseCurrency(" PLN ")
	require.NoError(t, err)
	assert.Equal(t, "PLN", code)

	for _, invalid := range []string{"", "EU", "EURO", "ABC", "12$"} {
		_, err := ParseCurrency(invalid)
		assert.ErrorIs(t, err, ErrInvalidCurrency, "code %q", invalid)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("123.45", "pln")
	require.NoError(t, err)
	assert.Equal(t, "PLN", m.Currency())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	assert.False(t, m.IsZero())

	_, err = Parse("12,5", "PLN")
	assert.Error(t, err)

	_, err = Parse("12.5", "XYZ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestMoney_ZeroValue(t *testing.T) {
	var m Money
	assert.True(t, m.IsZero())
	assert.True(t, New(decimal.Zero, "PLN").Equal(MustParse("0.00", "PLN")))
	assert.False(t, MustParse("1", "PLN").Equal(MustParse("1", "EUR")))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("abc", "PLN") })
}
