package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTable_DecodesNBPPayload(t *testing.T) {
	payload := `{"table":"A","currency":"euro","code":"EUR","rates":[{"no":"042/A/NBP/2024","effectiveDate":"2024-03-01","mid":4.3211}]}`

	var table RateTable
	require.NoError(t, json.Unmarshal([]byte(payload), &table))

	assert.Equal(t, "A", table.Table)
	assert.Equal(t, "EUR", table.Code)
	require.Len(t, table.Rates, 1)
	assert.Equal(t, "2024-03-01", table.Rates[0].EffectiveDate)

	mid, found := table.MidRate()
	require.True(t, found)
	assert.Equal(t, "4.3211", mid.String())
}

func TestRateTable_MidRate(t *testing.T) {
	tests := []struct {
		name  string
		table *RateTable
		found bool
	}{
		{"nil table", nil, false},
		{"no rates", &RateTable{Code: "EUR"}, false},
		{"empty rates", &RateTable{Code: "EUR", Rates: []Rate{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found := tt.table.MidRate()
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestRateTable_MidRateUsesFirstEntry(t *testing.T) {
	payload := `{"code":"USD","rates":[{"mid":"3.9512"},{"mid":"4.0000"}]}`

	var table RateTable
	require.NoError(t, json.Unmarshal([]byte(payload), &table))

	mid, found := table.MidRate()
	require.True(t, found)
	assert.Equal(t, "3.9512", mid.String())
}

func TestAccountDto_JSON(t *testing.T) {
	dto := AccountDto{
		ID:      "fa07c538-8ce4-4ee3-8365-0a7d1a2c7d8a",
		Number:  "65 1090 1665 0000 0001 0373 7343",
		Balance: MoneyDto{Amount: "123.45", Currency: "PLN"},
	}

	encoded, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"fa07c538-8ce4-4ee3-8365-0a7d1a2c7d8a","number":"65 1090 1665 0000 0001 0373 7343","balance":{"amount":"123.45","currency":"PLN"}}`, string(encoded))
}
