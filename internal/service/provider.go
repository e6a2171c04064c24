package service

import (
	"context"

	"github.com/dalfonso89/account-exchange-service/internal/models"
	"github.com/dalfonso89/account-exchange-service/internal/money"
)

// MidRateTable is the NBP table holding average (mid-market) rates
const MidRateTable = "A"

// RateProvider fetches published rates for one currency of a rates table.
// A nil table or one without rates is a miss, an error is a provider failure.
type RateProvider interface {
	Fetch(ctx context.Context, tableCode, currencyCode string) (*models.RateTable, error)
}

// CurrencyConverter converts money into a target currency
type CurrencyConverter interface {
	Convert(ctx context.Context, amount money.Money, targetCurrency string) (money.Money, error)
}
