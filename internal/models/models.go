package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTable is the NBP answer for one currency of one rates table
type RateTable struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []Rate `json:"rates"`
}

// Rate is a single published mid rate
type Rate struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           decimal.Decimal `json:"mid"`
}

// MidRate returns the first published rate, false when there is none
func (table *RateTable) MidRate() (decimal.Decimal, bool) {
	if table == nil || len(table.Rates) == 0 {
		return decimal.Decimal{}, false
	}
	return table.Rates[0].Mid, true
}

type MoneyDto struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type AccountDto struct {
	ID      string   `json:"id"`
	Number  string   `json:"number"`
	Balance MoneyDto `json:"balance"`
}

type HealthCheck struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Uptime    string        `json:"uptime"`
	Converter string        `json:"converter"`
	Breaker   *BreakerState `json:"breaker,omitempty"`
}

type BreakerState struct {
	State         string    `json:"state"`
	FailureCount  int       `json:"failure_count"`
	LastFailureAt time.Time `json:"last_failure_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
