package account

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dalfonso89/account-exchange-service/internal/models"
	"github.com/dalfonso89/account-exchange-service/internal/money"
)

// Account is a bank account with its balance in the account currency
type Account struct {
	ID      uuid.UUID
	Number  string
	Balance money.Money
}

// WithBalance returns a copy of the account holding balance
func (account Account) WithBalance(balance money.Money) Account {
	account.Balance = balance
	return account
}

// ToDto maps the account to its transport shape
func (account Account) ToDto() models.AccountDto {
	return models.AccountDto{
		ID:     account.ID.String(),
		Number: account.Number,
		Balance: models.MoneyDto{
			Amount:   account.Balance.Amount().StringFixed(2),
			Currency: account.Balance.Currency(),
		},
	}
}

// NormalizeNumber strips spaces so "65 1090 ..." and "651090..." find the same account
func NormalizeNumber(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), " ", "")
}
