package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/money"
)

var (
	plnToEURRate = decimal.RequireFromString("0.22")
	eurToPLNRate = decimal.RequireFromString("4.58")
)

// StubConversionService converts between PLN and EUR with fixed rates.
// It is meant for local runs without network access to the rate provider.
type StubConversionService struct {
	logger logrus.FieldLogger
}

func NewStubConversionService(log logrus.FieldLogger) *StubConversionService {
	return &StubConversionService{logger: log}
}

// Convert returns amount unchanged when it is already in targetCurrency
func (stubService *StubConversionService) Convert(ctx context.Context, amount money.Money, targetCurrency string) (money.Money, error) {
	log := logger.FromContext(ctx, stubService.logger)
	log.Infof("Converting money %s to target currency %s", amount, targetCurrency)

	if amount.IsZero() || targetCurrency == "" {
		return money.Money{}, newError(KindInvalidArgument, "money and target currency must not be empty", nil)
	}
	if amount.Currency() == targetCurrency {
		return amount, nil
	}

	rate := plnToEURRate
	if targetCurrency == "PLN" {
		rate = eurToPLNRate
	}

	log.Debugf("Calculating money %s to target currency %s with rate %s", amount, targetCurrency, rate)
	converted, err := money.ConvertMoney(amount, rate, targetCurrency, money.RoundHalfDown)
	if err != nil {
		return money.Money{}, newError(KindInvalidArgument, "cannot convert with rate "+rate.String(), err)
	}
	return converted, nil
}
