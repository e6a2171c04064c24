package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/money"
	"github.com/dalfonso89/account-exchange-service/internal/service"
)

// ErrCurrencyMismatch is matched by every *CurrencyMismatchError
var ErrCurrencyMismatch = errors.New("currency conversion not supported")

// CurrencyMismatchError is returned when the base currency is requested for a balance held in another currency
type CurrencyMismatchError struct {
	From string
	To   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("Cannot convert currency from %s to %s.", e.From, e.To)
}

func (e *CurrencyMismatchError) Is(target error) bool {
	return target == ErrCurrencyMismatch
}

// FindAccountUseCase looks accounts up without touching the balance
type FindAccountUseCase struct {
	repository Repository
	logger     logrus.FieldLogger
}

func NewFindAccountUseCase(repository Repository, log logrus.FieldLogger) *FindAccountUseCase {
	return &FindAccountUseCase{repository: repository, logger: log}
}

func (useCase *FindAccountUseCase) ByID(ctx context.Context, id uuid.UUID) (Account, bool) {
	logger.FromContext(ctx, useCase.logger).Infof("Executing find account by ID %s", id)
	return useCase.repository.FindByID(ctx, id)
}

func (useCase *FindAccountUseCase) ByNumber(ctx context.Context, number string) (Account, bool) {
	logger.FromContext(ctx, useCase.logger).Infof("Executing find account by number %s", number)
	return useCase.repository.FindByNumber(ctx, number)
}

// FindAccountAndConvertCurrencyUseCase looks an account up and expresses its balance in a target currency.
// Conversion is skipped when the target is the base currency the rates are quoted against.
type FindAccountAndConvertCurrencyUseCase struct {
	repository   Repository
	converter    service.CurrencyConverter
	baseCurrency string
	logger       logrus.FieldLogger
}

func NewFindAccountAndConvertCurrencyUseCase(repository Repository, converter service.CurrencyConverter, baseCurrency string, log logrus.FieldLogger) *FindAccountAndConvertCurrencyUseCase {
	return &FindAccountAndConvertCurrencyUseCase{
		repository:   repository,
		converter:    converter,
		baseCurrency: baseCurrency,
		logger:       log,
	}
}

func (useCase *FindAccountAndConvertCurrencyUseCase) ByID(ctx context.Context, id uuid.UUID, targetCurrency string) (Account, bool, error) {
	logger.FromContext(ctx, useCase.logger).Infof("Executing find account by ID %s and converting to currency %s", id, targetCurrency)
	found, ok := useCase.repository.FindByID(ctx, id)
	return useCase.withConvertedBalance(ctx, found, ok, targetCurrency)
}

func (useCase *FindAccountAndConvertCurrencyUseCase) ByNumber(ctx context.Context, number, targetCurrency string) (Account, bool, error) {
	logger.FromContext(ctx, useCase.logger).Infof("Executing find account by number %s and converting to currency %s", number, targetCurrency)
	found, ok := useCase.repository.FindByNumber(ctx, number)
	return useCase.withConvertedBalance(ctx, found, ok, targetCurrency)
}

func (useCase *FindAccountAndConvertCurrencyUseCase) withConvertedBalance(ctx context.Context, found Account, ok bool, targetCurrency string) (Account, bool, error) {
	if !ok {
		return Account{}, false, nil
	}
	balance, err := useCase.convert(ctx, found.Balance, targetCurrency)
	if err != nil {
		return Account{}, true, err
	}
	return found.WithBalance(balance), true, nil
}

func (useCase *FindAccountAndConvertCurrencyUseCase) convert(ctx context.Context, balance money.Money, targetCurrency string) (money.Money, error) {
	log := logger.FromContext(ctx, useCase.logger)

	if useCase.baseCurrency != targetCurrency {
		log.Debugf("Calling service to convert money %s to target currency %s", balance, targetCurrency)
		return useCase.converter.Convert(ctx, balance, targetCurrency)
	}

	if balance.Currency() != targetCurrency {
		log.Errorf("Cannot convert money between the same currency %s", targetCurrency)
		return money.Money{}, &CurrencyMismatchError{From: balance.Currency(), To: targetCurrency}
	}

	return balance, nil
}
