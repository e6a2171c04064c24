package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/logger"
)

// Service picks the plain or the converting lookup depending on whether a currency was requested
type Service struct {
	findAccount           *FindAccountUseCase
	findAccountAndConvert *FindAccountAndConvertCurrencyUseCase
	logger                logrus.FieldLogger
}

func NewService(findAccount *FindAccountUseCase, findAccountAndConvert *FindAccountAndConvertCurrencyUseCase, log logrus.FieldLogger) *Service {
	return &Service{
		findAccount:           findAccount,
		findAccountAndConvert: findAccountAndConvert,
		logger:                log,
	}
}

// FindByID returns the account, converting its balance when currency is not empty
func (accountService *Service) FindByID(ctx context.Context, id uuid.UUID, currency string) (Account, bool, error) {
	logger.FromContext(ctx, accountService.logger).Debugf("Finding account by id %s", id)
	if currency != "" {
		return accountService.findAccountAndConvert.ByID(ctx, id, currency)
	}
	found, ok := accountService.findAccount.ByID(ctx, id)
	return found, ok, nil
}

// FindByNumber returns the account, converting its balance when currency is not empty
func (accountService *Service) FindByNumber(ctx context.Context, number, currency string) (Account, bool, error) {
	logger.FromContext(ctx, accountService.logger).Debugf("Finding account by number %s", number)
	if currency != "" {
		return accountService.findAccountAndConvert.ByNumber(ctx, number, currency)
	}
	found, ok := accountService.findAccount.ByNumber(ctx, number)
	return found, ok, nil
}
