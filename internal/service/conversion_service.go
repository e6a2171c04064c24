package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/breaker"
	"github.com/dalfonso89/account-exchange-service/internal/cache"
	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/metrics"
	"github.com/dalfonso89/account-exchange-service/internal/money"
)

// ConversionService resolves mid rates through a cache and a circuit breaker
// guarding the rate provider, then converts with half-down rounding.
type ConversionService struct {
	provider       RateProvider
	rateCache      *cache.RateCache
	circuitBreaker *breaker.CircuitBreaker
	metrics        *metrics.ConversionMetrics
	logger         logrus.FieldLogger
}

// NewConversionService wires a service with its own cache and breaker built from configuration
func NewConversionService(provider RateProvider, configuration config.Conversion, conversionMetrics *metrics.ConversionMetrics, log logrus.FieldLogger) *ConversionService {
	conversionService := NewConversionServiceWith(
		provider,
		cache.NewRateCache(configuration.CacheRefresh()),
		breaker.New(configuration.FailureTimeout(), configuration.FailureThreshold),
		conversionMetrics,
		log,
	)

	log.WithFields(logrus.Fields{
		"cache_refresh_seconds":  configuration.CacheRefreshSeconds,
		"failure_timeout_millis": configuration.FailureTimeoutMillis,
		"failure_threshold":      configuration.FailureThreshold,
	}).Info("Conversion service initialized")

	return conversionService
}

// NewConversionServiceWith wires a service around an existing cache and breaker
func NewConversionServiceWith(provider RateProvider, rateCache *cache.RateCache, circuitBreaker *breaker.CircuitBreaker, conversionMetrics *metrics.ConversionMetrics, log logrus.FieldLogger) *ConversionService {
	return &ConversionService{
		provider:       provider,
		rateCache:      rateCache,
		circuitBreaker: circuitBreaker,
		metrics:        conversionMetrics,
		logger:         log,
	}
}

// Convert converts amount into targetCurrency.
// Failures are *ConversionError values; provider failures are also counted by the breaker.
func (conversionService *ConversionService) Convert(ctx context.Context, amount money.Money, targetCurrency string) (money.Money, error) {
	log := logger.FromContext(ctx, conversionService.logger)
	log.Infof("Converting money %s to target currency %s", amount, targetCurrency)

	converted, err := conversionService.convert(ctx, log, amount, targetCurrency)
	conversionService.metrics.SetBreakerState(int(conversionService.circuitBreaker.State()))
	if err != nil {
		kind, _ := KindOf(err)
		conversionService.metrics.ObserveConversion(targetCurrency, kind.String())
		log.WithField("kind", kind.String()).Errorf("Currency conversion failed: %v", err)
		return money.Money{}, err
	}

	conversionService.metrics.ObserveConversion(targetCurrency, "ok")
	log.Infof("Converted amount %s", converted)
	return converted, nil
}

func (conversionService *ConversionService) convert(ctx context.Context, log logrus.FieldLogger, amount money.Money, targetCurrency string) (money.Money, error) {
	if amount.IsZero() || targetCurrency == "" {
		return money.Money{}, newError(KindInvalidArgument, "money and target currency must not be empty", nil)
	}

	if !conversionService.circuitBreaker.IsAvailable() {
		return money.Money{}, newError(KindServiceUnavailable, "service is unavailable", nil)
	}

	midRate, err := conversionService.resolveRate(ctx, log, targetCurrency)
	if err != nil {
		return money.Money{}, err
	}

	converted, err := money.ConvertMoney(amount, midRate, targetCurrency, money.RoundHalfDown)
	if err != nil {
		return money.Money{}, newError(KindInvalidArgument, "cannot convert with rate "+midRate.String(), err)
	}
	return converted, nil
}

// resolveRate serves a fresh cached rate or fetches one from the provider.
// Cache hits never touch the breaker; every fetch outcome is reported to it.
func (conversionService *ConversionService) resolveRate(ctx context.Context, log logrus.FieldLogger, targetCurrency string) (decimal.Decimal, error) {
	if midRate, found := conversionService.rateCache.Get(targetCurrency); found {
		conversionService.metrics.ObserveCacheLookup(true)
		log.Infof("Using cached exchange rate %s for currency %s", midRate, targetCurrency)
		return midRate, nil
	}
	conversionService.metrics.ObserveCacheLookup(false)

	log.Debugf("Retrieving new exchange rate for currency %s", targetCurrency)
	startedAt := time.Now()
	// the fetch runs to completion even when the caller goes away
	rateTable, err := conversionService.provider.Fetch(context.WithoutCancel(ctx), MidRateTable, targetCurrency)
	if err != nil {
		conversionService.metrics.ObserveProviderFetch("error", time.Since(startedAt))
		conversionService.circuitBreaker.RecordFailure()
		return decimal.Decimal{}, newError(KindProviderFailure, "failed to fetch exchange rate for currency "+targetCurrency, err)
	}

	midRate, found := rateTable.MidRate()
	if !found {
		conversionService.metrics.ObserveProviderFetch("empty", time.Since(startedAt))
		conversionService.circuitBreaker.RecordFailure()
		return decimal.Decimal{}, newError(KindRateUnavailable, "no exchange rate available for currency "+targetCurrency, nil)
	}
	conversionService.metrics.ObserveProviderFetch("ok", time.Since(startedAt))

	conversionService.rateCache.Put(targetCurrency, midRate)
	conversionService.circuitBreaker.Reset()
	log.Infof("Retrieved new exchange rate %s for currency %s", midRate, targetCurrency)
	return midRate, nil
}

// BreakerSnapshot exposes the breaker fields for health reporting
func (conversionService *ConversionService) BreakerSnapshot() breaker.Snapshot {
	return conversionService.circuitBreaker.Snapshot()
}
