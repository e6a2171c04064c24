package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/models"
)

var (
	// errRetryable marks failures worth another attempt (transport errors and 5xx)
	errRetryable = errors.New("retryable provider error")
	// errInvalidResponse marks a well-formed answer carrying an unusable rate
	errInvalidResponse = errors.New("invalid NBP response")
)

// maxResponseBytes bounds a rates answer; a single-currency table is a few hundred bytes
const maxResponseBytes = 64 << 10

// NBPRateProvider fetches mid rates from the National Bank of Poland API
type NBPRateProvider struct {
	configuration config.NBPProvider
	logger        logrus.FieldLogger
	httpClient    *http.Client

	// identical table requests in flight share one HTTP round trip
	requests singleflight.Group
}

// NewNBPRateProvider creates a provider whose calls are bounded by the configured timeout
func NewNBPRateProvider(configuration config.NBPProvider, log logrus.FieldLogger) *NBPRateProvider {
	httpTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &NBPRateProvider{
		configuration: configuration,
		logger:        log,
		httpClient:    &http.Client{Timeout: configuration.Timeout(), Transport: httpTransport},
	}
}

// Fetch returns the rates table for currencyCode. An unknown currency yields an empty table.
func (provider *NBPRateProvider) Fetch(ctx context.Context, tableCode, currencyCode string) (*models.RateTable, error) {
	key := tableCode + ":" + strings.ToUpper(currencyCode)
	result, err, shared := provider.requests.Do(key, func() (interface{}, error) {
		return provider.fetchWithRetry(ctx, tableCode, currencyCode)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.FromContext(ctx, provider.logger).Debugf("Shared in-flight NBP request %s", key)
	}
	return result.(*models.RateTable), nil
}

func (provider *NBPRateProvider) fetchWithRetry(ctx context.Context, tableCode, currencyCode string) (*models.RateTable, error) {
	log := logger.FromContext(ctx, provider.logger)

	var lastError error
	for attempt := 0; attempt <= provider.configuration.RetryCount; attempt++ {
		if attempt > 0 {
			log.Warnf("Retrying NBP request for %s (attempt %d): %v", currencyCode, attempt+1, lastError)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			case <-time.After(provider.configuration.RetryDelay()):
			}
		}

		rateTable, err := provider.fetchOnce(ctx, tableCode, currencyCode)
		if err == nil {
			return rateTable, nil
		}
		if !errors.Is(err, errRetryable) {
			return nil, err
		}
		lastError = err
	}
	return nil, lastError
}

func (provider *NBPRateProvider) fetchOnce(ctx context.Context, tableCode, currencyCode string) (*models.RateTable, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.buildURL(tableCode, currencyCode), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %w", errRetryable, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		// NBP answers 404 when it publishes no rate for the currency
		return &models.RateTable{Table: tableCode, Code: currencyCode}, nil
	case response.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: provider returned status %d", errRetryable, response.StatusCode)
	case response.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("provider returned status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rateTable models.RateTable
	if err := json.Unmarshal(body, &rateTable); err != nil {
		return nil, fmt.Errorf("failed to parse NBP response: %w", err)
	}
	if mid, found := rateTable.MidRate(); found && !mid.IsPositive() {
		return nil, fmt.Errorf("%w: mid rate for %s must be positive, got %s", errInvalidResponse, currencyCode, mid)
	}
	return &rateTable, nil
}

// buildURL follows the NBP format: {base}/exchangerates/rates/{table}/{code}/?format=json
func (provider *NBPRateProvider) buildURL(tableCode, currencyCode string) string {
	return fmt.Sprintf("%s/exchangerates/rates/%s/%s/?format=json",
		strings.TrimSuffix(provider.configuration.BaseURL, "/"),
		url.PathEscape(strings.ToLower(tableCode)),
		url.PathEscape(strings.ToLower(currencyCode)))
}
