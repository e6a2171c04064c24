package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/account-exchange-service/internal/account"
	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/metrics"
	"github.com/dalfonso89/account-exchange-service/internal/models"
	"github.com/dalfonso89/account-exchange-service/internal/ratelimit"
	"github.com/dalfonso89/account-exchange-service/internal/service"
	"github.com/dalfonso89/account-exchange-service/internal/testutils"
)

const (
	plnAccountPath = "/accounts/fa07c538-8ce4-4ee3-8365-0a7d1a2c7d8a"
	eurAccountPath = "/accounts/78743539-7d2b-4f1e-9a4b-0b2b8f3e0c51"
)

// IntegrationTestSuite runs the whole HTTP stack against a mock NBP server
type IntegrationTestSuite struct {
	server    *httptest.Server
	nbpServer *testutils.MockNBPServer
	config    *config.Config
}

func NewIntegrationTestSuite(tb testing.TB, configure func(*config.Config)) *IntegrationTestSuite {
	tb.Helper()

	nbpServer := testutils.NewMockNBPServer()
	tb.Cleanup(nbpServer.Close)

	cfg := testutils.MockConfigWithServer(nbpServer.URL())
	if configure != nil {
		configure(cfg)
	}

	log := testutils.MockLogger()
	registry := prometheus.NewRegistry()
	provider := service.NewNBPRateProvider(cfg.NBP, log)
	converter := service.NewConversionService(provider, cfg.Conversion, metrics.NewConversionMetrics(registry), log)

	repository := account.NewSeededRepository()
	accountService := account.NewService(
		account.NewFindAccountUseCase(repository, log),
		account.NewFindAccountAndConvertCurrencyUseCase(repository, converter, cfg.Conversion.BaseCurrency, log),
		log,
	)

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimit, log)
	tb.Cleanup(rateLimiter.Stop)

	handlers := NewHandlers(accountService, log).
		WithConverter(config.ProviderNBP, converter).
		WithRateLimit(rateLimiter).
		WithMetrics(registry)

	server := httptest.NewServer(handlers.SetupRoutes())
	tb.Cleanup(server.Close)

	return &IntegrationTestSuite{server: server, nbpServer: nbpServer, config: cfg}
}

func (suite *IntegrationTestSuite) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	response, err := http.Get(suite.server.URL + path)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, body
}

func (suite *IntegrationTestSuite) getAccount(t *testing.T, path string) models.AccountDto {
	t.Helper()
	status, body := suite.get(t, path)
	require.Equal(t, http.StatusOK, status, string(body))

	var dto models.AccountDto
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

func (suite *IntegrationTestSuite) getError(t *testing.T, path string, expectedStatus int) models.ErrorResponse {
	t.Helper()
	status, body := suite.get(t, path)
	require.Equal(t, expectedStatus, status, string(body))

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func TestIntegration_ConvertsAndCachesRate(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)
	suite.nbpServer.SetRate("EUR", "4.00")

	dto := suite.getAccount(t, plnAccountPath+"?currency=EUR")
	assert.Equal(t, "30.86", dto.Balance.Amount)
	assert.Equal(t, "EUR", dto.Balance.Currency)

	dto = suite.getAccount(t, "/accounts/number/65%201090%201665%200000%200001%200373%207343?currency=EUR")
	assert.Equal(t, "30.86", dto.Balance.Amount)

	assert.Equal(t, int64(1), suite.nbpServer.Requests())
}

func TestIntegration_PlainLookupSkipsProvider(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)

	dto := suite.getAccount(t, eurAccountPath)

	assert.Equal(t, "456.78", dto.Balance.Amount)
	assert.Equal(t, "EUR", dto.Balance.Currency)
	assert.Zero(t, suite.nbpServer.Requests())
}

func TestIntegration_BaseCurrency(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)

	dto := suite.getAccount(t, plnAccountPath+"?currency=PLN")
	assert.Equal(t, "123.45", dto.Balance.Amount)

	response := suite.getError(t, eurAccountPath+"?currency=PLN", http.StatusBadRequest)
	assert.Equal(t, "currency_mismatch", response.Error)
	assert.Equal(t, "Cannot convert currency from EUR to PLN.", response.Message)

	assert.Zero(t, suite.nbpServer.Requests())
}

func TestIntegration_UnpublishedCurrency(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)

	response := suite.getError(t, plnAccountPath+"?currency=JPY", http.StatusBadGateway)

	assert.Equal(t, "rate_unavailable", response.Error)
}

func TestIntegration_BreakerOpensAfterFailures(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)
	suite.nbpServer.FailWith(http.StatusInternalServerError)

	for i := 0; i < suite.config.Conversion.FailureThreshold; i++ {
		response := suite.getError(t, plnAccountPath+"?currency=USD", http.StatusBadGateway)
		assert.Equal(t, "provider_failure", response.Error)
	}
	requestsBeforeOpen := suite.nbpServer.Requests()

	response := suite.getError(t, plnAccountPath+"?currency=USD", http.StatusServiceUnavailable)
	assert.Equal(t, "service_unavailable", response.Error)
	assert.Equal(t, requestsBeforeOpen, suite.nbpServer.Requests())

	status, body := suite.get(t, "/health")
	require.Equal(t, http.StatusOK, status)
	var health models.HealthCheck
	require.NoError(t, json.Unmarshal(body, &health))
	require.NotNil(t, health.Breaker)
	assert.Equal(t, "OPEN", health.Breaker.State)
	assert.Equal(t, "degraded", health.Status)
}

func TestIntegration_RateLimit(t *testing.T) {
	suite := NewIntegrationTestSuite(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Burst = 2
	})

	suite.getAccount(t, eurAccountPath)
	suite.getAccount(t, eurAccountPath)
	response := suite.getError(t, eurAccountPath, http.StatusTooManyRequests)

	assert.Equal(t, "rate_limited", response.Error)
}

func TestIntegration_MetricsEndpoint(t *testing.T) {
	suite := NewIntegrationTestSuite(t, nil)
	suite.getAccount(t, plnAccountPath+"?currency=EUR")

	status, body := suite.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `currency_conversions_total{currency="EUR",outcome="ok"} 1`)
	assert.Contains(t, string(body), `rate_cache_lookups_total{result="miss"} 1`)
}
