package testutils

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/models"
)

// MockLogger creates a debug logger that discards its output
func MockLogger() *logrus.Logger {
	log := logger.New("debug")
	log.SetOutput(io.Discard)
	return log
}

// MockConfig creates a configuration suitable for tests
func MockConfig() *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "debug",

		NBP: config.NBPProvider{
			BaseURL:          "http://127.0.0.1:0/api",
			TimeoutSeconds:   2,
			RetryCount:       0,
			RetryDelayMillis: 10,
		},
		Conversion: config.Conversion{
			Provider:             config.ProviderNBP,
			BaseCurrency:         "PLN",
			CacheRefreshSeconds:  60,
			FailureTimeoutMillis: 1000,
			FailureThreshold:     2,
		},
		RateLimit: config.RateLimit{
			Enabled:       false,
			Requests:      100,
			WindowSeconds: 60,
			Burst:         10,
		},
	}
}

// MockConfigWithServer points the NBP provider at a mock server
func MockConfigWithServer(serverURL string) *config.Config {
	configuration := MockConfig()
	configuration.NBP.BaseURL = serverURL
	return configuration
}

// MockRateTable creates a single-rate table A answer
func MockRateTable(code, mid string) *models.RateTable {
	return &models.RateTable{
		Table: "A",
		Code:  code,
		Rates: []models.Rate{{No: "042/A/NBP/2024", EffectiveDate: "2024-03-01", Mid: decimal.RequireFromString(mid)}},
	}
}

// MockContextWithTrace returns a context carrying a fixed trace id
func MockContextWithTrace() context.Context {
	return logger.WithTraceID(context.Background(), "test-trace-id")
}
