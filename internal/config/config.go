package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/dalfonso89/account-exchange-service/internal/money"
)

const (
	// ProviderNBP converts with live mid rates from the NBP API
	ProviderNBP = "nbp"
	// ProviderStub converts with fixed rates and never leaves the process
	ProviderStub = "stub"
)

// NBPProvider describes the external rate API
type NBPProvider struct {
	BaseURL          string `env:"NBP_API_BASE_URL" env-default:"https://api.nbp.pl/api"`
	TimeoutSeconds   int    `env:"NBP_API_TIMEOUT_SECONDS" env-default:"10"`
	RetryCount       int    `env:"NBP_API_RETRY_COUNT" env-default:"1"`
	RetryDelayMillis int    `env:"NBP_API_RETRY_DELAY_MILLIS" env-default:"200"`
}

// Timeout bounds a single HTTP call to the provider
func (provider NBPProvider) Timeout() time.Duration {
	return time.Duration(provider.TimeoutSeconds) * time.Second
}

// RetryDelay is the pause between two attempts of the same fetch
func (provider NBPProvider) RetryDelay() time.Duration {
	return time.Duration(provider.RetryDelayMillis) * time.Millisecond
}

// Conversion holds the cache and circuit breaker settings
type Conversion struct {
	Provider             string `env:"CONVERSION_PROVIDER" env-default:"nbp"`
	BaseCurrency         string `env:"BASE_CURRENCY" env-default:"PLN"`
	CacheRefreshSeconds  int    `env:"CACHE_REFRESH_SECONDS" env-default:"60"`
	FailureTimeoutMillis int    `env:"FAILURE_TIMEOUT_MILLIS" env-default:"30000"`
	FailureThreshold     int    `env:"FAILURE_THRESHOLD" env-default:"3"`
}

// CacheRefresh is how long a fetched rate stays fresh
func (conversion Conversion) CacheRefresh() time.Duration {
	return time.Duration(conversion.CacheRefreshSeconds) * time.Second
}

// FailureTimeout is how long an open breaker rejects calls
func (conversion Conversion) FailureTimeout() time.Duration {
	return time.Duration(conversion.FailureTimeoutMillis) * time.Millisecond
}

// RateLimit configures the per-client request limiter
type RateLimit struct {
	Enabled       bool `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Requests      int  `env:"RATE_LIMIT_REQUESTS" env-default:"100"`
	WindowSeconds int  `env:"RATE_LIMIT_WINDOW_SECONDS" env-default:"60"`
	Burst         int  `env:"RATE_LIMIT_BURST" env-default:"10"`
}

// Window is the period in which Requests are allowed
func (rateLimit RateLimit) Window() time.Duration {
	return time.Duration(rateLimit.WindowSeconds) * time.Second
}

// Config holds all configuration for the application
type Config struct {
	Port     string `env:"PORT" env-default:"8081"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	NBP        NBPProvider
	Conversion Conversion
	RateLimit  RateLimit
}

// Load reads .env (when present) and the environment, then validates the result
func Load() (*Config, error) {
	_ = godotenv.Load()

	var configuration Config
	if err := cleanenv.ReadEnv(&configuration); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the invariants the conversion subsystem relies on
func (configuration *Config) Validate() error {
	var problems []error

	conversion := &configuration.Conversion
	if conversion.CacheRefreshSeconds <= 0 {
		problems = append(problems, fmt.Errorf("CACHE_REFRESH_SECONDS must be positive, got %d", conversion.CacheRefreshSeconds))
	}
	if conversion.FailureTimeoutMillis <= 0 {
		problems = append(problems, fmt.Errorf("FAILURE_TIMEOUT_MILLIS must be positive, got %d", conversion.FailureTimeoutMillis))
	}
	if conversion.FailureThreshold <= 0 {
		problems = append(problems, fmt.Errorf("FAILURE_THRESHOLD must be positive, got %d", conversion.FailureThreshold))
	}

	baseCurrency, err := money.ParseCurrency(conversion.BaseCurrency)
	if err != nil {
		problems = append(problems, fmt.Errorf("BASE_CURRENCY: %w", err))
	} else {
		conversion.BaseCurrency = baseCurrency
	}

	switch conversion.Provider {
	case ProviderNBP:
		if configuration.NBP.BaseURL == "" {
			problems = append(problems, errors.New("NBP_API_BASE_URL must be set"))
		}
		if configuration.NBP.TimeoutSeconds <= 0 {
			problems = append(problems, fmt.Errorf("NBP_API_TIMEOUT_SECONDS must be positive, got %d", configuration.NBP.TimeoutSeconds))
		}
		if configuration.NBP.RetryCount < 0 {
			problems = append(problems, fmt.Errorf("NBP_API_RETRY_COUNT must not be negative, got %d", configuration.NBP.RetryCount))
		}
	case ProviderStub:
	default:
		problems = append(problems, fmt.Errorf("CONVERSION_PROVIDER must be %q or %q, got %q", ProviderNBP, ProviderStub, conversion.Provider))
	}

	if configuration.RateLimit.Enabled && (configuration.RateLimit.Requests <= 0 || configuration.RateLimit.WindowSeconds <= 0) {
		problems = append(problems, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW_SECONDS must be positive when rate limiting is enabled"))
	}

	return errors.Join(problems...)
}
