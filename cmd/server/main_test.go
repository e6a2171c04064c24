package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/metrics"
	"github.com/dalfonso89/account-exchange-service/internal/service"
	"github.com/dalfonso89/account-exchange-service/internal/testutils"
)

func TestNewConverter(t *testing.T) {
	tests := []struct {
		provider string
		assertFn func(t *testing.T, converter service.CurrencyConverter)
	}{
		{
			provider: config.ProviderNBP,
			assertFn: func(t *testing.T, converter service.CurrencyConverter) {
				assert.IsType(t, &service.ConversionService{}, converter)
			},
		},
		{
			provider: config.ProviderStub,
			assertFn: func(t *testing.T, converter service.CurrencyConverter) {
				assert.IsType(t, &service.StubConversionService{}, converter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := testutils.MockConfig()
			cfg.Conversion.Provider = tt.provider

			converter := newConverter(cfg, metrics.NewConversionMetrics(prometheus.NewRegistry()), testutils.MockLogger())

			tt.assertFn(t, converter)
		})
	}
}
