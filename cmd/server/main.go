package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/account"
	"github.com/dalfonso89/account-exchange-service/internal/api"
	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/metrics"
	"github.com/dalfonso89/account-exchange-service/internal/platform"
	"github.com/dalfonso89/account-exchange-service/internal/ratelimit"
	"github.com/dalfonso89/account-exchange-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	converter := newConverter(cfg, metrics.NewConversionMetrics(registry), appLogger)

	repository := account.NewSeededRepository()
	accountService := account.NewService(
		account.NewFindAccountUseCase(repository, appLogger),
		account.NewFindAccountAndConvertCurrencyUseCase(repository, converter, cfg.Conversion.BaseCurrency, appLogger),
		appLogger,
	)

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimit, appLogger)

	gin.SetMode(gin.ReleaseMode)
	handlers := api.NewHandlers(accountService, appLogger).
		WithConverter(cfg.Conversion.Provider, converter).
		WithRateLimit(rateLimiter).
		WithMetrics(registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		appLogger.WithFields(logrus.Fields{
			"port":      cfg.Port,
			"converter": cfg.Conversion.Provider,
		}).Info("Starting account exchange service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()
	<-shutdownCtx.Done()

	appLogger.Info("Shutting down server...")
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}

// newConverter builds the converter selected by CONVERSION_PROVIDER
func newConverter(cfg *config.Config, conversionMetrics *metrics.ConversionMetrics, log logrus.FieldLogger) service.CurrencyConverter {
	if cfg.Conversion.Provider == config.ProviderStub {
		log.Warn("Using stub currency conversion with fixed rates")
		return service.NewStubConversionService(log)
	}
	provider := service.NewNBPRateProvider(cfg.NBP, log)
	return service.NewConversionService(provider, cfg.Conversion, conversionMetrics, log)
}
