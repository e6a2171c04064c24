package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/account-exchange-service/internal/account"
	"github.com/dalfonso89/account-exchange-service/internal/breaker"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/middleware"
	"github.com/dalfonso89/account-exchange-service/internal/models"
	"github.com/dalfonso89/account-exchange-service/internal/money"
	"github.com/dalfonso89/account-exchange-service/internal/ratelimit"
	"github.com/dalfonso89/account-exchange-service/internal/service"
)

const version = "1.0.0"

// AccountFinder looks accounts up, optionally converting the balance
type AccountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID, currency string) (account.Account, bool, error)
	FindByNumber(ctx context.Context, number, currency string) (account.Account, bool, error)
}

// BreakerReporter exposes the circuit breaker for health checks
type BreakerReporter interface {
	BreakerSnapshot() breaker.Snapshot
}

// Handlers contains all HTTP handlers
type Handlers struct {
	accounts      AccountFinder
	logger        logrus.FieldLogger
	startTime     time.Time
	converterName string
	breaker       BreakerReporter
	rateLimiter   *ratelimit.Limiter
	gatherer      prometheus.Gatherer
}

// NewHandlers creates a new handlers instance
func NewHandlers(accounts AccountFinder, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		accounts:  accounts,
		logger:    log,
		startTime: time.Now(),
	}
}

// WithConverter records which converter backs the balances and, when it has one, its breaker
func (handlers *Handlers) WithConverter(name string, converter service.CurrencyConverter) *Handlers {
	handlers.converterName = name
	if reporter, ok := converter.(BreakerReporter); ok {
		handlers.breaker = reporter
	}
	return handlers
}

// WithRateLimit attaches the rate limiter after initialization
func (handlers *Handlers) WithRateLimit(rateLimiter *ratelimit.Limiter) *Handlers {
	handlers.rateLimiter = rateLimiter
	return handlers
}

// WithMetrics exposes gatherer on /metrics
func (handlers *Handlers) WithMetrics(gatherer prometheus.Gatherer) *Handlers {
	handlers.gatherer = gatherer
	return handlers
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimiter.Middleware())
	}

	router.GET("/health", handlers.HealthCheck)
	if handlers.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(handlers.gatherer, promhttp.HandlerOpts{})))
	}

	accounts := router.Group("/accounts")
	{
		accounts.GET("/:id", handlers.GetAccountByID)
		accounts.GET("/number/:number", handlers.GetAccountByNumber)
	}

	return router
}

// HealthCheck reports uptime and the breaker state of the converter
func (handlers *Handlers) HealthCheck(c *gin.Context) {
	healthCheckResponse := models.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(handlers.startTime).String(),
		Converter: handlers.converterName,
	}

	if handlers.breaker != nil {
		snapshot := handlers.breaker.BreakerSnapshot()
		healthCheckResponse.Breaker = &models.BreakerState{
			State:         snapshot.State.String(),
			FailureCount:  snapshot.FailureCount,
			LastFailureAt: snapshot.LastFailureAt,
		}
		if snapshot.State == breaker.Open {
			healthCheckResponse.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, healthCheckResponse)
}

// GetAccountByID returns an account, its balance converted when ?currency= is given
func (handlers *Handlers) GetAccountByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handlers.writeErrorResponse(c, http.StatusBadRequest, "invalid_account_id", "Account ID must be a UUID")
		return
	}

	currency, ok := handlers.targetCurrency(c)
	if !ok {
		return
	}

	found, exists, err := handlers.accounts.FindByID(c.Request.Context(), id, currency)
	handlers.writeAccount(c, found, exists, err)
}

// GetAccountByNumber returns an account found by its number
func (handlers *Handlers) GetAccountByNumber(c *gin.Context) {
	number := account.NormalizeNumber(c.Param("number"))
	if number == "" {
		handlers.writeErrorResponse(c, http.StatusBadRequest, "invalid_account_number", "Account number must not be empty")
		return
	}

	currency, ok := handlers.targetCurrency(c)
	if !ok {
		return
	}

	found, exists, err := handlers.accounts.FindByNumber(c.Request.Context(), number, currency)
	handlers.writeAccount(c, found, exists, err)
}

// targetCurrency validates the optional currency query parameter
func (handlers *Handlers) targetCurrency(c *gin.Context) (string, bool) {
	requested := c.Query("currency")
	if requested == "" {
		return "", true
	}

	currency, err := money.ParseCurrency(requested)
	if err != nil {
		handlers.writeErrorResponse(c, http.StatusBadRequest, "invalid_currency", err.Error())
		return "", false
	}
	return currency, true
}

func (handlers *Handlers) writeAccount(c *gin.Context, found account.Account, exists bool, err error) {
	if err != nil {
		status, code, message := statusForError(err)
		logger.FromContext(c.Request.Context(), handlers.logger).Errorf("Account lookup failed: %v", err)
		_ = c.Error(err)
		handlers.writeErrorResponse(c, status, code, message)
		return
	}
	if !exists {
		handlers.writeErrorResponse(c, http.StatusNotFound, "account_not_found", "Account not found")
		return
	}

	c.JSON(http.StatusOK, found.ToDto())
}

// statusForError maps a lookup failure to an HTTP status, an error code and a fixed client message.
// Underlying causes are only logged.
func statusForError(err error) (int, string, string) {
	if errors.Is(err, account.ErrCurrencyMismatch) {
		var mismatch *account.CurrencyMismatchError
		if errors.As(err, &mismatch) {
			return http.StatusBadRequest, "currency_mismatch", mismatch.Error()
		}
		return http.StatusBadRequest, "currency_mismatch", "Currency conversion not supported"
	}

	kind, ok := service.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
	switch kind {
	case service.KindInvalidArgument:
		return http.StatusBadRequest, kind.String(), "Currency conversion rejected the request"
	case service.KindServiceUnavailable:
		return http.StatusServiceUnavailable, kind.String(), "Currency conversion is temporarily unavailable"
	case service.KindRateUnavailable:
		return http.StatusBadGateway, kind.String(), "No exchange rate is published for the requested currency"
	case service.KindProviderFailure:
		return http.StatusBadGateway, kind.String(), "Exchange rate provider failed"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(c *gin.Context, statusCode int, errorCode, message string) {
	c.JSON(statusCode, models.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Code:    statusCode,
	})
}
