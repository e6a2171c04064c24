package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dalfonso89/account-exchange-service/internal/config"
	"github.com/dalfonso89/account-exchange-service/internal/logger"
	"github.com/dalfonso89/account-exchange-service/internal/models"
)

// idleClientTTL is how long a client may stay silent before its limiter is dropped
const idleClientTTL = 30 * time.Minute

// Limiter applies a token bucket per client IP
type Limiter struct {
	configuration config.RateLimit
	logger        logrus.FieldLogger

	clients      map[string]*client
	clientsMutex sync.Mutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter refilling Requests tokens per Window with room for Burst
func NewLimiter(configuration config.RateLimit, log logrus.FieldLogger) *Limiter {
	rateLimiter := &Limiter{
		configuration: configuration,
		logger:        log,
		clients:       make(map[string]*client),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	go rateLimiter.cleanup()

	return rateLimiter
}

// Allow reports whether a request from clientIP may proceed
func (rateLimiter *Limiter) Allow(clientIP string) bool {
	if !rateLimiter.configuration.Enabled {
		return true
	}

	now := time.Now()
	rateLimiter.clientsMutex.Lock()
	entry, found := rateLimiter.clients[clientIP]
	if !found {
		entry = &client{limiter: rate.NewLimiter(rateLimiter.limit(), rateLimiter.burst())}
		rateLimiter.clients[clientIP] = entry
	}
	entry.lastSeen = now
	rateLimiter.clientsMutex.Unlock()

	return entry.limiter.AllowN(now, 1)
}

func (rateLimiter *Limiter) limit() rate.Limit {
	window := rateLimiter.configuration.Window()
	if window <= 0 || rateLimiter.configuration.Requests <= 0 {
		return rate.Inf
	}
	return rate.Every(window / time.Duration(rateLimiter.configuration.Requests))
}

func (rateLimiter *Limiter) burst() int {
	if rateLimiter.configuration.Burst > 0 {
		return rateLimiter.configuration.Burst
	}
	return rateLimiter.configuration.Requests
}

// Middleware rejects requests over the limit with 429
func (rateLimiter *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := GetClientIP(c.Request)

		if !rateLimiter.Allow(clientIP) {
			logger.FromContext(c.Request.Context(), rateLimiter.logger).Warnf("Rate limit exceeded for IP: %s", clientIP)
			c.Header("X-RateLimit-Limit", strconv.Itoa(rateLimiter.configuration.Requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(rateLimiter.configuration.Window()).Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limited",
				Message: "Rate limit exceeded",
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Next()
	}
}

// Clients returns the number of tracked clients
func (rateLimiter *Limiter) Clients() int {
	rateLimiter.clientsMutex.Lock()
	defer rateLimiter.clientsMutex.Unlock()
	return len(rateLimiter.clients)
}

// GetClientIP extracts the real client IP from the request
func GetClientIP(request *http.Request) string {
	if forwardedFor := request.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if clientIP := net.ParseIP(first); clientIP != nil {
			return clientIP.String()
		}
	}

	if realIP := request.Header.Get("X-Real-IP"); realIP != "" {
		if clientIP := net.ParseIP(strings.TrimSpace(realIP)); clientIP != nil {
			return clientIP.String()
		}
	}

	clientIP, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return clientIP
}

func (rateLimiter *Limiter) cleanup() {
	for {
		select {
		case <-rateLimiter.cleanupTicker.C:
			rateLimiter.evictIdle(time.Now())
		case <-rateLimiter.stopCleanup:
			rateLimiter.cleanupTicker.Stop()
			return
		}
	}
}

func (rateLimiter *Limiter) evictIdle(now time.Time) {
	rateLimiter.clientsMutex.Lock()
	defer rateLimiter.clientsMutex.Unlock()

	for clientIP, entry := range rateLimiter.clients {
		if now.Sub(entry.lastSeen) > idleClientTTL {
			delete(rateLimiter.clients, clientIP)
		}
	}
}

// Stop stops the cleanup goroutine
func (rateLimiter *Limiter) Stop() {
	rateLimiter.stopOnce.Do(func() { close(rateLimiter.stopCleanup) })
}
