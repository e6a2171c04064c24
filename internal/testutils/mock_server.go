package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/dalfonso89/account-exchange-service/internal/models"
)

// MockNBPServer serves NBP-shaped rate tables from memory
type MockNBPServer struct {
	server *httptest.Server

	mutex      sync.RWMutex
	rates      map[string]decimal.Decimal
	statusCode int
	rawBody    string

	requests atomic.Int64
}

// NewMockNBPServer starts a server publishing a few table A mid rates
func NewMockNBPServer() *MockNBPServer {
	mock := &MockNBPServer{
		rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("4.3211"),
			"USD": decimal.RequireFromString("3.9512"),
			"CHF": decimal.RequireFromString("4.5120"),
		},
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

// handler answers /exchangerates/rates/{table}/{code}/
func (m *MockNBPServer) handler(w http.ResponseWriter, r *http.Request) {
	m.requests.Add(1)

	m.mutex.RLock()
	statusCode, rawBody := m.statusCode, m.rawBody
	m.mutex.RUnlock()

	if statusCode != 0 {
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}
	if rawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rawBody))
		return
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) < 4 || segments[0] != "exchangerates" || segments[1] != "rates" {
		http.NotFound(w, r)
		return
	}
	table, code := strings.ToUpper(segments[2]), strings.ToUpper(segments[3])

	m.mutex.RLock()
	mid, found := m.rates[code]
	m.mutex.RUnlock()
	if !found {
		http.Error(w, "404 NotFound - Not Found - Brak danych", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.RateTable{
		Table: table,
		Code:  code,
		Rates: []models.Rate{{No: "042/A/NBP/2024", EffectiveDate: "2024-03-01", Mid: mid}},
	})
}

// URL returns the base URL of the mock server
func (m *MockNBPServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockNBPServer) Close() {
	m.server.Close()
}

// SetRate publishes or replaces the mid rate of code
func (m *MockNBPServer) SetRate(code, mid string) {
	m.mutex.Lock()
	m.rates[strings.ToUpper(code)] = decimal.RequireFromString(mid)
	m.mutex.Unlock()
}

// FailWith makes every request answer statusCode; zero restores normal answers
func (m *MockNBPServer) FailWith(statusCode int) {
	m.mutex.Lock()
	m.statusCode = statusCode
	m.mutex.Unlock()
}

// RespondWith makes every request answer body verbatim; empty restores normal answers
func (m *MockNBPServer) RespondWith(body string) {
	m.mutex.Lock()
	m.rawBody = body
	m.mutex.Unlock()
}

// Requests returns how many requests reached the server
func (m *MockNBPServer) Requests() int64 {
	return m.requests.Load()
}
