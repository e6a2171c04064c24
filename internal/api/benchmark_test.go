package api

import (
	"fmt"
	"io"
	"net/http"
	"testing"
)

func benchmarkGet(client *http.Client, url string) error {
	response, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	_, _ = io.Copy(io.Discard, response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", response.StatusCode)
	}
	return nil
}

// BenchmarkAccountEndpoint benchmarks converted balance lookups served from a warm rate cache
func BenchmarkAccountEndpoint(b *testing.B) {
	suite := NewIntegrationTestSuite(b, nil)
	url := suite.server.URL + plnAccountPath + "?currency=EUR"
	client := suite.server.Client()
	if err := benchmarkGet(client, url); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := benchmarkGet(client, url); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConcurrentAccountEndpoint benchmarks the account endpoint under concurrent load
func BenchmarkConcurrentAccountEndpoint(b *testing.B) {
	suite := NewIntegrationTestSuite(b, nil)
	url := suite.server.URL + plnAccountPath + "?currency=EUR"
	client := suite.server.Client()
	if err := benchmarkGet(client, url); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := benchmarkGet(client, url); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkHealthCheck benchmarks the health check endpoint
func BenchmarkHealthCheck(b *testing.B) {
	suite := NewIntegrationTestSuite(b, nil)
	client := suite.server.Client()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := benchmarkGet(client, suite.server.URL+"/health"); err != nil {
			b.Fatal(err)
		}
	}
}
