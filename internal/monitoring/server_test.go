// internal/monitoring/server_test.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthzAllHealthy(t *testing.T) {
	server := NewServer(ServerConfig{}, nil, map[string]HealthFunc{
		"store": func(ctx context.Context) error { return nil },
	})

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var payload struct {
		Healthy bool `json:"healthy"`
		Checks  map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !payload.Healthy {
		t.Error("healthy = false, want true")
	}
	if payload.Checks["store"].Status != "healthy" {
		t.Errorf("store check = %q", payload.Checks["store"].Status)
	}
}

func TestHealthzFailingCheck(t *testing.T) {
	server := NewServer(ServerConfig{}, nil, map[string]HealthFunc{
		"store": func(ctx context.Context) error { return fmt.Errorf("connection lost") },
	})

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", recorder.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server := NewServer(ServerConfig{}, func(ctx context.Context) (interface{}, error) {
		return map[string]int{"total_offers": 7}, nil
	}, nil)

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	var payload map[string]int
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if payload["total_offers"] != 7 {
		t.Errorf("total_offers = %d", payload["total_offers"])
	}
}

func TestStatsNotConfigured(t *testing.T) {
	server := NewServer(ServerConfig{}, nil, nil)

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
}

func TestStatsError(t *testing.T) {
	server := NewServer(ServerConfig{}, func(ctx context.Context) (interface{}, error) {
		return nil, fmt.Errorf("store unavailable")
	}, nil)

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", recorder.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	server := NewServer(ServerConfig{}, nil, nil)

	recorder := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
}
