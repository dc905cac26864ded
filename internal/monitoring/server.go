// internal/monitoring/server.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listlift/listlift/internal/utils"
)

var serverLogger = utils.NewComponentLogger("monitoring")

// StatsFunc produces the payload served at /stats
type StatsFunc func(ctx context.Context) (interface{}, error)

// HealthFunc reports readiness of a dependency
type HealthFunc func(ctx context.Context) error

// ServerConfig configures the monitoring HTTP server
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address" json:"listen_address"`
}

// Server exposes Prometheus metrics, a health endpoint, and a JSON stats
// endpoint over HTTP
type Server struct {
	httpServer *http.Server
	statsFunc  StatsFunc
	checks     map[string]HealthFunc
}

// NewServer builds the monitoring server and its routes
func NewServer(config ServerConfig, statsFunc StatsFunc, checks map[string]HealthFunc) *Server {
	if config.ListenAddress == "" {
		config.ListenAddress = ":9090"
	}

	s := &Server{
		statsFunc: statsFunc,
		checks:    checks,
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         config.ListenAddress,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start serves HTTP until the listener fails or Shutdown is called
func (s *Server) Start() error {
	serverLogger.Info(fmt.Sprintf("Monitoring server listening on %s", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	type checkResult struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	results := make(map[string]checkResult, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			healthy = false
			results[name] = checkResult{Status: "unhealthy", Error: err.Error()}
		} else {
			results[name] = checkResult{Status: "healthy"}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"healthy": healthy,
		"checks":  results,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if s.statsFunc == nil {
		http.Error(w, "stats not configured", http.StatusNotFound)
		return
	}

	stats, err := s.statsFunc(r.Context())
	if err != nil {
		serverLogger.Error(fmt.Sprintf("Failed to compute stats: %v", err))
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(stats)
}
