package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Probe checks one dependency
type Probe func(ctx context.Context) error

// HealthChecker aggregates named dependency probes
type HealthChecker struct {
	probes map[string]Probe
}

// NewHealthChecker creates a health checker with the given probes
func NewHealthChecker(probes map[string]Probe) *HealthChecker {
	return &HealthChecker{probes: probes}
}

// DependencyStatus is the result of one probe
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthStatus is the aggregate health report
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// Check runs all probes
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]DependencyStatus, len(h.probes)),
	}

	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Dependencies[name] = DependencyStatus{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		status.Dependencies[name] = DependencyStatus{Status: StatusHealthy}
	}
	return status
}

// Liveness always reports healthy while the process is serving
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness runs the dependency probes and reports 503 when any fails
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(status)
}
