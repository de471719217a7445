package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/assessor/pkg/metrics"
)

// Component and overall health states.
const (
	statusHealthy     = "healthy"
	statusDegraded    = "degraded"
	statusUnhealthy   = "unhealthy"
	stateOperational  = "operational"
	stateUnavailable  = "unavailable"
	stateDisabled     = "disabled"
	stateErrored      = "error"
	serviceName       = "assessor"
	serviceDescriptor = "Candidate assessment and code pattern scoring API"
)

type healthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components"`
}

type rootResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	Status      string            `json:"status"`
	Endpoints   map[string]string `json:"endpoints"`
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind("api.health", ErrMethodNotAllow))
		return
	}
	components := s.components()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     overallStatus(components),
		Version:    s.engine.Version(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Components: components,
	})
}

func (s *Server) components() map[string]string {
	components := map[string]string{
		"api":        stateOperational,
		"heuristics": stateOperational,
	}
	if s.engine.PatternChecksEnabled() {
		components["pattern_checks"] = stateOperational
	} else {
		components["pattern_checks"] = stateDisabled
	}
	if s.engine.CouncilAvailable() {
		components["council"] = stateOperational
	} else {
		components["council"] = stateUnavailable
	}
	return components
}

// overallStatus is degraded when any component is unavailable or failing and
// unhealthy when none is operational.
func overallStatus(components map[string]string) string {
	degraded, operational := false, 0
	for _, state := range components {
		switch state {
		case stateUnavailable, stateErrored, statusDegraded:
			degraded = true
		case stateOperational:
			operational++
		}
	}
	switch {
	case operational == 0:
		return statusUnhealthy
	case degraded:
		return statusDegraded
	default:
		return statusHealthy
	}
}

// handleMetrics serves the custom Prometheus registry.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// handleRoot handles GET / requests.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind("api.root", ErrMethodNotAllow))
		return
	}
	writeJSON(w, http.StatusOK, rootResponse{
		Name:        serviceName,
		Description: serviceDescriptor,
		Version:     s.engine.Version(),
		Status:      stateOperational,
		Endpoints: map[string]string{
			"assess":   "/assess",
			"detect":   "/patterns/detect",
			"patterns": "/patterns",
			"health":   "/health",
			"metrics":  "/metrics",
			"docs":     "/api-docs",
			"openapi":  "/openapi.yaml",
		},
	})
}
