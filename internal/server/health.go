package server

import (
	"encoding/json"
	"net/http"
	"os/exec"
	"time"
)

// HealthResponse is the JSON body for the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// livenessHandler reports that the process is up. Always 200.
func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "convertd",
	})
}

// readinessHandler reports whether the service can actually convert:
// the scratch root must exist and the converter binary must resolve.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if s.workspaces.IsAccessible() {
		checks["scratch"] = "accessible"
	} else {
		checks["scratch"] = "inaccessible"
		healthy = false
	}

	if _, err := exec.LookPath(s.config.SofficePath); err == nil {
		checks["soffice"] = "found"
	} else {
		checks["soffice"] = "not found"
		healthy = false
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "convertd",
		Checks:    checks,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
		s.logger.ErrorContext(r.Context(), "readiness check failed", "checks", checks)
	}
	writeHealth(w, status, resp)
}

func writeHealth(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
