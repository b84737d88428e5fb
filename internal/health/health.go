// Package health provides liveness and readiness endpoints for the dispatch
// service. Readiness depends on the primary provider's credentials being
// present in the environment.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

// Provider states reported by the readiness endpoint.
const (
	StateConfigured         = "configured"
	StateMissingCredentials = "missing_credentials"
	StateUnknown            = "unknown"
)

// ProviderStatus is the reported state of one provider in the chain.
type ProviderStatus struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness probe response
type ReadinessResponse struct {
	Ready     bool             `json:"ready"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Providers []ProviderStatus `json:"providers"`
}

// LivenessResponse represents the liveness probe response
type LivenessResponse struct {
	Alive     bool   `json:"alive"`
	Timestamp string `json:"timestamp"`
}

// Handler handles health check requests
type Handler struct {
	providers []provider.Provider
	version   string
	ready     bool
	mu        sync.RWMutex
}

// Config holds health handler configuration
type Config struct {
	// Providers is the delivery chain in order; the first entry is the primary.
	Providers []provider.Provider
	Version   string
}

// NewHandler creates a new health check handler
func NewHandler(cfg Config) *Handler {
	return &Handler{
		providers: cfg.Providers,
		version:   cfg.Version,
		ready:     true,
	}
}

// SetReady sets the readiness state of the service. It is cleared during
// graceful shutdown.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns the current readiness state
func (h *Handler) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Readiness reports 200 when the service accepts traffic and the primary
// provider has credentials, 503 otherwise.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	statuses := h.providerStatuses()

	ready := h.IsReady() && len(statuses) > 0 && statuses[0].Status != StateMissingCredentials

	response := ReadinessResponse{
		Ready:     ready,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Providers: statuses,
	}

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

// Liveness handles the liveness probe endpoint
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	response := LivenessResponse{
		Alive:     true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) providerStatuses() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(h.providers))
	for i, p := range h.providers {
		role := "fallback"
		if i == 0 {
			role = "primary"
		}

		state := StateUnknown
		if checker, ok := p.(provider.CredentialChecker); ok {
			state = StateMissingCredentials
			if checker.Configured() {
				state = StateConfigured
			}
		}

		statuses = append(statuses, ProviderStatus{Name: p.Name(), Role: role, Status: state})
	}
	return statuses
}
