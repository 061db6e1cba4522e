package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/errycx/pokedex-api/config"
)

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

type HealthController struct{}

func NewHealthController() *HealthController { return &HealthController{} }

// Check handles GET /health.
func (hc *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthStatus{ //nolint:errcheck
		Message:     "Pokedex API is running!",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: config.AppEnv(),
	})
}
