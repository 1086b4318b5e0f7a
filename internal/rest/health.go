package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthResponse defines the response returned back by the health check.
type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterHealth adds the health check, it does not require authentication.
func RegisterHealth(r chi.Router) {
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		renderResponse(w, &HealthResponse{
			Success:   true,
			Message:   "Server is running",
			Timestamp: time.Now().UTC(),
		}, http.StatusOK)
	})
}
