package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler 存活探针
type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":       true,
		"service":  "adms-gateway",
		"uptime_s": int(time.Since(h.startedAt).Seconds()),
		"now":      time.Now().UTC().Format(time.RFC3339),
	})
}
