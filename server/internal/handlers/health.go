package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"
)

// HealthCheck проверяет одну зависимость сервера.
type HealthCheck func(ctx context.Context) error

// HealthHandler сообщает о состоянии БД, Redis и хранилища.
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// HealthResponse - тело ответа /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// NewHealthHandler создает обработчик с набором именованных проверок.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Ping отвечает "pong".
func Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// Health выполняет все проверки. При отказе любой из них отвечает 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ok", Components: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Printf("[HealthHandler] Компонент %s недоступен: %v", name, err)
			resp.Components[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
