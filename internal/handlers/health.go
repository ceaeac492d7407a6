package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"travelblog/internal/logger"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Pinger — зависимость, доступность которой проверяет /ready (pgxpool, redis).
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200 {object} helpers.Response
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready godoc
// @Summary      Readiness: БД и redis
// @Tags         health
// @Produce      json
// @Success      200 {object} helpers.Response
// @Failure      503 {object} helpers.Response
// @Router       /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := map[string]string{}
	code := http.StatusOK
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			logger.WithCtx(ctx).Warn("Зависимость недоступна", zap.String("check", name), zap.Error(err))
			status[name] = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "up"
	}
	if code != http.StatusOK {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(helpers.Response{Success: false, Data: status})
		return
	}
	helpers.JSON(w, code, status)
}
