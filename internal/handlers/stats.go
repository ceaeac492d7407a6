package handlers

import (
	"context"
	"net/http"

	"travelblog/internal/models"
	"travelblog/internal/utils/helpers"
)

type statsService interface {
	Dashboard(ctx context.Context, lang string) (*models.DashboardStats, error)
}

type StatsHandler struct {
	svc statsService
}

func NewStatsHandler(svc statsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Статистика для панели управления
// @Tags         stats
// @Produce      json
// @Success      200 {object} helpers.Response{data=models.DashboardStats}
// @Security     ApiKeyAuth
// @Router       /api/stats/dashboard [get]
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context(), lang(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, stats)
}
