package services

import (
	"context"

	"travelblog/internal/logger"
	"travelblog/internal/models"

	"go.uber.org/zap"
)

const recentArticles = 5

type StatsRepo interface {
	Dashboard(ctx context.Context, recent int) (*models.DashboardStats, error)
}

type StatsService struct {
	repo StatsRepo
}

func NewStatsService(repo StatsRepo) *StatsService {
	return &StatsService{repo: repo}
}

func (s *StatsService) Dashboard(ctx context.Context, lang string) (*models.DashboardStats, error) {
	stats, err := s.repo.Dashboard(ctx, recentArticles)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения статистики (repo)", zap.Error(err))
		return nil, err
	}
	for _, a := range stats.RecentArticles {
		a.Localize(lang)
	}
	return stats, nil
}
