package repository

import (
	"context"

	"travelblog/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepo struct {
	db       *pgxpool.Pool
	articles ArticleRepo
}

func NewStatsRepo(db *pgxpool.Pool, articles ArticleRepo) *StatsRepo {
	return &StatsRepo{db: db, articles: articles}
}

// Dashboard собирает счётчики одним запросом и последние статьи вторым.
func (r *StatsRepo) Dashboard(ctx context.Context, recent int) (*models.DashboardStats, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM articles),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM comments),
			(SELECT COALESCE(SUM(view_count), 0)::bigint FROM articles)`
	var s models.DashboardStats
	if err := r.db.QueryRow(ctx, q).Scan(&s.ArticleCount, &s.UserCount, &s.CommentCount, &s.TotalViews); err != nil {
		return nil, err
	}

	list, err := r.articles.Recent(ctx, recent)
	if err != nil {
		return nil, err
	}
	s.RecentArticles = list
	return &s, nil
}
