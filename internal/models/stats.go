package models

type DashboardStats struct {
	ArticleCount   int64      `json:"articleCount"`
	UserCount      int64      `json:"userCount"`
	CommentCount   int64      `json:"commentCount"`
	TotalViews     int64      `json:"totalViews"`
	RecentArticles []*Article `json:"recentArticles"`
}
