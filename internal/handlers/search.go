package handlers

import (
	"net/http"
	"time"

	"travelblog/internal/logger"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

type SearchHandler struct {
	articles services.ArticleService
}

func NewSearchHandler(articles services.ArticleService) *SearchHandler {
	return &SearchHandler{articles: articles}
}

// Search godoc
// @Summary Поиск по опубликованным статьям
// @Description Подстрока в заголовке, описании или тексте (включая английские версии), новые сверху.
// @Tags search
// @Produce json
// @Param q     query string true  "Поисковый запрос"
// @Param limit query int    false "Лимит (по умолчанию 20)"
// @Param lang  query string false "zh | en"
// @Success 200 {object} helpers.Response{data=[]models.Article}
// @Failure 400 {object} helpers.Response "Пустой запрос"
// @Router /api/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	q := r.URL.Query().Get("q")

	start := time.Now()
	results, err := h.articles.Search(r.Context(), q, queryInt(r, "limit"), lang(r))
	if err != nil {
		log.Warn("search: ошибка", zap.String("q", q), zap.Error(err))
		writeError(w, r, err)
		return
	}

	log.Info("search: готово",
		zap.String("q", q),
		zap.Int("count", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	helpers.Collection(w, results, len(results))
}
