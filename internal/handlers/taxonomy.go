package handlers

import (
	"net/http"

	"travelblog/internal/logger"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

// TaxonomyHandler — справочники для навигации: категории и города.
type TaxonomyHandler struct {
	articles services.ArticleService
}

func NewTaxonomyHandler(articles services.ArticleService) *TaxonomyHandler {
	return &TaxonomyHandler{articles: articles}
}

// Categories
// @Summary      Категории статей
// @Description  Закрытый список категорий с английскими названиями
// @Tags         taxonomy
// @Produce      json
// @Success      200 {object} helpers.Response{data=[]models.CategoryInfo}
// @Router       /api/categories [get]
func (h *TaxonomyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	list := h.articles.Categories()
	helpers.Collection(w, list, len(list))
}

// Cities
// @Summary      Города
// @Description  Уникальные города опубликованных статей
// @Tags         taxonomy
// @Produce      json
// @Success      200 {object} helpers.Response{data=[]string}
// @Failure      500 {object} helpers.Response
// @Router       /api/blogs/cities [get]
func (h *TaxonomyHandler) Cities(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	cities, err := h.articles.Cities(r.Context())
	if err != nil {
		log.Error("taxonomy: ошибка получения городов", zap.Error(err))
		writeError(w, r, err)
		return
	}
	log.Debug("taxonomy: города получены", zap.Int("count", len(cities)))
	helpers.Collection(w, cities, len(cities))
}
