package handlers

import (
	"net/http"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc       services.ArticleService
	maxUpload int64
}

func NewArticleHandler(svc services.ArticleService, maxUpload int64) *ArticleHandler {
	return &ArticleHandler{svc: svc, maxUpload: maxUpload}
}

// List godoc
// @Summary      Список статей
// @Description  Фильтры: поле=значение или поле[op]=значение (op: eq, ne, gt, gte, lt, lte, in).
// @Description  Служебные параметры: select, sort, page, limit, lang. Черновики видят только editor/admin.
// @Tags         blogs
// @Produce      json
// @Param        category query string false "Категория"
// @Param        sort     query string false "Сортировка, например -createdAt"
// @Param        select   query string false "Поля через запятую"
// @Param        page     query int    false "Страница"
// @Param        limit    query int    false "Размер страницы"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Router       /api/blogs [get]
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), middleware.Actor(r.Context()), r.URL.Query(), lang(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, res)
}

// Get godoc
// @Summary      Статья по id
// @Description  Каждый запрос увеличивает viewCount на 1.
// @Tags         blogs
// @Produce      json
// @Param        id path int true "ID статьи"
// @Success      200 {object} helpers.Response{data=models.Article}
// @Failure      404 {object} helpers.Response
// @Router       /api/blogs/{id} [get]
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.Get(r.Context(), middleware.Actor(r.Context()), id, lang(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// GetBySlug godoc
// @Summary      Статья по slug
// @Tags         blogs
// @Produce      json
// @Param        slug path string true "Slug"
// @Success      200 {object} helpers.Response{data=models.Article}
// @Failure      404 {object} helpers.Response
// @Router       /api/blogs/slug/{slug} [get]
func (h *ArticleHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetBySlug(r.Context(), middleware.Actor(r.Context()), mux.Vars(r)["slug"], lang(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Popular godoc
// @Summary      Популярные статьи
// @Tags         blogs
// @Produce      json
// @Param        limit query int false "Количество (по умолчанию 6)"
// @Success      200 {object} helpers.Response{data=[]models.Article}
// @Router       /api/blogs/popular [get]
func (h *ArticleHandler) Popular(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Popular(r.Context(), queryInt(r, "limit"), lang(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Collection(w, list, len(list))
}

// Create godoc
// @Summary      Создать статью
// @Tags         blogs
// @Accept       json
// @Produce      json
// @Param        body body models.CreateArticleRequest true "Данные статьи"
// @Success      201 {object} helpers.Response{data=models.Article}
// @Failure      400 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/blogs [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON при создании статьи", zap.Error(err))
		writeError(w, r, err)
		return
	}
	a, err := h.svc.Create(r.Context(), middleware.Actor(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, a)
}

// Update godoc
// @Summary      Обновить статью
// @Description  Частичное обновление. Доступно автору статьи и администратору.
// @Tags         blogs
// @Accept       json
// @Produce      json
// @Param        id   path int                         true "ID статьи"
// @Param        body body models.UpdateArticleRequest true "Изменяемые поля"
// @Success      200 {object} helpers.Response{data=models.Article}
// @Failure      400 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/blogs/{id} [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.UpdateArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.Update(r.Context(), middleware.Actor(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Delete godoc
// @Summary      Удалить статью
// @Tags         blogs
// @Produce      json
// @Param        id path int true "ID статьи"
// @Success      200 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/blogs/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), middleware.Actor(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	deleted(w, r)
}

// UploadCover godoc
// @Summary      Загрузить обложку статьи
// @Tags         blogs
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     int  true "ID статьи"
// @Param        file formData file true "Изображение"
// @Success      200 {object} helpers.Response{data=models.Article}
// @Failure      400 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/blogs/{id}/cover [put]
func (h *ArticleHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	up, err := streamFile(w, r, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.SetCover(r.Context(), middleware.Actor(r.Context()), id, up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// deleted — общий ответ на успешное удаление.
func deleted(w http.ResponseWriter, r *http.Request) {
	helpers.Message(w, http.StatusOK, i18n.T(lang(r), i18n.MsgDeleted))
}
