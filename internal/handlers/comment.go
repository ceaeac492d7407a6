package handlers

import (
	"context"
	"net/http"
	"net/url"

	"travelblog/internal/authz"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/utils/helpers"
)

type commentService interface {
	Thread(ctx context.Context, articleID int64) ([]*models.Comment, error)
	Create(ctx context.Context, actor authz.Actor, articleID int64, req models.CreateCommentRequest) (*models.Comment, error)
	List(ctx context.Context, values url.Values) (query.Result, error)
	SetStatus(ctx context.Context, id int64, status models.CommentStatus) (*models.Comment, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
}

type CommentHandler struct {
	svc commentService
}

func NewCommentHandler(svc commentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Thread godoc
// @Summary      Комментарии статьи
// @Description  Только одобренные, ответы вложены в replies.
// @Tags         comments
// @Produce      json
// @Param        id path int true "ID статьи"
// @Success      200 {object} helpers.Response{data=[]models.Comment}
// @Failure      404 {object} helpers.Response
// @Router       /api/blogs/{id}/comments [get]
func (h *CommentHandler) Thread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.Thread(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Collection(w, list, len(list))
}

// Create godoc
// @Summary      Оставить комментарий
// @Description  Комментарий обычного пользователя уходит на модерацию.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id   path int                         true "ID статьи"
// @Param        body body models.CreateCommentRequest true "Текст и родитель"
// @Success      201 {object} helpers.Response{data=models.Comment}
// @Failure      400 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/blogs/{id}/comments [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Create(r.Context(), middleware.Actor(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, c)
}

// List godoc
// @Summary      Комментарии для модерации
// @Tags         comments
// @Produce      json
// @Param        status query string false "approved, pending, spam"
// @Param        page   query int    false "Страница"
// @Param        limit  query int    false "Размер страницы"
// @Success      200 {object} helpers.Response{data=[]models.Comment}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/comments [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, res)
}

// SetStatus godoc
// @Summary      Изменить статус комментария
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id   path int                               true "ID комментария"
// @Param        body body models.UpdateCommentStatusRequest true "Новый статус"
// @Success      200 {object} helpers.Response{data=models.Comment}
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/comments/{id}/status [put]
func (h *CommentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.UpdateCommentStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// Delete godoc
// @Summary      Удалить комментарий
// @Description  Автор комментария или администратор; ответы удаляются вместе с ним.
// @Tags         comments
// @Produce      json
// @Param        id path int true "ID комментария"
// @Success      200 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
