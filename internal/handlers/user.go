package handlers

import (
	"context"
	"net/http"
	"net/url"

	"travelblog/internal/authz"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"
)

type userService interface {
	List(ctx context.Context, values url.Values) (query.Result, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	SetAvatar(ctx context.Context, id int64, up *services.FileUpload) (*models.User, error)
}

// UserHandler — администрирование пользователей, все маршруты только для admin.
type UserHandler struct {
	svc       userService
	maxUpload int64
}

func NewUserHandler(svc userService, maxUpload int64) *UserHandler {
	return &UserHandler{svc: svc, maxUpload: maxUpload}
}

// List godoc
// @Summary      Список пользователей
// @Tags         users
// @Produce      json
// @Param        role  query string false "Роль"
// @Param        sort  query string false "Сортировка"
// @Param        page  query int    false "Страница"
// @Param        limit query int    false "Размер страницы"
// @Success      200 {object} helpers.Response{data=[]models.User}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, res)
}

// Get godoc
// @Summary      Пользователь по id
// @Tags         users
// @Produce      json
// @Param        id path int true "ID пользователя"
// @Success      200 {object} helpers.Response{data=models.User}
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, u)
}

// Create godoc
// @Summary      Создать пользователя
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body models.CreateUserRequest true "Данные пользователя"
// @Success      201 {object} helpers.Response{data=models.User}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, u)
}

// Update godoc
// @Summary      Обновить пользователя
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id   path int                      true "ID пользователя"
// @Param        body body models.UpdateUserRequest true "Изменяемые поля"
// @Success      200 {object} helpers.Response{data=models.User}
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, u)
}

// Delete godoc
// @Summary      Удалить пользователя
// @Description  Удалить собственную учётную запись нельзя.
// @Tags         users
// @Produce      json
// @Param        id path int true "ID пользователя"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// UploadAvatar godoc
// @Summary      Загрузить аватар
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     int  true "ID пользователя"
// @Param        file formData file true "Изображение"
// @Success      200 {object} helpers.Response{data=models.User}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/users/{id}/avatar [put]
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
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
	u, err := h.svc.SetAvatar(r.Context(), id, up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, u)
}
