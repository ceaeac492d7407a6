package handlers

import (
	"context"
	"net/http"

	"travelblog/internal/authz"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type mediaService interface {
	List(ctx context.Context, typePrefix string) ([]*models.Media, error)
	Get(ctx context.Context, id string) (*models.Media, error)
	Upload(ctx context.Context, actor authz.Actor, up *services.FileUpload, alt, title string) (*models.Media, error)
	Update(ctx context.Context, actor authz.Actor, id string, req models.UpdateMediaRequest) (*models.Media, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

// MediaHandler — медиатека для editor/admin.
type MediaHandler struct {
	svc       mediaService
	maxUpload int64
}

func NewMediaHandler(svc mediaService, maxUpload int64) *MediaHandler {
	return &MediaHandler{svc: svc, maxUpload: maxUpload}
}

// List godoc
// @Summary      Файлы медиатеки
// @Tags         media
// @Produce      json
// @Param        type query string false "Префикс MIME-типа, например image"
// @Success      200 {object} helpers.Response{data=[]models.Media}
// @Security     ApiKeyAuth
// @Router       /api/media [get]
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Collection(w, list, len(list))
}

// Get godoc
// @Summary      Файл медиатеки
// @Tags         media
// @Produce      json
// @Param        id path string true "ID файла"
// @Success      200 {object} helpers.Response{data=models.Media}
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/media/{id} [get]
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, m)
}

// Upload godoc
// @Summary      Загрузить файл
// @Description  Изображения и PDF; для изображений создаётся превью.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file   true  "Файл"
// @Param        alt   formData string false "Альтернативный текст"
// @Param        title formData string false "Заголовок"
// @Success      201 {object} helpers.Response{data=models.Media}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/media [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	up, closeFile, err := formFile(w, r, mediaFieldName, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFile()

	m, err := h.svc.Upload(r.Context(), middleware.Actor(r.Context()), up,
		r.FormValue("alt"), r.FormValue("title"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, m)
}

// Update godoc
// @Summary      Изменить описание файла
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        id   path string                    true "ID файла"
// @Param        body body models.UpdateMediaRequest true "alt и title"
// @Success      200 {object} helpers.Response{data=models.Media}
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/media/{id} [put]
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Update(r.Context(), middleware.Actor(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, m)
}

// Delete godoc
// @Summary      Удалить файл
// @Tags         media
// @Produce      json
// @Param        id path string true "ID файла"
// @Success      200 {object} helpers.Response
// @Failure      403 {object} helpers.Response
// @Failure      404 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/media/{id} [delete]
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.Actor(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	deleted(w, r)
}
