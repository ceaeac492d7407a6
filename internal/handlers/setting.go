package handlers

import (
	"context"
	"net/http"

	"travelblog/internal/models"
	"travelblog/internal/services"
	"travelblog/internal/utils/helpers"
)

type settingsService interface {
	Current() models.Setting
	Public() models.PublicSetting
	Update(ctx context.Context, req models.UpdateSettingRequest) (*models.Setting, error)
	SetLogo(ctx context.Context, up *services.FileUpload) (*models.Setting, error)
	SetFavicon(ctx context.Context, up *services.FileUpload) (*models.Setting, error)
}

type SettingHandler struct {
	svc       settingsService
	maxUpload int64
}

func NewSettingHandler(svc settingsService, maxUpload int64) *SettingHandler {
	return &SettingHandler{svc: svc, maxUpload: maxUpload}
}

// Get godoc
// @Summary      Настройки сайта
// @Tags         settings
// @Produce      json
// @Success      200 {object} helpers.Response{data=models.Setting}
// @Security     ApiKeyAuth
// @Router       /api/settings [get]
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, h.svc.Current())
}

// Public godoc
// @Summary      Публичные настройки
// @Description  Без контактного email.
// @Tags         settings
// @Produce      json
// @Success      200 {object} helpers.Response{data=models.PublicSetting}
// @Router       /api/settings/public [get]
func (h *SettingHandler) Public(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, h.svc.Public())
}

// Update godoc
// @Summary      Обновить настройки
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body body models.UpdateSettingRequest true "Изменяемые поля"
// @Success      200 {object} helpers.Response{data=models.Setting}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/settings [put]
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.svc.Update(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, s)
}

// UploadLogo godoc
// @Summary      Загрузить логотип
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Изображение"
// @Success      200 {object} helpers.Response{data=models.Setting}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/settings/logo [put]
func (h *SettingHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.svc.SetLogo)
}

// UploadFavicon godoc
// @Summary      Загрузить favicon
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Изображение"
// @Success      200 {object} helpers.Response{data=models.Setting}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/settings/favicon [put]
func (h *SettingHandler) UploadFavicon(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.svc.SetFavicon)
}

func (h *SettingHandler) upload(w http.ResponseWriter, r *http.Request,
	set func(context.Context, *services.FileUpload) (*models.Setting, error)) {
	up, err := streamFile(w, r, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := set(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, s)
}
