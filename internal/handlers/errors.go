package handlers

import (
	"errors"
	"net/http"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/reqctx"
	"travelblog/internal/utils/helpers"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func statusFor(code string) int {
	switch code {
	case models.CodeValidation, models.CodeConflict:
		return http.StatusBadRequest
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// lang — язык ответа; RequestID кладёт его в контекст, в тестах без middleware берётся из запроса.
func lang(r *http.Request) string {
	if l := reqctx.GetLang(r.Context()); l != "" {
		return l
	}
	return i18n.FromRequest(r)
}

// writeError переводит ошибку сервиса в HTTP-ответ. Всё, что не AppError, — 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		report(r, err)
		helpers.Error(w, http.StatusInternalServerError, i18n.T(lang(r), i18n.MsgServerError))
		return
	}

	status := statusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		report(r, appErr)
	}
	helpers.Error(w, status, i18n.T(lang(r), appErr.Key, appErr.Args...))
}

func report(r *http.Request, err error) {
	logger.WithCtx(r.Context()).Error("Внутренняя ошибка",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))

	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
