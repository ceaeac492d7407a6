package models

import (
	"errors"
	"fmt"
)

// Коды ошибок приложения. Обработчики переводят их в HTTP-статусы.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError — ошибка с кодом и ключом локализованного сообщения (см. пакет i18n).
type AppError struct {
	Code string
	Key  string
	Args []any
	Err  error
}

func (e *AppError) Error() string {
	msg := e.Key
	if len(e.Args) > 0 {
		msg = fmt.Sprintf("%s %v", e.Key, e.Args)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(key string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Key: key, Args: args}
}

func NewNotFoundError(key string) *AppError {
	return &AppError{Code: CodeNotFound, Key: key}
}

func NewUnauthorizedError(key string) *AppError {
	return &AppError{Code: CodeUnauthorized, Key: key}
}

func NewForbiddenError(key string) *AppError {
	return &AppError{Code: CodeForbidden, Key: key}
}

func NewConflictError(key string) *AppError {
	return &AppError{Code: CodeConflict, Key: key}
}

func NewTooManyRequestsError(key string) *AppError {
	return &AppError{Code: CodeTooManyRequests, Key: key}
}

func NewInternalError(key string, err error) *AppError {
	return &AppError{Code: CodeInternal, Key: key, Err: err}
}

// HasCode сообщает, является ли err (или что-то в его цепочке) AppError с данным кодом.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
