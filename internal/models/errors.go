package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки хранилища, общие для всех реализаций
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// ErrorCode - машиночитаемый код ошибки в конверте ответа
type ErrorCode string

// Коды ошибок API
const (
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingAuthHeader  ErrorCode = "MISSING_OR_MALFORMED_HEADER"
	ErrCodeInvalidSignature   ErrorCode = "INVALID_SIGNATURE"
	ErrCodeTokenExpired       ErrorCode = "EXPIRED"
	ErrCodeTokenMalformed     ErrorCode = "MALFORMED"
	ErrCodeUserNotExists      ErrorCode = "USER_NOT_EXISTS"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserExists         ErrorCode = "USER_EXISTS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountBlocked     ErrorCode = "ACCOUNT_BLOCKED"
	ErrCodeUserBlocked        ErrorCode = "USER_BLOCKED"
	ErrCodeUnauthorizedUser   ErrorCode = "UNAUTHORIZED_USER"
	ErrCodeUnauthorizedDelete ErrorCode = "UNAUTHORIZED_DELETE"
	ErrCodePostNotFound       ErrorCode = "POST_NOT_FOUND"
	ErrCodeCommentNotFound    ErrorCode = "COMMENT_NOT_FOUND"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeServer             ErrorCode = "SERVER_ERROR"
	ErrCodeAPINotFound        ErrorCode = "API_NOT_FOUND"
)

// ServerErrorMessage отдается клиенту при любой непредвиденной ошибке
const ServerErrorMessage = "Something went wrong, please try again later"

// AppError - ошибка, которая однозначно превращается в конверт ответа
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    any
	Cause      error
}

// Error возвращает строковое представление ошибки
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause сохраняет исходную ошибку для логов
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError создает ошибку с произвольным кодом
func NewAppError(status int, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// AsAppError достает AppError из цепочки ошибок
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ValidationFailed - запрос не прошел проверку правил маршрута
func ValidationFailed(details []FieldError) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    "validation failed",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

// MissingAuthHeader - нет заголовка Authorization или он без префикса Bearer
func MissingAuthHeader() *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeMissingAuthHeader, "Authorization header is missing or malformed")
}

// InvalidSignature - подпись токена не сошлась
func InvalidSignature() *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeInvalidSignature, "invalid token signature")
}

// TokenExpired - срок действия токена истек
func TokenExpired() *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeTokenExpired, "token has expired")
}

// TokenMalformed - токен не удалось разобрать
func TokenMalformed() *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeTokenMalformed, "token is malformed")
}

// UserNotExists - вход с неизвестным email
func UserNotExists() *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeUserNotExists, "user not exists")
}

// UserNotFound - пользователь, на которого ссылается запрос или токен, не найден
func UserNotFound() *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeUserNotFound, "User not found")
}

// UserExists - email уже зарегистрирован
func UserExists() *AppError {
	return NewAppError(http.StatusConflict, ErrCodeUserExists, "User already exists with mail id")
}

// InvalidCredentials - пароль не подошел
func InvalidCredentials() *AppError {
	return NewAppError(http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid Email/password")
}

// AccountBlocked - аккаунт вызывающего заблокирован администратором
func AccountBlocked() *AppError {
	return NewAppError(http.StatusForbidden, ErrCodeAccountBlocked, "Account blocked by admin")
}

// UserBlocked - запрошенный профиль заблокирован
func UserBlocked() *AppError {
	return NewAppError(http.StatusForbidden, ErrCodeUserBlocked, "This user account has been blocked")
}

// UnauthorizedUser - роль вызывающего не входит в список разрешенных
func UnauthorizedUser() *AppError {
	return NewAppError(http.StatusForbidden, ErrCodeUnauthorizedUser, "Unauthorized user")
}

// UnauthorizedDelete - удалять может только владелец или администратор
func UnauthorizedDelete(resource string) *AppError {
	return NewAppError(http.StatusForbidden, ErrCodeUnauthorizedDelete,
		fmt.Sprintf("You are not authorized to delete this %s", resource))
}

// PostNotFound - пост не найден
func PostNotFound() *AppError {
	return NewAppError(http.StatusNotFound, ErrCodePostNotFound, "Post not found")
}

// CommentNotFound - комментарий не найден
func CommentNotFound() *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeCommentNotFound, "Comment not found")
}

// RateLimited - слишком много запросов с одного адреса
func RateLimited() *AppError {
	return NewAppError(http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests, please try again later")
}

// ServerError - непредвиденная ошибка; причина уходит только в лог
func ServerError(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeServer,
		Message:    ServerErrorMessage,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// APINotFound - ни один маршрут не подошел
func APINotFound() *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeAPINotFound, "API not found")
}
