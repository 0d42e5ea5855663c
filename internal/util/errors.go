package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrLevelTooLow      = errors.New("exercise requires a higher overall level")
	ErrWriteConflict    = errors.New("concurrent update, please retry")
)

// ErrorKind 错误类别，决定返回给调用方的 HTTP 状态码
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindUpstream     ErrorKind = "upstream"
	KindInternal     ErrorKind = "internal"
)

// AppError 携带类别的业务错误
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: err.Error(), Err: err}
}

func ForbiddenError(err error) *AppError {
	return &AppError{Kind: KindForbidden, Message: err.Error(), Err: err}
}

func ConflictError(err error) *AppError {
	return &AppError{Kind: KindConflict, Message: err.Error(), Err: err}
}

func UpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

func InternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf 返回错误类别，未分类的错误视为内部错误
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrExerciseNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidLogin):
		return KindUnauthorized
	case errors.Is(err, ErrWriteConflict), errors.Is(err, ErrEmailRegistered):
		return KindConflict
	case errors.Is(err, ErrLevelTooLow):
		return KindForbidden
	}
	return KindInternal
}
