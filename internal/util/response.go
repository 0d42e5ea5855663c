package util

import (
	"errors"
	"net/http"

	"lingo_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// HandleError 按错误类别写入响应；内部错误只记录日志，不向调用方暴露细节
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch KindOf(err) {
	case KindValidation:
		BadRequest(c, message)
	case KindNotFound:
		NotFound(c, message)
	case KindUnauthorized:
		Error(c, http.StatusUnauthorized, message)
	case KindForbidden:
		Forbidden(c, message)
	case KindConflict:
		Error(c, http.StatusConflict, message)
	case KindUpstream:
		logger.Log.Warn("Upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusBadGateway, message)
	default:
		LogInternalError(c, err)
	}
}
