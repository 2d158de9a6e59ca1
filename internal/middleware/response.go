package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/logger"
)

// retryAfterSeconds 可重试错误建议的重试间隔
const retryAfterSeconds = "1"

// AbortWithError 输出统一错误响应并中止
// 非 AppError 一律视为内部错误
func AbortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	if apperrors.IsCritical(appErr) {
		logger.WithModule("http").Error("严重错误",
			zap.Int("code", int(appErr.Code)),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
			zap.String("stack", appErr.GetStack()),
			zap.Error(appErr),
		)
	}
	if apperrors.IsRetryable(appErr) {
		c.Header("Retry-After", retryAfterSeconds)
	}

	// 调用栈只写日志，不返回给客户端
	public := *appErr
	public.Stack = nil
	c.AbortWithStatusJSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(&public, GetRequestID(c)))
}
