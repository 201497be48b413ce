package middleware

import (
	"errors"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "budgetplanner/internal/errors"
	"budgetplanner/internal/logger"
)

// ErrorDetailsKey is the context key under which a handler may leave a gin.H
// of extra top-level fields for the error body, such as a partial import
// result.
const ErrorDetailsKey = "errorDetails"

// ErrorHandler renders the last error a handler recorded with c.Error as
// {"error": {"code", "message"}} plus any ErrorDetailsKey fields. Errors that
// are not AppErrors become INTERNAL_ERROR; their detail only reaches the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := resolve(c, c.Errors.Last().Err)
		body := gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		}
		if v, ok := c.Get(ErrorDetailsKey); ok {
			if details, ok := v.(gin.H); ok {
				for k, field := range details {
					if k != "error" {
						body[k] = field
					}
				}
			}
		}
		c.JSON(appErr.StatusCode, body)
	}
}

func resolve(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"request_id", requestid.Get(c),
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr
	}

	logger.Get().Errorw("unexpected error",
		"request_id", requestid.Get(c),
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer
}
