package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/i18n"
	"cms-redirect-go/response"
)

// GlobalErrorMiddleware 全局错误中间件
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果有错误发生
		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					// "error." 开头的消息是 i18n 键，按请求语言翻译
					if strings.HasPrefix(appErr.Message, "error.") {
						appErr = apperrors.WithCode(appErr.Code, i18n.Localize(c.Request.Context(), appErr.Message))
					}
					c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("系统内部错误"))
			return
		}
	}
}
