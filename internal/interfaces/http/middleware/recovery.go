package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// Recovery turns a handler panic into a 500 response and an error log.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					logging.Any("panic", rec),
					logging.String("path", c.Request.URL.Path),
					logging.RequestID(GetRequestID(c)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    errors.ErrCodeInternal,
					"message": errors.DefaultMessage(errors.ErrCodeInternal),
				})
			}
		}()
		c.Next()
	}
}
