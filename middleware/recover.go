package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/helper"
	"github.com/haeksim/noonsongi/common/logger"
)

func PanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), fmt.Sprintf("panic detected: %v", err))
				logger.Error(c.Request.Context(), fmt.Sprintf("stacktrace from panic: %s", string(debug.Stack())))
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": helper.MessageWithRequestId(fmt.Sprintf("Panic detected, error: %v", err), c.GetString(logger.RequestIdKey)),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
