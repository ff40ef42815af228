package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/helper"
	"github.com/haeksim/noonsongi/common/logger"
)

func RequestId() func(c *gin.Context) {
	return func(c *gin.Context) {
		// a caller supplied X-Request-Id wins over a generated one
		id := c.GetHeader(logger.RequestIdKey)
		if id == "" {
			id = helper.GenRequestID()
		}
		c.Set(logger.RequestIdKey, id)
		c.Request = c.Request.WithContext(logger.WithRequestId(c.Request.Context(), id))
		c.Request.Header.Set(logger.RequestIdKey, id)
		c.Header(logger.RequestIdKey, id)
		c.Next()
	}
}
