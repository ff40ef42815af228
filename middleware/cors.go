package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/config"
	cors "github.com/rs/cors/wrapper/gin"
)

// CORS lets a separately hosted page drive the session API with the session cookie.
func CORS() gin.HandlerFunc {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			if len(config.AllowedOrigins) == 0 {
				return true
			}
			for _, allowed := range config.AllowedOrigins {
				if allowed == origin {
					return true
				}
			}
			return false
		},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
	}
	return cors.New(options)
}
