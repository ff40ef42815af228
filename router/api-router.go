package router

import (
	"github.com/haeksim/noonsongi/controller"
	"github.com/haeksim/noonsongi/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.CORS())
	{
		apiRouter.GET("/test", controller.GetTest)
		apiRouter.GET("/status", gzip.Gzip(gzip.DefaultCompression), controller.GetStatus)
		apiRouter.GET("/monitor/health", controller.GetHealth)

		sessionRoute := apiRouter.Group("/session")
		sessionRoute.Use(middleware.SessionId())
		{
			// the websocket must stay outside gzip, it hijacks the connection
			sessionRoute.GET("/ws", controller.SessionWS)

			compressed := sessionRoute.Group("")
			compressed.Use(gzip.Gzip(gzip.DefaultCompression))
			compressed.GET("", controller.GetSession)
			compressed.PUT("/prompt", controller.UpdatePrompt)
			compressed.POST("/submit", controller.ApiSubmit)
			compressed.POST("/reset", controller.ApiReset)
			compressed.DELETE("/alert", controller.DismissAlert)
		}
	}
}
