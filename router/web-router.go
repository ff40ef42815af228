package router

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common"
	"github.com/haeksim/noonsongi/controller"
	"github.com/haeksim/noonsongi/middleware"
)

func SetWebRouter(router *gin.Engine, buildFS embed.FS) {
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(buildFS, "web/templates/*.html")))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(static.Serve("/", common.EmbedFolder(buildFS, "web/build")))

	webRouter := router.Group("/")
	webRouter.Use(middleware.SessionId())
	{
		webRouter.GET("/", controller.GetIndex)
		webRouter.POST("/submit", controller.Submit)
		webRouter.POST("/reset", controller.Reset)
	}
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.RequestURI, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})
}
