package router

import (
	"embed"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common/logger"
)

func SetRouter(router *gin.Engine, buildFS embed.FS) {
	SetApiRouter(router)

	frontendBaseUrl := os.Getenv("FRONTEND_BASE_URL")
	if frontendBaseUrl == "" {
		SetWebRouter(router, buildFS)
		return
	}
	frontendBaseUrl = strings.TrimSuffix(frontendBaseUrl, "/")
	logger.SysLog(fmt.Sprintf("web pages are served by %s", frontendBaseUrl))
	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, fmt.Sprintf("%s%s", frontendBaseUrl, c.Request.RequestURI))
	})
}
