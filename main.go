package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haeksim/noonsongi/common"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/helper"
	"github.com/haeksim/noonsongi/common/logger"
	"github.com/haeksim/noonsongi/controller"
	"github.com/haeksim/noonsongi/middleware"
	"github.com/haeksim/noonsongi/model"
	"github.com/haeksim/noonsongi/monitor"
	"github.com/haeksim/noonsongi/router"
	"github.com/haeksim/noonsongi/service"
	"github.com/haeksim/noonsongi/tui"
)

//go:embed web/build/* web/templates/*
var buildFS embed.FS

func main() {
	common.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *common.TUI {
		logger.Quiet()
	}
	logger.SetupLogger()
	logger.SysLog(fmt.Sprintf("Noonsongi %s started, generation service at %s", common.Version, config.BaseURL))
	if config.DebugEnabled {
		logger.SysLog("running in debug mode")
	}

	generator, err := service.NewDefaultGenerator()
	if err != nil {
		logger.FatalLog("failed to create relay http client: " + err.Error())
	}

	if *common.TUI {
		sess := model.NewSession(helper.GenSessionID())
		if err := tui.Run(ctx, sess, generator); err != nil && !errors.Is(err, context.Canceled) {
			logger.FatalLog("terminal chat failed: " + err.Error())
		}
		return
	}

	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	store := model.NewSessionStore(config.MaxSessions, config.SessionTTL)
	defer store.Close()
	controller.SetupSessions(store, generator)
	go monitor.MonitorGoroutines(ctx, 30*time.Second, store.Len)

	// Initialize HTTP server
	server := gin.New()
	server.Use(middleware.RequestId())
	server.Use(middleware.PanicRecover())
	middleware.SetUpLogger(server)
	server.Use(middleware.Sessions())

	router.SetRouter(server, buildFS)
	logger.SysLog("monitoring endpoints enabled at /api/monitor/health")

	var port = os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	srv := &http.Server{Addr: ":" + port, Handler: server}
	go func() {
		<-ctx.Done()
		logger.SysLog("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.SysLog("server listening on :" + port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.FatalLog("failed to start HTTP server: " + err.Error())
	}
}
