package main

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"promptgate/config"
	"promptgate/internal/cron"
	"promptgate/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string        `json:"env"`
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	GoVersion string        `json:"go_version"`
	StartAt   time.Time     `json:"start_at"`
	Uptime    time.Duration `json:"uptime"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	Router        *gin.Engine
	httpSrv       *http.Server
	healthService *service.HealthService

	startAt time.Time   // 程式啟動時間（非環境變數）
	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	router *gin.Engine,
	httpSrv *http.Server,
	healthService *service.HealthService,
	cronSrv *cron.Cron,
) *App {
	startAt := time.Now()
	return &App{
		conf:          conf,
		logger:        logger,
		Router:        router,
		httpSrv:       httpSrv,
		healthService: healthService,
		cronSrv:       cronSrv,
		startAt:       startAt,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   startAt,
		},
	}
}

// Run 非阻塞；http server 結束時的錯誤會送進 serveErr
func (a *App) Run(serveErr chan<- error) error {
	// 1) 啟動時寫入版本/環境資訊
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	// 2) /version：回傳 JSON（含 uptime）
	a.Router.GET("/version", func(c *gin.Context) {
		resp := a.appInfo
		resp.Uptime = time.Since(a.startAt)
		c.JSON(http.StatusOK, resp)
	})

	// 3) 先 probe 一次儲存後端，成功才 ready
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := a.healthService.Probe(ctx); err != nil {
		a.logger.Warn("usage store not reachable at startup", zap.Error(err))
	}
	cancel()

	// 4) 啟動 cron
	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	// 5) 啟動 http server
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpSrv.Addr))
		serveErr <- a.httpSrv.ListenAndServe()
	}()
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.healthService != nil {
		a.healthService.SetReady(false)
	}
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown failed", zap.Error(err))
	}
	if a.cronSrv == nil {
		return nil
	}
	if err := a.cronSrv.Stop(ctx); err != nil {
		return err
	}
	a.logger.Info("cron server has been stop")
	return nil
}
