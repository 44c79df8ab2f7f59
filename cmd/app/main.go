package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cms-redirect-go/internal/handler"
	"cms-redirect-go/internal/i18n"
	"cms-redirect-go/internal/middleware"
	"cms-redirect-go/internal/repository"
	"cms-redirect-go/internal/service"
	"cms-redirect-go/pkg/logging"
)

func initConfig() {
	wd, _ := os.Getwd()
	log.Printf("Loading config from: %s/config.yaml", wd)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	conn := repository.RedisPool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Warn("Redis connection close failed", zap.Error(err))
		}
	}()

	logging.Logger.Info("Server exiting")
}

func main() {

	initConfig()
	// 初始化日志系统
	logging.InitLoggerFromConfig()

	logging.Logger.Info("Application started")

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()

	// 组装重定向子系统
	service.Init(repository.NewGormRedirectStore(repository.DB), repository.RedisPool)

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery()) // 显式添加 Recovery 中间件

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	// 使用 i18n 中间件
	r.Use(middleware.I18nMiddleware(bundle))

	api := r.Group("/api")
	{
		api.POST("/redirects", handler.CreateRedirectHandler)
		api.GET("/redirects", handler.ListRedirectsHandler)
		api.GET("/redirects/:id", handler.GetRedirectHandler)
		api.PUT("/redirects/:id", handler.UpdateRedirectHandler)
		api.DELETE("/redirects/:id", handler.DeleteRedirectHandler)
		api.POST("/redirect-validation", handler.ValidateRedirectHandler)
		api.GET("/redirect-stats/:sourcePostId", handler.GetRedirectStatsHandler)

		api.GET("/posts/:id", handler.GetPostHandler)
		api.DELETE("/posts/:id", handler.DeletePostHandler)
	}

	// 公开读路径：id 或 slug，命中重定向就跳转
	r.GET("/p/:idOrSlug", handler.ResolvePostHandler)

	c := cron.New()

	// 定时任务：统计落库
	statsCron := viper.GetString("cron.stats")
	if statsCron == "" {
		statsCron = "*/10 * * * *"
	}
	if _, addErr := c.AddFunc(statsCron, func() {
		if err := service.StatisticalData(); err != nil {
			logging.Logger.Error("Failed to flush redirect stats via cron job", zap.Error(err))
		}
	}); addErr != nil {
		logging.Logger.Fatal("Failed to schedule stats cron job", zap.Error(addErr))
	}

	// 定时任务：broken redirect 巡检
	scanCron := viper.GetString("cron.scan")
	if scanCron == "" {
		scanCron = "0 * * * *"
	}
	if _, addErr := c.AddFunc(scanCron, func() {
		if err := service.ScanBrokenRedirects(); err != nil {
			logging.Logger.Error("Failed to scan broken redirects via cron job", zap.Error(err))
		}
	}); addErr != nil {
		logging.Logger.Fatal("Failed to schedule scan cron job", zap.Error(addErr))
	}

	c.Start()

	startServer(r)
}
