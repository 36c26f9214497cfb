package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"KalshiOracle/internal/adapter/kalshi"
	"KalshiOracle/internal/api"
	"KalshiOracle/internal/config"
	"KalshiOracle/internal/logger"
	"KalshiOracle/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径，为空则只用默认值与环境变量")
	flag.Parse()

	// 1. 加载配置文件
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logrusLogger.Info("配置文件加载成功")

	// 3. 组装上游适配器与解析服务
	source := kalshi.NewKalshiAdapter(&cfg.Kalshi, logrusLogger)
	resolver := service.NewResolutionService(source, service.NewResolverConfig(cfg.Resolver), logrusLogger)

	// 4. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 5. 注册API路由
	handler := api.NewKalshiHandler(resolver, cfg.HTTP, cfg.Kalshi.MarketURL, logrusLogger)
	r := api.NewRouter(cfg, handler, logrusLogger)

	// 6. 启动服务（从配置读取端口）
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logrusLogger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrusLogger.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 7. 优雅退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logrusLogger.Info("收到退出信号，开始关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrusLogger.Errorf("关闭服务失败: %v", err)
		os.Exit(1)
	}
	logrusLogger.Info("服务已退出")
}
