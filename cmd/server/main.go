package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/accident-risk-go/internal/api"
	"github.com/jengzang/accident-risk-go/internal/config"
	"github.com/jengzang/accident-risk-go/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 加载数据并构建索引
	riskService, err := service.NewRiskService(ctx, service.NewBuilder(cfg))
	if err != nil {
		log.Fatal("Failed to build risk engine:", err)
	}

	if cfg.Reload.Schedule != "" {
		reloader, err := service.StartReloader(ctx, riskService, cfg.Reload.Schedule)
		if err != nil {
			log.Fatal("Failed to schedule reload:", err)
		}
		defer reloader.Stop()
	}

	// 初始化路由
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           api.SetupRouter(cfg, riskService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
