package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accident-risk-go/internal/config"
	"github.com/jengzang/accident-risk-go/internal/handler"
	"github.com/jengzang/accident-risk-go/internal/metrics"
	"github.com/jengzang/accident-risk-go/internal/middleware"
	"github.com/jengzang/accident-risk-go/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, riskService *service.RiskService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if _, err := riskService.Engine(); err != nil {
			status, code = "loading", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"message": "Accident risk API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	riskHandler := handler.NewRiskHandler(riskService)

	api := r.Group("/api/v1")
	api.Use(
		middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)),
		middleware.JWTAuth(cfg.Auth.JWTSecret),
	)
	{
		api.GET("/risk", riskHandler.GetRisk)

		recs := api.Group("/records")
		{
			recs.GET("/summary", riskHandler.GetSummary)
			recs.GET("/nearby", riskHandler.GetNearby)
			recs.GET("/:id", riskHandler.GetRecordByID)
		}
	}

	return r
}
