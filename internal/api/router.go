package api

import (
	"net/http"
	"time"

	"KalshiOracle/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter 注册中间件与路由
func NewRouter(cfg *config.Config, handler *KalshiHandler, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger), cors.New(corsConfig(cfg.HTTP)))

	if cfg.Server.Pprof {
		// 注册ppof 方便调试和监测性能问题
		pprof.Register(r)
		logger.Info("已注册pprof路由")
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/kalshi", handler.GetSettled)
	r.GET("/api/kalshi-live", handler.GetLive)
	return r
}

func corsConfig(h config.HTTPConfig) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range h.AllowedOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(h.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = append([]string(nil), h.AllowedOrigins...)
	return cc
}
