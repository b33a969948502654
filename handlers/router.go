package handlers

import (
	"time"

	"factcheck/config"
	"factcheck/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the API.
func NewRouter(cfg *config.Config, analyzer *AnalyzerHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", analyzer.Health)

	// the stream checks the limiter per submission instead of per upgrade
	api.GET("/analyze/ws", analyzer.Stream)

	analyze := api.Group("/analyze")
	if analyzer.limiter != nil {
		analyze.Use(middleware.RateLimit(analyzer.limiter, cfg.RateWindow))
	}
	analyze.POST("", analyzer.Analyze)
	analyze.POST("/upload", analyzer.Upload)

	if cfg.LogStreamEnabled {
		api.GET("/logs/ws", StreamLogs)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
