package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"visa-onboarding.backend/internal/interfaces/http/middleware"
	"visa-onboarding.backend/internal/metrics"
)

const (
	serviceName    = "visa-onboarding-backend"
	serviceVersion = "0.1.0"
)

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(middleware.CORSMiddleware(allowedOrigins))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
