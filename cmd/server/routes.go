package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"toll-chain.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	tollHandler     *handlers.TollHandler
	hardwareHandler *handlers.HardwareHandler
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		toll := v1.Group("/toll")
		{
			toll.POST("/validate", d.tollHandler.ValidateToll)
			toll.POST("/process", d.tollHandler.ProcessToll)
			toll.GET("/rate/:vehicleType", d.tollHandler.GetTollRate)
			toll.GET("/balance/:address", d.tollHandler.GetBalance)
			toll.GET("/transactions", d.tollHandler.ListTransactions)
			toll.POST("/qr", d.tollHandler.IssueQR)
		}

		hardware := v1.Group("/hardware")
		{
			hardware.POST("/scan", d.hardwareHandler.Scan)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
