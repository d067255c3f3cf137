// Package api wires the HTTP surface of the reliability service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"der-reliability/internal/api/handlers"
	"der-reliability/internal/api/middleware"
	"der-reliability/internal/data"
	"der-reliability/internal/engine"
)

type Deps struct {
	Options    engine.Options
	Store      *data.ResultStore
	BatteryDir string
	Gatherer   prometheus.Gatherer // nil disables /metrics
	Origins    []string
	Log        zerolog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Logger wraps recovery so panicking requests are logged with their 500.
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(middleware.CORS(d.Origins...))

	if d.Options.Logger == nil {
		d.Options.Logger = &d.Log
	}
	batteryHandler := handlers.NewBatteryHandler(d.BatteryDir, d.Log)
	evaluationHandler := handlers.NewEvaluationHandler(d.Options, d.Store, batteryHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/configurations", handlers.ListConfigurations)
		v1.GET("/batteries", batteryHandler.ListBatteries)

		v1.POST("/evaluate", evaluationHandler.Evaluate)
		v1.POST("/evaluate/compare", evaluationHandler.Compare)
		v1.GET("/evaluations/:id", evaluationHandler.GetEvaluation)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})

	return router
}
