package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linkscribe/api-service/internal/adapter/http/handler"
	"github.com/linkscribe/api-service/internal/adapter/http/middleware"
	"github.com/linkscribe/api-service/internal/infrastructure/metrics"
	"github.com/linkscribe/api-service/internal/usecase"
)

// Deps holds everything the router wires into handlers
type Deps struct {
	LinkUsecase    usecase.LinkUsecase
	DB             *gorm.DB
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Setup creates and configures the Gin router
func Setup(deps Deps) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins...))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	linkHandler := handler.NewLinkHandler(deps.LinkUsecase)
	router.GET("/", linkHandler.Root)

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.DB, deps.LinkUsecase)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/model", linkHandler.Model)
		v1.POST("/predict", linkHandler.Predict)

		webInfo := v1.Group("/web-info")
		{
			webInfo.POST("/title", linkHandler.Title)
			webInfo.POST("/image", linkHandler.Image)
		}

		if deps.LinkUsecase.HistoryEnabled() {
			links := v1.Group("/links")
			{
				links.GET("", linkHandler.ListLinks)
				links.GET("/stats", linkHandler.LabelStats)
				links.GET("/:id", linkHandler.GetLink)
			}
		}
	}

	// Routes served by the first LinkScribe release
	legacyModel := router.Group("/LScribe-Model")
	{
		legacyModel.GET("/hi", linkHandler.LegacyHello)
		legacyModel.POST("/predict", linkHandler.LegacyPredict)
	}
	legacyWebInfo := router.Group("/webInfo")
	{
		legacyWebInfo.POST("/title", linkHandler.LegacyTitle)
		legacyWebInfo.POST("/image", linkHandler.Image)
	}

	return router
}
