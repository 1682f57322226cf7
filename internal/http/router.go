package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dubplan/backend/internal/config"
	"github.com/dubplan/backend/internal/convert"
	"github.com/dubplan/backend/internal/db"
	"github.com/dubplan/backend/internal/http/handlers"
	"github.com/dubplan/backend/internal/http/middleware"
	"github.com/dubplan/backend/internal/service"

	_ "github.com/dubplan/backend/docs"
)

// Router wires the API. store may be nil for memory-only mode.
func Router(cfg config.Config, store *db.Store, svc *service.ProcessingService, converter convert.Converter, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Service:        svc,
		Converter:      converter,
		Validator:      validator.New(),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadSizeMB << 20,
	}
	if store != nil {
		h.Store = store
	}
	Routes(r, h)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Routes registers the API endpoints of h on r.
func Routes(r gin.IRouter, h *handlers.Handler) {
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/scripts", h.ParseScript)
		api.POST("/schedule", h.ScheduleSegments)
		api.POST("/calendar", h.Calendar)

		api.GET("/runs/latest", h.RunsLatest)
		api.GET("/runs/:id", h.RunDetails)
		api.GET("/runs/:id/lines", h.RunLines)
		api.GET("/runs/:id/segments", h.RunSegments)
		api.GET("/runs/:id/schedule", h.RunSchedule)
		api.POST("/runs/:id/schedule", h.ScheduleRun)
	}
}
