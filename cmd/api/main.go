package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ednc-edu/course-roster-api/api/swagger"
	"github.com/ednc-edu/course-roster-api/internal/handler"
	"github.com/ednc-edu/course-roster-api/internal/middleware"
	"github.com/ednc-edu/course-roster-api/internal/repository"
	"github.com/ednc-edu/course-roster-api/internal/service"
	"github.com/ednc-edu/course-roster-api/pkg/cache"
	"github.com/ednc-edu/course-roster-api/pkg/config"
	"github.com/ednc-edu/course-roster-api/pkg/database"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
	"github.com/ednc-edu/course-roster-api/pkg/export"
	"github.com/ednc-edu/course-roster-api/pkg/logger"
	corsmiddleware "github.com/ednc-edu/course-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ednc-edu/course-roster-api/pkg/middleware/requestid"
	"github.com/ednc-edu/course-roster-api/pkg/response"
)

// @title ED&C Course Registration API
// @version 1.0.0
// @description Course registration and roster management backend
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The rate limiter fails open without redis; the API stays up.
		logr.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	authSvc := service.NewAuthService(instructorRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	catalogSvc := service.NewCatalogService(courseRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, validate, logr)
	exportSvc := service.NewExportService(studentSvc, courseRepo, logr, export.NewCSVExporter(), export.NewPDFExporter())
	metricsSvc := service.NewMetricsService()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Courses: handler.NewCourseHandler(courseSvc),
		Catalog: handler.NewCatalogHandler(catalogSvc),
		Student: handler.NewStudentHandler(studentSvc, exportSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers,
		middleware.JWT(authSvc),
		middleware.RateLimit(redisClient, cfg.RateLimit, metricsSvc, logr),
	)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource not found"))
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
