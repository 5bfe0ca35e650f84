package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth    *AuthHandler
	Courses *CourseHandler
	Catalog *CatalogHandler
	Student *StudentHandler
	Metrics *MetricsHandler
}

// RegisterRoutes mounts the API routes under the given prefix. The auth
// middleware guards instructor routes only; catalog and student
// registration paths stay anonymous.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authRequired gin.HandlerFunc, extra ...gin.HandlerFunc) {
	api := r.Group(prefix)
	for _, m := range extra {
		api.Use(m)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authRequired, h.Auth.Me)
	}

	courses := api.Group("/courses")
	{
		courses.GET("/public", h.Catalog.List)
		courses.GET("/public/count", h.Catalog.Count)

		courses.GET("", authRequired, h.Courses.List)
		courses.POST("", authRequired, h.Courses.Create)
		courses.PUT("/:id", authRequired, h.Courses.Update)
		courses.DELETE("/:id", authRequired, h.Courses.Delete)
	}

	students := api.Group("/students")
	{
		students.POST("", h.Student.Create)
		students.PUT("/:id", h.Student.Update)
		students.DELETE("/:id", h.Student.Delete)
		students.GET("/lookup/:email/:courseId", h.Student.Lookup)
		students.GET("/courses/:email", h.Student.CoursesByEmail)

		students.GET("/course/:courseId", authRequired, h.Student.ListByCourse)
		students.GET("/course/:courseId/export", authRequired, h.Student.Export)
	}

	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
}
