package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/middleware"
	"github.com/noah-isme/waste-collection-api/internal/models"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Requests   *WasteRequestHandler
	Stats      *StatsHandler
	Categories *CategoryHandler
	Districts  *DistrictHandler
	Drivers    *DriverHandler
}

// RegisterRoutes mounts the API under group. authenticate runs first on every route;
// secured middleware such as idempotency runs after it.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, authenticate gin.HandlerFunc, secured ...gin.HandlerFunc) {
	api := group.Group("", append([]gin.HandlerFunc{authenticate}, secured...)...)

	admin := middleware.RequireRoles(models.RoleAdmin)
	anyone := middleware.AnyRole()
	residents := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)
	drivers := middleware.RequireRoles(models.RoleDriver, models.RoleAdmin)

	requests := api.Group("/requests")
	requests.POST("", residents, h.Requests.Create)
	requests.GET("", anyone, h.Requests.List)
	requests.GET("/export", admin, h.Requests.Export)
	requests.GET("/:id", anyone, h.Requests.Get)
	requests.PUT("/:id", residents, h.Requests.Update)
	requests.DELETE("/:id", residents, h.Requests.Delete)
	requests.POST("/:id/decision", admin, h.Requests.Decide)
	requests.GET("/:id/candidates", admin, h.Requests.Candidates)
	requests.POST("/:id/assignment", admin, h.Requests.Assign)
	requests.POST("/:id/driver-decision", drivers, h.Requests.DriverDecide)
	requests.POST("/:id/collection", anyone, h.Requests.AdvanceCollection)
	requests.POST("/:id/confirm", residents, h.Requests.Confirm)
	requests.POST("/:id/payment/resolve", admin, h.Requests.ResolvePayment)
	requests.POST("/:id/payment/settle", admin, h.Requests.SettlePayment)
	requests.POST("/:id/feedback", residents, h.Requests.Feedback)
	requests.GET("/:id/report", residents, h.Requests.Report)

	api.GET("/stats", admin, h.Stats.Summary)

	categories := api.Group("/categories")
	categories.GET("", anyone, h.Categories.List)
	categories.GET("/:id", anyone, h.Categories.Get)
	categories.POST("", admin, h.Categories.Create)
	categories.PUT("/:id", admin, h.Categories.Update)

	districts := api.Group("/districts")
	districts.GET("", anyone, h.Districts.List)
	districts.GET("/:id", anyone, h.Districts.Get)
	districts.POST("", admin, h.Districts.Create)
	districts.PUT("/:id", admin, h.Districts.Update)

	driverRoutes := api.Group("/drivers")
	driverRoutes.GET("", admin, h.Drivers.List)
	driverRoutes.POST("", admin, h.Drivers.Create)
	driverRoutes.GET("/:id", drivers, h.Drivers.Get)
	driverRoutes.PUT("/:id", admin, h.Drivers.Update)
	driverRoutes.GET("/:id/requests", drivers, h.Drivers.Requests)
}

// RegisterOps mounts health, readiness and Prometheus endpoints outside auth.
func RegisterOps(r gin.IRoutes, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
