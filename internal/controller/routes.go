package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servewise-backend/internal/service"
)

type Services struct {
	Catalog   service.CatalogService
	Lifecycle service.LifecycleManager
	Templates service.TemplateService
	Lessons   service.LessonService
	Progress  service.ProgressService
	Auth      service.AuthService
}

// RegisterRoutes registers all route groups and their endpoints. Catalog and
// template mutations run behind managerOnly when it is non-nil.
func RegisterRoutes(r *gin.Engine, svc Services, managerOnly gin.HandlerFunc) {
	guard := []gin.HandlerFunc{}
	if managerOnly != nil {
		guard = append(guard, managerOnly)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authCtrl := NewAuthController(svc.Auth)
	r.POST("/auth/refresh", authCtrl.Refresh)

	catalogCtrl := NewCatalogController(svc.Catalog, svc.Lifecycle)
	lessonCtrl := NewLessonController(svc.Lessons)
	progressCtrl := NewProgressController(svc.Progress)
	restaurantRoutes := r.Group("/restaurants/:id")
	{
		restaurantRoutes.GET("/dishes", catalogCtrl.ListDishes)
		restaurantRoutes.GET("/wines", catalogCtrl.ListWines)
		restaurantRoutes.POST("/dishes", append(guard, catalogCtrl.CreateDish)...)
		restaurantRoutes.POST("/wines", append(guard, catalogCtrl.CreateWine)...)
		restaurantRoutes.GET("/lessons", lessonCtrl.List)
	}

	itemRoutes := r.Group("/items/:kind/:item_id", guard...)
	{
		itemRoutes.POST("/archive", catalogCtrl.Archive)
		itemRoutes.POST("/restore", catalogCtrl.Restore)
		itemRoutes.DELETE("", catalogCtrl.Delete)
	}

	templateCtrl := NewTemplateController(svc.Templates)
	templateRoutes := r.Group("/templates")
	{
		templateRoutes.GET("", templateCtrl.List)
		templateRoutes.POST("", append(guard, templateCtrl.Upload)...)
	}

	lessonRoutes := r.Group("/lessons")
	{
		lessonRoutes.GET("/:id", lessonCtrl.Get)
		lessonRoutes.GET("/:id/handout", lessonCtrl.Handout)
		lessonRoutes.POST("/:id/answers", progressCtrl.SubmitAnswer)
	}

	r.GET("/employees/:id/progress", progressCtrl.EmployeeProgress)
}
