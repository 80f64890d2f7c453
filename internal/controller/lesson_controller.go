package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"servewise-backend/internal/service"
)

type LessonController struct {
	LessonService service.LessonService
}

func NewLessonController(lessonService service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// List handles GET /restaurants/:id/lessons
func (lc *LessonController) List(c *gin.Context) {
	restaurantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lessons, err := lc.LessonService.ListByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// Get handles GET /lessons/:id
func (lc *LessonController) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	lesson, err := lc.LessonService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// Handout handles GET /lessons/:id/handout
func (lc *LessonController) Handout(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := lc.LessonService.WriteHandout(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("lesson_%s.pdf", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
