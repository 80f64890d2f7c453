package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"servewise-backend/internal/service"
	"servewise-backend/utilities"
)

type ProgressController struct {
	ProgressService service.ProgressService
}

func NewProgressController(progressService service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// tokenEmployee returns the employee the request's token was issued to, if
// the request was authenticated.
func tokenEmployee(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(utilities.CtxEmployeeID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// SubmitAnswer handles POST /lessons/:id/answers. An authenticated caller
// always answers as itself.
func (pc *ProgressController) SubmitAnswer(c *gin.Context) {
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var sub service.AnswerSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if id, ok := tokenEmployee(c); ok {
		sub.EmployeeID = id
	}
	res, err := pc.ProgressService.SubmitAnswer(c.Request.Context(), lessonID, sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// EmployeeProgress handles GET /employees/:id/progress
func (pc *ProgressController) EmployeeProgress(c *gin.Context) {
	employeeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := pc.ProgressService.EmployeeProgress(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
