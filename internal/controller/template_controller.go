package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"servewise-backend/internal/service"
)

type TemplateController struct {
	TemplateService service.TemplateService
}

func NewTemplateController(templateService service.TemplateService) *TemplateController {
	return &TemplateController{TemplateService: templateService}
}

func uploadFormat(c *gin.Context) string {
	if f := c.Query("format"); f != "" {
		return f
	}
	ct := strings.ToLower(c.ContentType())
	if strings.Contains(ct, "yaml") {
		return "yaml"
	}
	return "json"
}

// Upload handles POST /templates. The body is a JSON or YAML template.
func (tc *TemplateController) Upload(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	tmpl, err := service.DecodeTemplate(uploadFormat(c), data)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := tc.TemplateService.Upload(c.Request.Context(), tmpl)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// List handles GET /templates?category=
func (tc *TemplateController) List(c *gin.Context) {
	templates, err := tc.TemplateService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}
