package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"servewise-backend/internal/model"
	"servewise-backend/internal/service"
	"servewise-backend/utilities"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotAssigned):
		return http.StatusForbidden
	case errors.Is(err, utilities.ErrInvalidToken),
		errors.Is(err, utilities.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInvalidTemplate),
		errors.Is(err, service.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTemplateConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// uuidParam parses a path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// categoryOf maps the :kind path segment onto a catalog category. Unknown
// kinds pass through so the service reports them.
func categoryOf(kind string) string {
	switch kind {
	case "dish", "dishes", model.CategoryFood:
		return model.CategoryFood
	case "wines", model.CategoryWine:
		return model.CategoryWine
	}
	return kind
}
