package service

import "errors"

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrTemplateNotFound   = errors.New("lesson template not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrItemNotFound       = errors.New("catalog item not found")
	ErrUnknownCategory    = errors.New("unknown catalog category")
	ErrInvalidTemplate    = errors.New("invalid lesson template")
	ErrInvalidItem        = errors.New("invalid catalog item")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrNotAssigned        = errors.New("lesson is not assigned to employee")
	ErrQuestionNotFound   = errors.New("question not found in lesson")
	ErrInvalidAnswer      = errors.New("invalid answer")
	// ErrTemplateConflict is returned when a re-upload rewrites questions that
	// lessons were already generated from.
	ErrTemplateConflict = errors.New("template re-upload may only append questions")
)
