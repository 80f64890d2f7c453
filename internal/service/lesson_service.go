package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"servewise-backend/internal/model"
	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

type LessonService interface {
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Lesson, error)
	// Get returns the lesson with its live questions only.
	Get(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
	// WriteHandout renders a printable study sheet for the lesson, with an
	// answer key on its last page.
	WriteHandout(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type lessonService struct {
	restaurants repository.RestaurantRepository
	lessons     repository.LessonRepository
	log         *utilities.Logger
}

func NewLessonService(restaurants repository.RestaurantRepository, lessons repository.LessonRepository, baseLog *utilities.Logger) LessonService {
	return &lessonService{
		restaurants: restaurants,
		lessons:     lessons,
		log:         baseLog.With("service", "LessonService"),
	}
}

func (s *lessonService) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Lesson, error) {
	if _, err := s.restaurants.Get(ctx, nil, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRestaurantNotFound, restaurantID)
		}
		return nil, err
	}
	return s.lessons.ListByRestaurant(ctx, nil, restaurantID)
}

func (s *lessonService) Get(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	lesson, err := s.lessons.Get(ctx, nil, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	live := lesson.Questions[:0]
	for _, q := range lesson.Questions {
		if !q.IsDeleted {
			live = append(live, q)
		}
	}
	lesson.Questions = live
	return lesson, nil
}

func (s *lessonService) WriteHandout(ctx context.Context, id uuid.UUID, w io.Writer) error {
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(LessonTitle(lesson), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 9, tr(LessonTitle(lesson)), "", "L", false)
	if lesson.UnitName != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.MultiCell(0, 6, tr(lesson.UnitName), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	for _, block := range lesson.Content {
		pdf.MultiCell(0, 6, tr(block.Body), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(4)

	for i, q := range lesson.Questions {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, q.Text)), "", "L", false)
		pdf.SetFont("Arial", "", 11)
		if q.QuestionType == model.QuestionSingleSelect || q.QuestionType == model.QuestionMultipleChoice || q.QuestionType == model.QuestionTrueFalse {
			for j, opt := range q.Options {
				pdf.MultiCell(0, 6, tr(fmt.Sprintf("    %c) %s", 'a'+j, opt)), "", "L", false)
			}
		} else {
			pdf.Rect(pdf.GetX(), pdf.GetY()+1, 180, 10, "D")
			pdf.Ln(12)
		}
		pdf.Ln(3)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Answer key")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	for i, q := range lesson.Questions {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, strings.Join(q.CorrectAnswers, "; "))), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render handout: %w", err)
	}
	s.log.Debug("handout rendered", "lesson_id", id, "questions", len(lesson.Questions))
	return nil
}
