package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

type AnswerSubmission struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Answers    []string  `json:"answers"`
}

type AnswerResult struct {
	QuestionID     uuid.UUID       `json:"question_id"`
	IsCorrect      bool            `json:"is_correct"`
	CorrectAnswers []string        `json:"correct_answers"`
	Explanation    string          `json:"explanation,omitempty"`
	Progress       *model.Progress `json:"progress"`
}

type ProgressService interface {
	// SubmitAnswer grades one answer, records the attempt and recomputes the
	// employee's score and status for the lesson.
	SubmitAnswer(ctx context.Context, lessonID uuid.UUID, sub AnswerSubmission) (*AnswerResult, error)
	EmployeeProgress(ctx context.Context, employeeID uuid.UUID) ([]model.Progress, error)
}

type progressService struct {
	db       *gorm.DB
	lessons  repository.LessonRepository
	progress repository.ProgressRepository
	log      *utilities.Logger
}

func NewProgressService(db *gorm.DB, lessons repository.LessonRepository, progress repository.ProgressRepository, baseLog *utilities.Logger) ProgressService {
	return &progressService{
		db:       db,
		lessons:  lessons,
		progress: progress,
		log:      baseLog.With("service", "ProgressService"),
	}
}

func (s *progressService) SubmitAnswer(ctx context.Context, lessonID uuid.UUID, sub AnswerSubmission) (*AnswerResult, error) {
	answers := cleanAnswers(sub.Answers)
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answer given", ErrInvalidAnswer)
	}

	var result *AnswerResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lesson, err := s.lessons.Get(ctx, tx, lessonID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && lesson.IsDeleted) {
			return fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
		}
		if err != nil {
			return fmt.Errorf("load lesson: %w", err)
		}

		var question *model.GeneratedQuestion
		for i := range lesson.Questions {
			if q := &lesson.Questions[i]; q.ID == sub.QuestionID && !q.IsDeleted {
				question = q
				break
			}
		}
		if question == nil {
			return fmt.Errorf("%w: %s", ErrQuestionNotFound, sub.QuestionID)
		}

		p, err := s.progress.GetForUpdate(ctx, tx, lessonID, sub.EmployeeID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotAssigned, sub.EmployeeID)
		}
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		correct := gradeAnswer(question, answers)
		p.Attempts = append(p.Attempts, model.Attempt{
			QuestionID: question.ID,
			Answers:    answers,
			IsCorrect:  correct,
			AnsweredAt: time.Now().UTC(),
		})
		p.Score, p.Status = scoreProgress(lesson.Questions, p.Attempts)
		if err := s.progress.Save(ctx, tx, p); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}

		result = &AnswerResult{
			QuestionID:     question.ID,
			IsCorrect:      correct,
			CorrectAnswers: question.CorrectAnswers,
			Explanation:    question.Explanation,
			Progress:       p,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("answer recorded",
		"lesson_id", lessonID,
		"employee_id", sub.EmployeeID,
		"correct", result.IsCorrect,
		"status", result.Progress.Status,
	)
	return result, nil
}

func (s *progressService) EmployeeProgress(ctx context.Context, employeeID uuid.UUID) ([]model.Progress, error) {
	return s.progress.ListByEmployee(ctx, nil, employeeID)
}

func cleanAnswers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// gradeAnswer compares answers with the question's correct answers, ignoring
// case and spacing. Multiple-choice needs the exact set; text questions
// accept any listed answer.
func gradeAnswer(q *model.GeneratedQuestion, answers []string) bool {
	want := make(map[string]bool, len(q.CorrectAnswers))
	for _, c := range q.CorrectAnswers {
		want[normalizeAnswer(c)] = true
	}
	if len(want) == 0 {
		return false
	}
	switch q.QuestionType {
	case model.QuestionMultipleChoice:
		got := make(map[string]bool, len(answers))
		for _, a := range answers {
			got[normalizeAnswer(a)] = true
		}
		if len(got) != len(want) {
			return false
		}
		for a := range got {
			if !want[a] {
				return false
			}
		}
		return true
	default:
		return len(answers) == 1 && want[normalizeAnswer(answers[0])]
	}
}

// scoreProgress grades the latest attempt per live question. The lesson is
// completed once every live question has been answered.
func scoreProgress(questions []model.GeneratedQuestion, attempts []model.Attempt) (int, string) {
	latest := make(map[uuid.UUID]bool, len(attempts))
	for _, a := range attempts {
		latest[a.QuestionID] = a.IsCorrect
	}
	var live, answered, correct int
	for _, q := range questions {
		if q.IsDeleted {
			continue
		}
		live++
		if ok, seen := latest[q.ID]; seen {
			answered++
			if ok {
				correct++
			}
		}
	}
	if live == 0 {
		return 0, model.ProgressNotStarted
	}
	score := correct * 100 / live
	switch {
	case answered == live:
		return score, model.ProgressCompleted
	case answered > 0:
		return score, model.ProgressInProgress
	}
	return score, model.ProgressNotStarted
}
