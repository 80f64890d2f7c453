package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/utilities"
)

type TemplateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, template *model.LessonTemplate) error
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.LessonTemplate, error)
	Find(ctx context.Context, tx *gorm.DB, category string, unit, chapter int) (*model.LessonTemplate, error)
	// ListByCategory returns templates ordered by (unit, chapter).
	ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]model.LessonTemplate, error)
	// AppendQuestions extends a template's question list; existing specs keep
	// their positions.
	AppendQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID, specs []model.QuestionSpec) (*model.LessonTemplate, error)
}

type templateRepository struct {
	db  *gorm.DB
	log *utilities.Logger
}

func NewTemplateRepository(db *gorm.DB, baseLog *utilities.Logger) TemplateRepository {
	return &templateRepository{db: db, log: baseLog.With("repo", "TemplateRepository")}
}

func (r *templateRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *templateRepository) Create(ctx context.Context, tx *gorm.DB, template *model.LessonTemplate) error {
	return r.conn(ctx, tx).Create(template).Error
}

func (r *templateRepository) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.LessonTemplate, error) {
	var t model.LessonTemplate
	if err := r.conn(ctx, tx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *templateRepository) Find(ctx context.Context, tx *gorm.DB, category string, unit, chapter int) (*model.LessonTemplate, error) {
	var t model.LessonTemplate
	err := r.conn(ctx, tx).
		Where("category = ? AND unit = ? AND chapter = ?", category, unit, chapter).
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *templateRepository) ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]model.LessonTemplate, error) {
	var templates []model.LessonTemplate
	err := r.conn(ctx, tx).
		Where("category = ?", category).
		Order("unit ASC, chapter ASC").
		Find(&templates).Error
	return templates, err
}

func (r *templateRepository) AppendQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID, specs []model.QuestionSpec) (*model.LessonTemplate, error) {
	t, err := r.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return t, nil
	}
	questions := append(t.Questions, specs...)
	if err := r.conn(ctx, tx).Model(t).Update("questions", questions).Error; err != nil {
		return nil, err
	}
	t.Questions = questions
	r.log.Info("template questions appended", "template_id", id, "added", len(specs), "total", len(questions))
	return t, nil
}
