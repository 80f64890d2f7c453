package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"servewise-backend/internal/model"
	"servewise-backend/utilities"
)

type ProgressRepository interface {
	// GetForUpdate loads an employee's progress on a lesson, locking the row
	// where the driver supports it.
	GetForUpdate(ctx context.Context, tx *gorm.DB, lessonID, employeeID uuid.UUID) (*model.Progress, error)
	Save(ctx context.Context, tx *gorm.DB, progress *model.Progress) error
	// ListByEmployee returns the employee's progress on live lessons.
	ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) ([]model.Progress, error)
}

type progressRepository struct {
	db  *gorm.DB
	log *utilities.Logger
}

func NewProgressRepository(db *gorm.DB, baseLog *utilities.Logger) ProgressRepository {
	return &progressRepository{db: db, log: baseLog.With("repo", "ProgressRepository")}
}

func (r *progressRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *progressRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, lessonID, employeeID uuid.UUID) (*model.Progress, error) {
	db := r.conn(ctx, tx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p model.Progress
	if err := db.Where("lesson_id = ? AND employee_id = ?", lessonID, employeeID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *progressRepository) Save(ctx context.Context, tx *gorm.DB, progress *model.Progress) error {
	return r.conn(ctx, tx).
		Model(progress).
		Select("Status", "Score", "Attempts").
		Updates(progress).Error
}

func (r *progressRepository) ListByEmployee(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) ([]model.Progress, error) {
	live := r.conn(ctx, tx).
		Model(&model.Lesson{}).
		Select("id").
		Where("is_deleted = ?", false)
	var rows []model.Progress
	err := r.conn(ctx, tx).
		Where("employee_id = ? AND lesson_id IN (?)", employeeID, live).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
