package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"servewise-backend/internal/model"
	"servewise-backend/utilities"
)

// LessonRepository mutates lessons additively: questions are appended with
// increasing ordinals and afterwards only their is_deleted flag changes.
type LessonRepository interface {
	FindByKey(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, category string, unit, chapter int) (*model.Lesson, error)
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lesson, error)
	ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Lesson, error)
	// Create stores a lesson with its menu items, questions and progress rows.
	Create(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error
	// AppendQuestionsAndItem links itemIDs and appends questions after the
	// lesson's last ordinal. Ordinals are assigned here.
	AppendQuestionsAndItem(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, itemIDs []uuid.UUID, questions []model.GeneratedQuestion) ([]model.GeneratedQuestion, error)
	SetQuestionsDeletedForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, deleted bool) (int64, error)
	// DeleteLessonsReferencingItem removes every lesson covering itemID and
	// returns them as they were before removal.
	DeleteLessonsReferencingItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]model.Lesson, error)
	// DeleteQuestionsForItem removes only itemID's questions and link, then
	// drops lessons left covering nothing. Returns the removed lesson IDs.
	DeleteQuestionsForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, []uuid.UUID, error)
}

type lessonRepository struct {
	db  *gorm.DB
	log *utilities.Logger
}

func NewLessonRepository(db *gorm.DB, baseLog *utilities.Logger) LessonRepository {
	return &lessonRepository{db: db, log: baseLog.With("repo", "LessonRepository")}
}

func (r *lessonRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("ordinal ASC")
}

func (r *lessonRepository) FindByKey(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, category string, unit, chapter int) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.conn(ctx, tx).
		Preload("MenuItems").
		Preload("Questions", orderedQuestions).
		Where("restaurant_id = ? AND category = ? AND unit = ? AND chapter = ?", restaurantID, category, unit, chapter).
		First(&lesson).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lesson, nil
}

func (r *lessonRepository) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.conn(ctx, tx).
		Preload("MenuItems").
		Preload("Questions", orderedQuestions).
		Preload("Progress").
		Where("id = ?", id).
		First(&lesson).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lesson, nil
}

func (r *lessonRepository) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.conn(ctx, tx).
		Preload("MenuItems").
		Where("restaurant_id = ? AND is_deleted = ?", restaurantID, false).
		Order("category ASC, unit ASC, chapter ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) Create(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error {
	return r.conn(ctx, tx).Create(lesson).Error
}

func (r *lessonRepository) AppendQuestionsAndItem(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, itemIDs []uuid.UUID, questions []model.GeneratedQuestion) ([]model.GeneratedQuestion, error) {
	db := r.conn(ctx, tx)

	if len(itemIDs) > 0 {
		links := make([]model.LessonMenuItem, 0, len(itemIDs))
		for _, id := range itemIDs {
			links = append(links, model.LessonMenuItem{LessonID: lessonID, MenuItemID: id})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return nil, err
		}
	}
	if len(questions) == 0 {
		return nil, nil
	}

	var last int
	if err := db.Model(&model.GeneratedQuestion{}).
		Where("lesson_id = ?", lessonID).
		Select("COALESCE(MAX(ordinal), 0)").
		Scan(&last).Error; err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].LessonID = lessonID
		questions[i].Ordinal = last + i + 1
	}
	if err := db.Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *lessonRepository) SetQuestionsDeletedForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, deleted bool) (int64, error) {
	res := r.conn(ctx, tx).
		Model(&model.GeneratedQuestion{}).
		Where("menu_item_id = ?", itemID).
		Where("lesson_id IN (SELECT id FROM lessons WHERE is_deleted = ?)", false).
		Update("is_deleted", deleted)
	return res.RowsAffected, res.Error
}

func (r *lessonRepository) lessonIDsForItem(db *gorm.DB, itemID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&model.LessonMenuItem{}).
		Where("menu_item_id = ?", itemID).
		Distinct().
		Pluck("lesson_id", &ids).Error
	return ids, err
}

// purge removes lessons and their children. Children are deleted explicitly
// so the result does not depend on the driver enforcing cascades.
func (r *lessonRepository) purge(db *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	for _, child := range []interface{}{&model.Progress{}, &model.GeneratedQuestion{}, &model.LessonMenuItem{}} {
		if err := db.Where("lesson_id IN ?", ids).Delete(child).Error; err != nil {
			return err
		}
	}
	return db.Where("id IN ?", ids).Delete(&model.Lesson{}).Error
}

func (r *lessonRepository) DeleteLessonsReferencingItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]model.Lesson, error) {
	db := r.conn(ctx, tx)
	ids, err := r.lessonIDsForItem(db, itemID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var lessons []model.Lesson
	if err := db.Preload("MenuItems").Where("id IN ?", ids).Order("unit ASC, chapter ASC").Find(&lessons).Error; err != nil {
		return nil, err
	}
	if err := r.purge(db, ids); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) DeleteQuestionsForItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, []uuid.UUID, error) {
	db := r.conn(ctx, tx)
	ids, err := r.lessonIDsForItem(db, itemID)
	if err != nil {
		return 0, nil, err
	}
	res := db.Where("menu_item_id = ?", itemID).Delete(&model.GeneratedQuestion{})
	if res.Error != nil {
		return 0, nil, res.Error
	}
	if err := db.Where("menu_item_id = ?", itemID).Delete(&model.LessonMenuItem{}).Error; err != nil {
		return 0, nil, err
	}
	if len(ids) == 0 {
		return res.RowsAffected, nil, nil
	}

	var empty []uuid.UUID
	if err := db.Model(&model.Lesson{}).
		Where("id IN ?", ids).
		Where("NOT EXISTS (SELECT 1 FROM lesson_menu_items WHERE lesson_menu_items.lesson_id = lessons.id)").
		Pluck("id", &empty).Error; err != nil {
		return 0, nil, err
	}
	if err := r.purge(db, empty); err != nil {
		return 0, nil, err
	}
	return res.RowsAffected, empty, nil
}
