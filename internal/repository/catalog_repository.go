package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/utilities"
)

// CatalogRepository stores a restaurant's dishes and wines. Archival is a
// soft flag; Delete removes the row for good.
type CatalogRepository interface {
	CreateDish(ctx context.Context, tx *gorm.DB, dish *model.Dish) error
	CreateWine(ctx context.Context, tx *gorm.DB, wine *model.Wine) error
	GetDish(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Dish, error)
	GetWine(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Wine, error)
	// ListDishes and ListWines return live items only.
	ListDishes(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Dish, error)
	ListWines(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Wine, error)
	SetDishDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, deleted bool) error
	SetWineDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, deleted bool) error
	DeleteDish(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteWine(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type catalogRepository struct {
	db  *gorm.DB
	log *utilities.Logger
}

func NewCatalogRepository(db *gorm.DB, baseLog *utilities.Logger) CatalogRepository {
	return &catalogRepository{db: db, log: baseLog.With("repo", "CatalogRepository")}
}

func (r *catalogRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *catalogRepository) CreateDish(ctx context.Context, tx *gorm.DB, dish *model.Dish) error {
	return r.conn(ctx, tx).Create(dish).Error
}

func (r *catalogRepository) CreateWine(ctx context.Context, tx *gorm.DB, wine *model.Wine) error {
	return r.conn(ctx, tx).Create(wine).Error
}

func (r *catalogRepository) GetDish(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Dish, error) {
	var dish model.Dish
	if err := r.conn(ctx, tx).Where("id = ?", id).First(&dish).Error; err != nil {
		return nil, notFound(err)
	}
	return &dish, nil
}

func (r *catalogRepository) GetWine(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Wine, error) {
	var wine model.Wine
	if err := r.conn(ctx, tx).Where("id = ?", id).First(&wine).Error; err != nil {
		return nil, notFound(err)
	}
	return &wine, nil
}

func (r *catalogRepository) ListDishes(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Dish, error) {
	var dishes []model.Dish
	err := r.conn(ctx, tx).
		Where("restaurant_id = ? AND is_deleted = ?", restaurantID, false).
		Order("created_at ASC, id ASC").
		Find(&dishes).Error
	return dishes, err
}

func (r *catalogRepository) ListWines(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Wine, error) {
	var wines []model.Wine
	err := r.conn(ctx, tx).
		Where("restaurant_id = ? AND is_deleted = ?", restaurantID, false).
		Order("created_at ASC, id ASC").
		Find(&wines).Error
	return wines, err
}

func (r *catalogRepository) SetDishDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, deleted bool) error {
	return r.setDeleted(ctx, tx, &model.Dish{}, id, deleted)
}

func (r *catalogRepository) SetWineDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, deleted bool) error {
	return r.setDeleted(ctx, tx, &model.Wine{}, id, deleted)
}

func (r *catalogRepository) setDeleted(ctx context.Context, tx *gorm.DB, m interface{}, id uuid.UUID, deleted bool) error {
	res := r.conn(ctx, tx).Model(m).Where("id = ?", id).Update("is_deleted", deleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteDish(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.delete(ctx, tx, &model.Dish{}, id)
}

func (r *catalogRepository) DeleteWine(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.delete(ctx, tx, &model.Wine{}, id)
}

func (r *catalogRepository) delete(ctx context.Context, tx *gorm.DB, m interface{}, id uuid.UUID) error {
	res := r.conn(ctx, tx).Where("id = ?", id).Delete(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Debug("catalog item deleted", "item_id", id)
	return nil
}
