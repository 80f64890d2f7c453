package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/utilities"
)

type RestaurantRepository interface {
	Create(ctx context.Context, tx *gorm.DB, restaurant *model.Restaurant) error
	Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Restaurant, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]model.Restaurant, error)
	// ActiveEmployees are the staff a restaurant's lessons are assigned to.
	ActiveEmployees(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Employee, error)
	ActiveEmployeeByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Employee, error)
}

type restaurantRepository struct {
	db  *gorm.DB
	log *utilities.Logger
}

func NewRestaurantRepository(db *gorm.DB, baseLog *utilities.Logger) RestaurantRepository {
	return &restaurantRepository{db: db, log: baseLog.With("repo", "RestaurantRepository")}
}

func (r *restaurantRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *restaurantRepository) Create(ctx context.Context, tx *gorm.DB, restaurant *model.Restaurant) error {
	return r.conn(ctx, tx).Create(restaurant).Error
}

func (r *restaurantRepository) Get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.conn(ctx, tx).Where("id = ?", id).First(&restaurant).Error; err != nil {
		return nil, notFound(err)
	}
	return &restaurant, nil
}

func (r *restaurantRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := r.conn(ctx, tx).Where("is_active = ?", true).Order("name ASC, id ASC").Find(&restaurants).Error
	return restaurants, err
}

func (r *restaurantRepository) ActiveEmployees(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.conn(ctx, tx).
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("last_name ASC, first_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *restaurantRepository) ActiveEmployeeByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Employee, error) {
	var employee model.Employee
	err := r.conn(ctx, tx).
		Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).
		First(&employee).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &employee, nil
}
