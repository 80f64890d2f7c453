package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
	"servewise-backend/internal/repository"
)

func checkCategory(category string) error {
	switch category {
	case model.CategoryFood, model.CategoryWine:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// itemRef is the part of a catalog item the lifecycle needs, whatever its kind.
type itemRef struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	IsDeleted    bool
}

func getItem(ctx context.Context, tx *gorm.DB, catalog repository.CatalogRepository, category string, id uuid.UUID) (itemRef, error) {
	var (
		ref itemRef
		err error
	)
	switch category {
	case model.CategoryFood:
		var d *model.Dish
		if d, err = catalog.GetDish(ctx, tx, id); err == nil {
			ref = itemRef{ID: d.ID, RestaurantID: d.RestaurantID, Name: d.Name, IsDeleted: d.IsDeleted}
		}
	case model.CategoryWine:
		var w *model.Wine
		if w, err = catalog.GetWine(ctx, tx, id); err == nil {
			ref = itemRef{ID: w.ID, RestaurantID: w.RestaurantID, Name: w.ProductName, IsDeleted: w.IsDeleted}
		}
	default:
		return ref, checkCategory(category)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ref, fmt.Errorf("%w: %s %s", ErrItemNotFound, category, id)
	}
	return ref, err
}

func setItemDeleted(ctx context.Context, tx *gorm.DB, catalog repository.CatalogRepository, category string, id uuid.UUID, deleted bool) error {
	if category == model.CategoryWine {
		return catalog.SetWineDeleted(ctx, tx, id, deleted)
	}
	return catalog.SetDishDeleted(ctx, tx, id, deleted)
}

func deleteItem(ctx context.Context, tx *gorm.DB, catalog repository.CatalogRepository, category string, id uuid.UUID) error {
	if category == model.CategoryWine {
		return catalog.DeleteWine(ctx, tx, id)
	}
	return catalog.DeleteDish(ctx, tx, id)
}
