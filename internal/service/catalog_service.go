package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"servewise-backend/internal/model"
	"servewise-backend/internal/repository"
	"servewise-backend/utilities"
)

// ItemCreated is the outcome of adding a catalog item. The item is stored
// even when SynthesisErr is set.
type ItemCreated struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Report       SynthesisReport `json:"synthesis"`
	SynthesisErr error           `json:"-"`
}

type CatalogService interface {
	CreateDish(ctx context.Context, restaurantID uuid.UUID, dish *model.Dish) (*ItemCreated, error)
	CreateWine(ctx context.Context, restaurantID uuid.UUID, wine *model.Wine) (*ItemCreated, error)
	ListDishes(ctx context.Context, restaurantID uuid.UUID) ([]model.Dish, error)
	ListWines(ctx context.Context, restaurantID uuid.UUID) ([]model.Wine, error)
}

type catalogService struct {
	restaurants repository.RestaurantRepository
	catalog     repository.CatalogRepository
	synthesizer LessonSynthesizer
	log         *utilities.Logger
}

func NewCatalogService(restaurants repository.RestaurantRepository, catalog repository.CatalogRepository, synthesizer LessonSynthesizer, baseLog *utilities.Logger) CatalogService {
	return &catalogService{
		restaurants: restaurants,
		catalog:     catalog,
		synthesizer: synthesizer,
		log:         baseLog.With("service", "CatalogService"),
	}
}

func (s *catalogService) requireRestaurant(ctx context.Context, id uuid.UUID) error {
	_, err := s.restaurants.Get(ctx, nil, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRestaurantNotFound, id)
	}
	return err
}

func (s *catalogService) CreateDish(ctx context.Context, restaurantID uuid.UUID, dish *model.Dish) (*ItemCreated, error) {
	dish.Name = strings.TrimSpace(dish.Name)
	if dish.Name == "" {
		return nil, fmt.Errorf("%w: dish name is required", ErrInvalidItem)
	}
	if dish.Price.IsNegative() {
		return nil, fmt.Errorf("%w: negative price", ErrInvalidItem)
	}
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	dish.ID = uuid.Nil
	dish.RestaurantID = restaurantID
	dish.IsDeleted = false
	if err := s.catalog.CreateDish(ctx, nil, dish); err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}
	return s.synthesize(ctx, model.CategoryFood, restaurantID, dish.ID), nil
}

func (s *catalogService) CreateWine(ctx context.Context, restaurantID uuid.UUID, wine *model.Wine) (*ItemCreated, error) {
	wine.ProductName = strings.TrimSpace(wine.ProductName)
	if wine.ProductName == "" {
		return nil, fmt.Errorf("%w: wine product name is required", ErrInvalidItem)
	}
	if wine.GlassPrice.IsNegative() || wine.BottlePrice.IsNegative() {
		return nil, fmt.Errorf("%w: negative price", ErrInvalidItem)
	}
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	wine.ID = uuid.Nil
	wine.RestaurantID = restaurantID
	wine.IsDeleted = false
	if err := s.catalog.CreateWine(ctx, nil, wine); err != nil {
		return nil, fmt.Errorf("create wine: %w", err)
	}
	return s.synthesize(ctx, model.CategoryWine, restaurantID, wine.ID), nil
}

func (s *catalogService) synthesize(ctx context.Context, category string, restaurantID, itemID uuid.UUID) *ItemCreated {
	out := &ItemCreated{ItemID: itemID}
	out.Report, out.SynthesisErr = s.synthesizer.OnCatalogItemCreated(ctx, category, restaurantID, itemID)
	if out.SynthesisErr != nil {
		s.log.Warn("item stored but lesson synthesis failed",
			"category", category,
			"item_id", itemID,
			"error", out.SynthesisErr,
		)
	}
	return out
}

func (s *catalogService) ListDishes(ctx context.Context, restaurantID uuid.UUID) ([]model.Dish, error) {
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.catalog.ListDishes(ctx, nil, restaurantID)
}

func (s *catalogService) ListWines(ctx context.Context, restaurantID uuid.UUID) ([]model.Wine, error) {
	if err := s.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.catalog.ListWines(ctx, nil, restaurantID)
}
