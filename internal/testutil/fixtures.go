package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"servewise-backend/internal/model"
)

// SeedRestaurant creates an active restaurant with n active employees.
func SeedRestaurant(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, employees int) *model.Restaurant {
	tb.Helper()
	r := &model.Restaurant{ID: uuid.New(), Name: name, IsActive: true}
	for i := 0; i < employees; i++ {
		r.Employees = append(r.Employees, model.Employee{
			ID:        uuid.New(),
			FirstName: "Server",
			LastName:  fmt.Sprint(i + 1),
			Email:     fmt.Sprintf("server%d@%s.example.com", i+1, r.ID.String()[:8]),
			Role:      model.RoleEmployee,
			IsActive:  true,
		})
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed restaurant: %v", err)
	}
	return r
}

func SeedDish(tb testing.TB, ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, name, price string, types ...string) *model.Dish {
	tb.Helper()
	d := &model.Dish{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         name,
		Description:  name + " with seasonal garnish",
		Price:        decimal.RequireFromString(price),
		DishTypes:    types,
		Allergens:    []string{"Dairy"},
		Temperature:  "Hot",
		IsVegetarian: true,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed dish: %v", err)
	}
	return d
}

func SeedWine(tb testing.TB, ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, name string, varietals ...string) *model.Wine {
	tb.Helper()
	w := &model.Wine{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		ProductName:  name,
		Producer:     name + " Estate",
		Varietals:    varietals,
		Vintage:      2020,
		Country:      "France",
		MajorRegion:  "Bordeaux",
		Category:     "Red",
		Style:        "Medium-bodied",
		ByTheGlass:   true,
		ByTheBottle:  true,
		GlassPrice:   decimal.RequireFromString("14.00"),
		BottlePrice:  decimal.RequireFromString("56.00"),
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed wine: %v", err)
	}
	return w
}

// FoodSpecs is a small food question set that resolves against any dish
// seeded by SeedDish.
func FoodSpecs() []model.QuestionSpec {
	return []model.QuestionSpec{
		{Text: "Which course is {dish_name}?", QuestionType: "single_select", Options: model.OptionSource{Kind: model.SourceDishTypes}},
		{Text: "What does {dish_name} cost?", QuestionType: "single_select", Options: model.OptionSource{Kind: model.SourcePriceVariation, Variation: 15}},
		{Text: "Is {dish_name} vegetarian?", QuestionType: "true_false", Options: model.OptionSource{Kind: model.SourceYesNo}},
	}
}

// WineSpecs is a small wine question set that resolves against any wine
// seeded by SeedWine.
func WineSpecs() []model.QuestionSpec {
	return []model.QuestionSpec{
		{Text: "Which grape is {wine_name} made from?", QuestionType: "single_select", Options: model.OptionSource{Kind: model.SourceVarietals}},
		{Text: "How is {wine_name} offered?", Options: model.OptionSource{Kind: model.SourceOffering}},
	}
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, category string, unit, chapter int, specs []model.QuestionSpec) *model.LessonTemplate {
	tb.Helper()
	t := &model.LessonTemplate{
		ID:          uuid.New(),
		Category:    category,
		Unit:        unit,
		UnitName:    fmt.Sprintf("Unit %d", unit),
		Chapter:     chapter,
		ChapterName: fmt.Sprintf("Chapter %d", chapter),
		Difficulty:  "beginner",
		Content:     []model.ContentBlock{{Type: "text", Body: "Know the menu."}},
		Questions:   specs,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}
