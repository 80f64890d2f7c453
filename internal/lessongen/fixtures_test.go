package lessongen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
)

var testTemplateID = uuid.MustParse("7f1c2b0e-4a57-4c8e-9a0f-3a6f2f1d9b10")

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRestaurant() *model.Restaurant {
	return &model.Restaurant{ID: uuid.New(), Name: "Osteria Nove", IsActive: true}
}

func testDishes(restaurantID uuid.UUID) []model.Dish {
	return []model.Dish{
		{
			ID: uuid.New(), RestaurantID: restaurantID, Name: "Burrata",
			Description: "Burrata, heirloom tomato, basil oil",
			Price:       price("14.00"), DishTypes: []string{"Appetizer"},
			Allergens: []string{"Dairy"}, DietaryRestrictions: []string{"Vegetarian"},
			Accommodations: []string{"Sauce on the side"}, Temperature: "Cold",
			IsVegetarian: true, ContainsDairy: true,
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, Name: "Ribeye",
			Price: price("48.00"), DishTypes: []string{"Entree"},
			DietaryRestrictions: []string{"Gluten Free"}, Temperature: "Hot",
			IsGlutenFree: true, CanSubstitute: true,
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, Name: "Roasted Salmon",
			Price: price("32.50"), DishTypes: []string{"Entree"},
			Allergens: []string{"Fish"}, Temperature: "hot",
			IsGlutenFree: true, CrossContactRisk: true,
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, Name: "Tiramisu",
			Price: price("12.00"), DishTypes: []string{"Dessert"},
			Allergens: []string{"Dairy", "Eggs", "Wheat"}, Temperature: "Cold",
			IsVegetarian: true, ContainsDairy: true,
		},
	}
}

func testWines(restaurantID uuid.UUID) []model.Wine {
	return []model.Wine{
		{
			ID: uuid.New(), RestaurantID: restaurantID, ProductName: "Les Cadrans", Producer: "Château Lassègue",
			Varietals: []string{"Merlot"}, Vintage: 2019, Country: "France", MajorRegion: "Bordeaux",
			Category: "Red", Style: "Medium-bodied", ByTheGlass: true, ByTheBottle: true,
			GlassPrice: price("12.00"), BottlePrice: price("48.00"), IsOrganic: true,
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, ProductName: "Duckhorn Merlot", Producer: "Duckhorn",
			Varietals: []string{"Merlot"}, Vintage: 2020, Country: "United States", MajorRegion: "Napa Valley",
			Category: "Red", Style: "Full-bodied", ByTheGlass: true,
			GlassPrice: price("12.00"),
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, ProductName: "Meursault", Producer: "Domaine Roulot",
			Varietals: []string{"Chardonnay"}, Vintage: 2021, Country: "France", MajorRegion: "Burgundy",
			Category: "White", Style: "Crisp and Dry", ByTheGlass: true, ByTheBottle: true,
			GlassPrice: price("14.00"), BottlePrice: price("56.00"), IsFiltered: true,
		},
		{
			ID: uuid.New(), RestaurantID: restaurantID, ProductName: "Cuvée Prestige", Producer: "Domaine de Montille",
			Varietals: []string{"Pinot Noir", "Gamay"}, Country: "France", MajorRegion: "Burgundy",
			Category: "Red", Style: "Light-bodied", ByTheBottle: true, BottlePrice: price("80.00"),
		},
	}
}

func findDish(t *testing.T, dishes []model.Dish, name string) *model.Dish {
	t.Helper()
	for i := range dishes {
		if dishes[i].Name == name {
			return &dishes[i]
		}
	}
	t.Fatalf("no dish %q", name)
	return nil
}

func findWine(t *testing.T, wines []model.Wine, name string) *model.Wine {
	t.Helper()
	for i := range wines {
		if wines[i].ProductName == name {
			return &wines[i]
		}
	}
	t.Fatalf("no wine %q", name)
	return nil
}

func src(kind model.SourceKind) model.OptionSource { return model.OptionSource{Kind: kind} }

// requireWellFormed checks the invariants every generated question must hold.
func requireWellFormed(t *testing.T, q Question) {
	t.Helper()
	require.NotEmpty(t, q.CorrectAnswers, "question %q has no correct answer", q.Text)
	assert.Subset(t, q.Options, q.CorrectAnswers, "correct answers of %q must be offered", q.Text)
	assert.Len(t, distinct(q.Options), len(q.Options), "options of %q must be distinct", q.Text)
	assert.NotContains(t, q.Text, "{", "unresolved placeholder in %q", q.Text)
	assert.Len(t, q.Key, 64)
}
