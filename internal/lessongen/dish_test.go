package lessongen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
)

func newDishFixture(t *testing.T, name string) (*Generator, *DishResolver) {
	t.Helper()
	restaurant := testRestaurant()
	dishes := testDishes(restaurant.ID)
	cfg := DefaultConfig()
	return New(cfg, NewRand(42)), NewDishResolver(findDish(t, dishes, name), restaurant, dishes, cfg)
}

func TestDishSources(t *testing.T) {
	tests := []struct {
		name        string
		dish        string
		spec        model.QuestionSpec
		wantText    string
		wantCorrect []string
		wantOptions int
	}{
		{
			name:        "dish type",
			dish:        "Burrata",
			spec:        model.QuestionSpec{Text: "Which course is {dish_name}?", QuestionType: "single_select", Options: src(model.SourceDishTypes)},
			wantText:    "Which course is Burrata?",
			wantCorrect: []string{"Appetizer"},
			wantOptions: 4,
		},
		{
			name:        "price with variation",
			dish:        "Tiramisu",
			spec:        model.QuestionSpec{Text: "What does {dish_name} cost?", Options: model.OptionSource{Kind: model.SourcePriceVariation, Variation: 15}},
			wantText:    "What does Tiramisu cost?",
			wantCorrect: []string{"$12.00"},
			wantOptions: 4,
		},
		{
			name:        "course price range",
			dish:        "Ribeye",
			spec:        model.QuestionSpec{Text: "What is the price range of our {course} dishes?", Options: src(model.SourceCoursePriceRanges)},
			wantText:    "What is the price range of our Entree dishes?",
			wantCorrect: []string{"$32.50 - $48.00"},
			wantOptions: 4,
		},
		{
			name:        "allergens",
			dish:        "Tiramisu",
			spec:        model.QuestionSpec{Text: "Which allergens are in {dish_name}?", QuestionType: "multiple_choice", Options: src(model.SourceAllergens)},
			wantText:    "Which allergens are in Tiramisu?",
			wantCorrect: []string{"Dairy", "Eggs", "Wheat"},
			wantOptions: 4,
		},
		{
			name:        "dietary restrictions",
			dish:        "Burrata",
			spec:        model.QuestionSpec{Text: "Which diet does {dish_name} suit?", QuestionType: "multiple_choice", Options: src(model.SourceDietaryRestrictions)},
			wantText:    "Which diet does Burrata suit?",
			wantCorrect: []string{"Vegetarian"},
			wantOptions: 4,
		},
		{
			name:        "accommodations",
			dish:        "Burrata",
			spec:        model.QuestionSpec{Text: "What can we offer with {dish_name}?", Options: src(model.SourceAccommodations)},
			wantText:    "What can we offer with Burrata?",
			wantCorrect: []string{"Sauce on the side"},
			wantOptions: 4,
		},
		{
			name:        "temperature uses the full vocabulary",
			dish:        "Roasted Salmon",
			spec:        model.QuestionSpec{Text: "How is {dish_name} served?", Options: src(model.SourceTemperatures)},
			wantText:    "How is Roasted Salmon served?",
			wantCorrect: []string{"Hot"},
			wantOptions: 4,
		},
		{
			name:        "sibling dish names",
			dish:        "Ribeye",
			spec:        model.QuestionSpec{Text: "Which dish is served at {price}?", Options: src(model.SourceDishNames)},
			wantText:    "Which dish is served at $48.00?",
			wantCorrect: []string{"Ribeye"},
			wantOptions: 4,
		},
		{
			name: "literal options with literal answer",
			dish: "Ribeye",
			spec: model.QuestionSpec{
				Text:          "How do we temper the {dish_name}?",
				Options:       model.OptionSource{Kind: model.SourceLiteral, Values: []string{"Rest 10 minutes", "Serve straight off the grill", "Chill first"}},
				CorrectAnswer: &model.OptionSource{Kind: model.SourceLiteral, Values: []string{"Rest 10 minutes"}},
			},
			wantText:    "How do we temper the Ribeye?",
			wantCorrect: []string{"Rest 10 minutes"},
			wantOptions: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, r := newDishFixture(t, tt.dish)
			qs, err := gen.Generate(testTemplateID, 0, tt.spec, r)
			require.NoError(t, err)
			require.Len(t, qs, 1)

			q := qs[0]
			requireWellFormed(t, q)
			assert.Equal(t, tt.wantText, q.Text)
			assert.ElementsMatch(t, tt.wantCorrect, q.CorrectAnswers)
			assert.Len(t, q.Options, tt.wantOptions)
			assert.Equal(t, r.ItemID(), q.MenuItemID)
		})
	}
}

func TestDishPriceOptionsStayInBand(t *testing.T) {
	spec := model.QuestionSpec{Text: "Price of {dish_name}?", Options: model.OptionSource{Kind: model.SourcePriceVariation, Variation: 15}}
	for seed := uint64(1); seed <= 25; seed++ {
		restaurant := testRestaurant()
		dishes := testDishes(restaurant.ID)
		r := NewDishResolver(findDish(t, dishes, "Tiramisu"), restaurant, dishes, DefaultConfig())

		qs, err := New(DefaultConfig(), NewRand(seed)).Generate(testTemplateID, 0, spec, r)
		require.NoError(t, err)
		require.Len(t, qs, 1)

		q := qs[0]
		requireWellFormed(t, q)
		require.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, "$12.00")
		for _, o := range q.Options {
			require.True(t, strings.HasPrefix(o, "$"), o)
			p := price(strings.TrimPrefix(o, "$"))
			assert.True(t, p.IsPositive(), o)
			assert.True(t, p.LessThanOrEqual(price("57.00")), o)
		}
	}
}

func TestDishRepeatForDishTypes(t *testing.T) {
	spec := model.QuestionSpec{
		Text:         "Name one {repeat} on our menu.",
		QuestionType: "single_select",
		Options:      src(model.SourceDishNames),
		RepeatFor:    model.RepeatDishTypes,
	}

	gen, r := newDishFixture(t, "Ribeye")
	qs, err := gen.Generate(testTemplateID, 3, spec, r)
	require.NoError(t, err)
	require.Len(t, qs, 1, "only the dish's own type is instantiated")
	assert.Equal(t, "Name one Entree on our menu.", qs[0].Text)
	assert.Equal(t, "Entree", qs[0].Repeat)
	assert.Equal(t, 3, qs[0].SpecIndex)

	restaurant := testRestaurant()
	dishes := testDishes(restaurant.ID)
	brunch := &dishes[0]
	brunch.DishTypes = []string{"Brunch"}
	qs, err = New(DefaultConfig(), NewRand(1)).Generate(testTemplateID, 3, spec, NewDishResolver(brunch, restaurant, dishes, DefaultConfig()))
	require.ErrorIs(t, err, ErrUnresolved)
	assert.Empty(t, qs)
}

func TestDishRepeatForAllergens(t *testing.T) {
	spec := model.QuestionSpec{
		Text:      "Does {dish_name} contain {allergen}?",
		Options:   src(model.SourceYesNo),
		RepeatFor: model.RepeatAllergens,
	}
	gen, r := newDishFixture(t, "Tiramisu")
	qs, err := gen.Generate(testTemplateID, 0, spec, r)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	texts := make([]string, 0, len(qs))
	keys := map[string]struct{}{}
	for _, q := range qs {
		requireWellFormed(t, q)
		texts = append(texts, q.Text)
		keys[q.Key] = struct{}{}
		assert.Equal(t, model.QuestionTrueFalse, q.QuestionType)
		assert.Equal(t, []string{"Yes"}, q.CorrectAnswers)
	}
	assert.Equal(t, []string{
		"Does Tiramisu contain Dairy?",
		"Does Tiramisu contain Eggs?",
		"Does Tiramisu contain Wheat?",
	}, texts)
	assert.Len(t, keys, 3)
}

func TestDishYesNoKeywords(t *testing.T) {
	tests := []struct {
		dish string
		text string
		want string
	}{
		{"Burrata", "Is {dish_name} vegetarian?", "Yes"},
		{"Ribeye", "Is {dish_name} vegetarian?", "No"},
		{"Burrata", "Is {dish_name} vegan?", "No"},
		{"Ribeye", "Is {dish_name} gluten free?", "Yes"},
		{"Tiramisu", "Does {dish_name} contain gluten?", "Yes"},
		{"Burrata", "Is {dish_name} dairy free?", "No"},
		{"Ribeye", "Does {dish_name} contain nuts?", "No"},
		{"Ribeye", "Is {dish_name} served hot?", "Yes"},
		{"Burrata", "Is {dish_name} served cold?", "Yes"},
		{"Ribeye", "Can guests substitute sides with {dish_name}?", "Yes"},
		{"Roasted Salmon", "Is there a cross-contact risk with {dish_name}?", "Yes"},
		{"Ribeye", "Does {dish_name} have any allergens?", "No"},
		{"Roasted Salmon", "Is {dish_name} spicy?", "No"},
		{"Burrata", "Does {dish_name} contain nut allergens?", "No"},
		{"Tiramisu", "Is {dish_name} free of dairy allergens?", "No"},
		{"Ribeye", "Is {dish_name} free of dairy allergens?", "Yes"},
		{"Burrata", "Is {dish_name} allergen-free?", "No"},
		{"Ribeye", "Is {dish_name} allergen-free?", "Yes"},
		{"Tiramisu", "Does {dish_name} contain gluten allergens?", "Yes"},
	}
	for _, tt := range tests {
		t.Run(tt.dish+"/"+tt.text, func(t *testing.T) {
			gen, r := newDishFixture(t, tt.dish)
			qs, err := gen.Generate(testTemplateID, 0, model.QuestionSpec{Text: tt.text, Options: src(model.SourceYesNo)}, r)
			require.NoError(t, err)
			require.Len(t, qs, 1)
			requireWellFormed(t, qs[0])
			assert.Equal(t, []string{"Yes", "No"}, qs[0].Options)
			assert.Equal(t, []string{tt.want}, qs[0].CorrectAnswers)
		})
	}
}

func TestDishYesNoAttribute(t *testing.T) {
	gen, r := newDishFixture(t, "Roasted Salmon")
	spec := model.QuestionSpec{Text: "Is {dish_name} a cross-contact risk?", Options: model.OptionSource{Kind: model.SourceYesNo, Attribute: "vegetarian"}}
	qs, err := gen.Generate(testTemplateID, 0, spec, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"No"}, qs[0].CorrectAnswers, "an explicit attribute wins over keywords")

	spec.Options.Attribute = "sparkly"
	_, err = gen.Generate(testTemplateID, 0, spec, r)
	require.ErrorIs(t, err, ErrUnresolved)
}

func TestDishUnresolved(t *testing.T) {
	tests := []struct {
		name        string
		dish        string
		spec        model.QuestionSpec
		wantUnknown bool
	}{
		{"wine vocabulary on a dish", "Ribeye", model.QuestionSpec{Text: "Grape?", Options: src(model.SourceVarietals)}, true},
		{"unknown repeat", "Ribeye", model.QuestionSpec{Text: "x", Options: src(model.SourceYesNo), RepeatFor: model.RepeatVarietals}, true},
		{"unknown placeholder", "Ribeye", model.QuestionSpec{Text: "What vintage is {vintage}?", Options: src(model.SourceDishNames)}, false},
		{"literal without answer", "Ribeye", model.QuestionSpec{Text: "x", Options: model.OptionSource{Kind: model.SourceLiteral, Values: []string{"a", "b"}}}, false},
		{"empty source", "Ribeye", model.QuestionSpec{Text: "x"}, false},
		{"no allergens", "Ribeye", model.QuestionSpec{Text: "Allergens in {dish_name}?", Options: src(model.SourceAllergens)}, false},
		{"no yes/no keyword", "Ribeye", model.QuestionSpec{Text: "Is {dish_name} popular?", Options: src(model.SourceYesNo)}, false},
		{"literal answer not offered", "Ribeye", model.QuestionSpec{
			Text:          "Pick",
			Options:       model.OptionSource{Kind: model.SourceLiteral, Values: []string{"a", "b"}},
			CorrectAnswer: &model.OptionSource{Kind: model.SourceLiteral, Values: []string{"c"}},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, r := newDishFixture(t, tt.dish)
			qs, err := gen.Generate(testTemplateID, 0, tt.spec, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnresolved), err)
			assert.Equal(t, tt.wantUnknown, errors.Is(err, ErrUnknownSource), err)
			assert.Empty(t, qs)
		})
	}
}

func TestDishCoursePriceRangeIgnoresArchivedDishes(t *testing.T) {
	restaurant := testRestaurant()
	dishes := testDishes(restaurant.ID)
	findDish(t, dishes, "Roasted Salmon").IsDeleted = true

	r := NewDishResolver(findDish(t, dishes, "Ribeye"), restaurant, dishes, DefaultConfig())
	qs, err := New(DefaultConfig(), NewRand(7)).Generate(testTemplateID, 0, model.QuestionSpec{
		Text:    "Range for {course}?",
		Options: src(model.SourceCoursePriceRanges),
	}, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"$48.00 - $48.00"}, qs[0].CorrectAnswers)
	requireWellFormed(t, qs[0])
	assert.Len(t, qs[0].Options, 4)
}

func TestDishTypePoolKeepsValidTypes(t *testing.T) {
	_, r := newDishFixture(t, "Burrata")
	for i := range r.dishes {
		if r.dishes[i].Name == "Ribeye" {
			r.dishes[i].DishTypes = append(r.dishes[i].DishTypes, "Gluten Free", "Chef Special")
		}
	}
	b := Binding{Placeholders: map[string]string{"course": "Appetizer"}}

	res, err := r.dishTypes(model.OptionSource{Kind: model.SourceDishTypes}, b)
	require.NoError(t, err)
	assert.NotContains(t, res.Pool, "Gluten Free")
	assert.NotContains(t, res.Pool, "Chef Special")
	assert.Contains(t, res.Pool, "Dessert")

	r.cfg.ValidDishTypes = nil
	res, err = r.dishTypes(model.OptionSource{Kind: model.SourceDishTypes}, b)
	require.NoError(t, err)
	assert.Contains(t, res.Pool, "Chef Special", "menu tags are used when no valid types are configured")
}
