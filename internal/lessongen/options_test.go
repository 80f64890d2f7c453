package lessongen

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
)

func TestAssembleOptions(t *testing.T) {
	rng := NewRand(11)

	opts, shown, err := assembleOptions(rng, 4, false, []string{"Merlot", "Syrah"}, Resolution{
		Pool:     []string{"merlot", "Malbec", "Malbec", ""},
		Fallback: []string{"Riesling", "Gamay", "Syrah"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Merlot"}, shown)
	assert.Len(t, opts, 4)
	assert.Contains(t, opts, "Merlot")
	assert.Contains(t, opts, "Malbec")
	assert.NotContains(t, opts, "merlot")
	assert.NotContains(t, opts, "Syrah", "a true value is never a distractor")

	_, _, err = assembleOptions(rng, 4, false, []string{"Merlot"}, Resolution{Pool: []string{"Malbec"}})
	require.ErrorIs(t, err, ErrUnresolved)

	opts, _, err = assembleOptions(rng, 4, false, []string{"Pinot Noir"}, Resolution{
		Pool:    []string{"Gamay", "Merlot", "Syrah", "Malbec"},
		Exclude: []string{"Gamay"},
	})
	require.NoError(t, err)
	assert.NotContains(t, opts, "Gamay")
}

func TestPriceVariants(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		got := priceVariants(NewRand(seed), price("12.00"), 15, 3)
		require.Len(t, got, 3)
		assert.NotContains(t, got, "$12.00")
		assert.Len(t, distinct(got), 3)
		for _, v := range got {
			p := price(v[1:])
			assert.True(t, p.IsPositive(), v)
			assert.True(t, p.LessThanOrEqual(price("57.00")), v)
		}
	}

	got := priceVariants(NewRand(1), price("1.00"), 0.5, 3)
	assert.Len(t, got, 3, "the band widens when the first pass runs dry")
}

func TestPriceRangeBands(t *testing.T) {
	got := priceRangeBands(NewRand(2), price("8.00"), price("16.00"), 3)
	require.Len(t, got, 3)
	assert.NotContains(t, got, "$8.00 - $16.00")
	assert.Len(t, distinct(got), 3)
}

func TestNumericDecoys(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"zero", 0},
		{"one", 1},
		{"several", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := numericDecoys(NewRand(3), tt.n, 3)
			require.Len(t, got, 3)
			assert.NotContains(t, got, strconv.Itoa(tt.n))
			assert.Len(t, distinct(got), 3)
			for _, v := range got {
				i, err := strconv.Atoi(v)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, i, 0)
			}
		})
	}
}

func TestValidateSpecs(t *testing.T) {
	ok := []model.QuestionSpec{
		{Text: "Course of {dish_name}?", Options: src(model.SourceDishTypes), RepeatFor: model.RepeatDishTypes},
		{Text: "Pick", Options: model.OptionSource{Kind: model.SourceLiteral, Values: []string{"a", "b"}}, CorrectAnswer: &model.OptionSource{Kind: model.SourceLiteral, Values: []string{"a"}}},
	}
	require.NoError(t, ValidateSpecs(model.CategoryFood, ok))

	err := ValidateSpecs(model.CategoryFood, []model.QuestionSpec{
		{Text: "Grape?", Options: src(model.SourceVarietals)},
		{Text: "Pick", Options: model.OptionSource{Kind: model.SourceLiteral}},
		{Text: "", Options: src(model.SourceAllergens), RepeatFor: model.RepeatOfferings},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "question 0")
	assert.Contains(t, err.Error(), "literal options without values")
	assert.Contains(t, err.Error(), "question 2: empty text")

	require.NoError(t, ValidateSpecs(model.CategoryWine, []model.QuestionSpec{
		{Text: "How many?", Options: model.OptionSource{Kind: model.SourceWineCount, Predicate: &model.CountPredicate{ByTheGlass: true}}, RepeatFor: model.RepeatOfferings},
	}))
	assert.Error(t, ValidateSpecs(model.CategoryWine, []model.QuestionSpec{{Text: "How many?", Options: src(model.SourceWineCount)}}))
	assert.ErrorIs(t, ValidateSpecs("dessert", nil), ErrUnknownSource)
}
